package usecase

import (
	"context"
	"log/slog"
	"time"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	repo "rewards/internal/repository"
)

// ユーザー・スポンサーの削除（カスケード）、売上レポート、監査ログ
type AdminUsecase struct {
	tx     repo.TransactionManager
	repos  repo.TxRepos
	notes  *Notifications
	logger *slog.Logger
}

func NewAdminUsecase(tx repo.TransactionManager, repos repo.TxRepos, notes *Notifications, logger *slog.Logger) *AdminUsecase {
	return &AdminUsecase{tx: tx, repos: repos, notes: notes, logger: logger}
}

// ユーザー削除（管理者のみ）
// sponsorship（注文・カート・履歴ごと）、チケット、住所も消える
func (u *AdminUsecase) RemoveUser(ctx context.Context, actorID, userID int64) error {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return err
	}
	if actor.Role != model.RoleAdmin {
		return ErrAccessDenied
	}
	//自分自身は消せない
	if actor.ID == userID {
		return validationError("user_id")
	}

	var removed *model.User
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		target, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return repoError(err, "find user")
		}
		if err := removeUserTx(ctx, r, target.ID); err != nil {
			return internalError(err, "remove user")
		}
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionRemoveUser, model.AuditResourceUser, target.ID, target, nil); err != nil {
			return internalError(err, "audit")
		}
		removed = target
		return nil
	})
	if err != nil {
		return err
	}

	u.notes.AccountRemoved(ctx, *removed)
	u.logger.InfoContext(ctx, "user removed", slog.Int64("user_id", removed.ID), slog.Int64("actor_id", actor.ID))
	return nil
}

// スポンサー削除（管理者か、そのスポンサーのマネージャー）
// sponsorship・マネージャー・カタログを消し、参照の無くなった商品も消す
func (u *AdminUsecase) RemoveSponsor(ctx context.Context, actorID, sponsorID int64) error {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return err
	}
	if !policy.CanRemoveSponsor(actor, sponsorID) {
		return ErrAccessDenied
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sponsor, err := r.Sponsors().FindByID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find sponsor")
		}

		list, err := r.Sponsorships().ListBySponsorID(ctx, sponsor.ID, nil)
		if err != nil {
			return internalError(err, "list sponsorships")
		}
		for _, s := range list {
			if err := removeSponsorshipTx(ctx, r, s); err != nil {
				return internalError(err, "remove sponsorship")
			}
		}

		managers, err := r.Users().ListByEmployer(ctx, sponsor.ID)
		if err != nil {
			return internalError(err, "list managers")
		}
		for _, m := range managers {
			if err := removeUserTx(ctx, r, m.ID); err != nil {
				return internalError(err, "remove manager")
			}
		}

		itemIDs, err := r.Catalogs().DeleteBySponsorID(ctx, sponsor.ID)
		if err != nil {
			return internalError(err, "delete catalog")
		}
		if err := collectItems(ctx, r, itemIDs); err != nil {
			return internalError(err, "collect items")
		}

		if err := r.Sponsors().Delete(ctx, sponsor.ID); err != nil {
			return repoError(err, "delete sponsor")
		}
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionRemoveSponsor, model.AuditResourceSponsor, sponsor.ID, sponsor, nil); err != nil {
			return internalError(err, "audit")
		}
		return nil
	})
}

type ReportOutput struct {
	//キャンセル以外の注文の合計（セント）
	TotalSalesCents int64 `json:"total_sales_cents"`
	//売上の1%
	AdminFeeCents int64 `json:"admin_fee_cents"`
}

func (u *AdminUsecase) Reports(ctx context.Context, actorID int64) (ReportOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return ReportOutput{}, err
	}
	if actor.Role != model.RoleAdmin {
		return ReportOutput{}, ErrAccessDenied
	}

	total, err := u.repos.Orders().SumSalesCents(ctx)
	if err != nil {
		return ReportOutput{}, internalError(err, "sum sales")
	}
	return ReportOutput{TotalSalesCents: total, AdminFeeCents: total / 100}, nil
}

type AuditLogListInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AdminUsecase) AuditLogs(ctx context.Context, actorID int64, in AuditLogListInput) ([]model.AuditLog, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin {
		return nil, ErrAccessDenied
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		From:        in.From,
		To:          in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		f.ResourceType = &rt
	}

	logs, err := u.repos.AuditLogs().List(ctx, f)
	if err != nil {
		return nil, internalError(err, "list audit logs")
	}
	return logs, nil
}
