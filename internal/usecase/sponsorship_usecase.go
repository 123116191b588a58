package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	repo "rewards/internal/repository"
)

// ドライバーとスポンサーの関係（申請→承認/却下→解除）
type SponsorshipUsecase struct {
	tx     repo.TransactionManager
	repos  repo.TxRepos
	notes  *Notifications
	logger *slog.Logger
}

func NewSponsorshipUsecase(tx repo.TransactionManager, repos repo.TxRepos, notes *Notifications, logger *slog.Logger) *SponsorshipUsecase {
	return &SponsorshipUsecase{tx: tx, repos: repos, notes: notes, logger: logger}
}

type SponsorshipOutput struct {
	ID          int64                  `json:"id"`
	UserID      int64                  `json:"user_id"`
	SponsorID   int64                  `json:"sponsor_id"`
	SponsorName string                 `json:"sponsor_name,omitempty"`
	DriverName  string                 `json:"driver_name,omitempty"`
	Points      int64                  `json:"points"`
	State       model.SponsorshipState `json:"state"`
	CreatedAt   time.Time              `json:"created_at"`
}

func toSponsorshipOutput(s model.Sponsorship) SponsorshipOutput {
	return SponsorshipOutput{
		ID:        s.ID,
		UserID:    s.UserID,
		SponsorID: s.SponsorID,
		Points:    s.Points,
		State:     s.State(),
		CreatedAt: s.CreatedAt,
	}
}

// 申請（NONE -> APPLIED）
func (u *SponsorshipUsecase) Apply(ctx context.Context, actorID, sponsorID int64) (SponsorshipOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return SponsorshipOutput{}, err
	}
	if !policy.CanApply(actor) {
		return SponsorshipOutput{}, ErrAccessDenied
	}
	if sponsorID <= 0 {
		return SponsorshipOutput{}, validationError("sponsor_id")
	}

	var out SponsorshipOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sponsor, err := r.Sponsors().FindByID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find sponsor")
		}

		//申請中・承認済みのどちらでも重複
		if _, found, err := r.Sponsorships().FindByPair(ctx, actor.ID, sponsorID); err != nil {
			return internalError(err, "find sponsorship")
		} else if found {
			return ErrDuplicateRelationship
		}

		s := model.Sponsorship{UserID: actor.ID, SponsorID: sponsorID, Points: 0, Active: false}
		if err := r.Sponsorships().Create(ctx, &s); err != nil {
			//同時申請は一意制約で弾かれる
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateRelationship
			}
			return internalError(err, "create sponsorship")
		}

		out = toSponsorshipOutput(s)
		out.SponsorName = sponsor.Name
		return nil
	})
	if err != nil {
		return SponsorshipOutput{}, err
	}
	return out, nil
}

// 所属スポンサーへの申請を読み込んで状態を確認する
func (u *SponsorshipUsecase) findApplied(ctx context.Context, r repo.TxRepos, actor model.User, driverID int64) (model.Sponsorship, error) {
	sponsorID, err := employerOf(actor)
	if err != nil {
		return model.Sponsorship{}, err
	}
	s, err := r.Sponsorships().FindByPairForUpdate(ctx, driverID, sponsorID)
	if err != nil {
		return model.Sponsorship{}, repoError(err, "find sponsorship")
	}
	if !policy.CanReview(actor, s) {
		return model.Sponsorship{}, ErrAccessDenied
	}
	if s.State() != model.SponsorshipStateApplied {
		return model.Sponsorship{}, ErrInvalidTransition
	}
	return s, nil
}

// 承認（APPLIED -> ACTIVE）
func (u *SponsorshipUsecase) Approve(ctx context.Context, actorID, driverID int64) (SponsorshipOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return SponsorshipOutput{}, err
	}

	var (
		approved model.Sponsorship
		driver   *model.User
		sponsor  *model.Sponsor
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := u.findApplied(ctx, r, actor, driverID)
		if err != nil {
			return err
		}
		if err := r.Sponsorships().Activate(ctx, s.ID); err != nil {
			return repoError(err, "activate sponsorship")
		}

		before := s
		s.Active = true
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionApproveSponsorship, model.AuditResourceSponsorship, s.ID, before, s); err != nil {
			return internalError(err, "audit")
		}

		if driver, err = r.Users().FindByID(ctx, s.UserID); err != nil {
			return repoError(err, "find driver")
		}
		if sponsor, err = r.Sponsors().FindByID(ctx, s.SponsorID); err != nil {
			return repoError(err, "find sponsor")
		}
		approved = s
		return nil
	})
	if err != nil {
		return SponsorshipOutput{}, err
	}

	u.notes.NewSponsorship(ctx, *driver, *sponsor, approved)

	out := toSponsorshipOutput(approved)
	out.SponsorName = sponsor.Name
	out.DriverName = driver.FullName()
	return out, nil
}

// 却下（APPLIED -> NONE）
func (u *SponsorshipUsecase) Reject(ctx context.Context, actorID, driverID int64) error {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := u.findApplied(ctx, r, actor, driverID)
		if err != nil {
			return err
		}
		if err := r.Sponsorships().Delete(ctx, s.ID); err != nil {
			return repoError(err, "delete sponsorship")
		}
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionRejectSponsorship, model.AuditResourceSponsorship, s.ID, s, nil); err != nil {
			return internalError(err, "audit")
		}
		return nil
	})
}

// 解除（ACTIVE -> 削除）。カート・注文・履歴も消える
func (u *SponsorshipUsecase) Remove(ctx context.Context, actorID, sponsorshipID int64) error {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Sponsorships().FindByIDForUpdate(ctx, sponsorshipID)
		if err != nil {
			return repoError(err, "find sponsorship")
		}
		if !policy.CanRemoveSponsorship(actor, s) {
			return ErrAccessDenied
		}
		//申請中は却下で扱う
		if s.State() != model.SponsorshipStateActive {
			return ErrInvalidTransition
		}
		if err := removeSponsorshipTx(ctx, r, s); err != nil {
			return internalError(err, "remove sponsorship")
		}
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionRemoveSponsorship, model.AuditResourceSponsorship, s.ID, s, nil); err != nil {
			return internalError(err, "audit")
		}
		return nil
	})
}

// ドライバー本人のsponsorship一覧
func (u *SponsorshipUsecase) ListMine(ctx context.Context, actorID int64) ([]SponsorshipOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return nil, err
	}

	list, err := u.repos.Sponsorships().ListByUserID(ctx, actor.ID)
	if err != nil {
		return nil, internalError(err, "list sponsorships")
	}

	outs := make([]SponsorshipOutput, 0, len(list))
	for _, s := range list {
		out := toSponsorshipOutput(s)
		if sp, err := u.repos.Sponsors().FindByID(ctx, s.SponsorID); err == nil {
			out.SponsorName = sp.Name
		}
		outs = append(outs, out)
	}
	return outs, nil
}

// マネージャー向け：申請中（active=false）または所属ドライバー（active=true）
func (u *SponsorshipUsecase) ListDrivers(ctx context.Context, actorID int64, active bool) ([]SponsorshipOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return nil, err
	}
	sponsorID, err := employerOf(actor)
	if err != nil {
		return nil, err
	}

	list, err := u.repos.Sponsorships().ListBySponsorID(ctx, sponsorID, &active)
	if err != nil {
		return nil, internalError(err, "list sponsorships")
	}

	outs := make([]SponsorshipOutput, 0, len(list))
	for _, s := range list {
		out := toSponsorshipOutput(s)
		if d, err := u.repos.Users().FindByID(ctx, s.UserID); err == nil {
			out.DriverName = d.FullName()
		}
		outs = append(outs, out)
	}
	return outs, nil
}
