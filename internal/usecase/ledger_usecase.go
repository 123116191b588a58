package usecase

import (
	"context"
	"log/slog"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	repo "rewards/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	maxReasonLength     = 255
)

// ポイントの付与・減算と履歴
// 使用（SPEND）はチェックアウトからだけ
type LedgerUsecase struct {
	tx     repo.TransactionManager
	repos  repo.TxRepos
	notes  *Notifications
	logger *slog.Logger
}

func NewLedgerUsecase(tx repo.TransactionManager, repos repo.TxRepos, notes *Notifications, logger *slog.Logger) *LedgerUsecase {
	return &LedgerUsecase{tx: tx, repos: repos, notes: notes, logger: logger}
}

type AwardInput struct {
	SponsorshipID int64
	Delta         int64
	Reason        string
}

type AwardOutput struct {
	SponsorshipID int64                  `json:"sponsorship_id"`
	Points        int64                  `json:"points"`
	Entry         model.PointLedgerEntry `json:"entry"`
}

// 付与（負数なら減算）。残高が0未満になる変更は拒否
func (u *LedgerUsecase) Award(ctx context.Context, actorID int64, in AwardInput) (AwardOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return AwardOutput{}, err
	}
	if in.Delta == 0 {
		return AwardOutput{}, validationError("delta")
	}
	reason := strings.TrimSpace(in.Reason)
	if len(reason) > maxReasonLength {
		return AwardOutput{}, validationError("reason")
	}

	var (
		out     AwardOutput
		updated model.Sponsorship
		driver  *model.User
		sponsor *model.Sponsor
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Sponsorships().FindByIDForUpdate(ctx, in.SponsorshipID)
		if err != nil {
			return repoError(err, "find sponsorship")
		}
		if !policy.CanAward(actor, s) {
			return ErrAccessDenied
		}

		balance := s.Points + in.Delta
		if balance < 0 {
			return validationError("points")
		}
		if err := r.Sponsorships().UpdatePoints(ctx, s.ID, balance); err != nil {
			return repoError(err, "update points")
		}

		eventType := model.PointEventAward
		if in.Delta < 0 {
			eventType = model.PointEventAdjust
		}
		entry := model.PointLedgerEntry{
			SponsorshipID: s.ID,
			ActorUserID:   actor.ID,
			EventType:     eventType,
			Change:        in.Delta,
			BalanceAfter:  balance,
			Reason:        reason,
		}
		if err := r.Ledger().Append(ctx, &entry); err != nil {
			return internalError(err, "append ledger")
		}

		before := s
		s.Points = balance
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionAwardPoints, model.AuditResourceSponsorship, s.ID, before, s); err != nil {
			return internalError(err, "audit")
		}

		if driver, err = r.Users().FindByID(ctx, s.UserID); err != nil {
			return repoError(err, "find driver")
		}
		if sponsor, err = r.Sponsors().FindByID(ctx, s.SponsorID); err != nil {
			return repoError(err, "find sponsor")
		}

		updated = s
		out = AwardOutput{SponsorshipID: s.ID, Points: balance, Entry: entry}
		return nil
	})
	if err != nil {
		return AwardOutput{}, err
	}

	u.notes.PointsBalance(ctx, *driver, *sponsor, updated)
	return out, nil
}

type HistoryOutput struct {
	SponsorshipID int64                    `json:"sponsorship_id"`
	Points        int64                    `json:"points"`
	Entries       []model.PointLedgerEntry `json:"entries"`
}

// 新しい順
func (u *LedgerUsecase) History(ctx context.Context, actorID, sponsorshipID int64, limit, offset int) (HistoryOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return HistoryOutput{}, err
	}

	s, err := u.repos.Sponsorships().FindByID(ctx, sponsorshipID)
	if err != nil {
		return HistoryOutput{}, repoError(err, "find sponsorship")
	}
	if !policy.CanViewSponsorship(actor, s) {
		return HistoryOutput{}, ErrAccessDenied
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := u.repos.Ledger().ListBySponsorshipID(ctx, s.ID, limit, offset)
	if err != nil {
		return HistoryOutput{}, internalError(err, "list ledger")
	}
	return HistoryOutput{SponsorshipID: s.ID, Points: s.Points, Entries: entries}, nil
}
