package usecase

import (
	"context"
	"log/slog"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	repo "rewards/internal/repository"
)

type AccountUsecase struct {
	repos  repo.TxRepos
	logger *slog.Logger
}

func NewAccountUsecase(repos repo.TxRepos, logger *slog.Logger) *AccountUsecase {
	return &AccountUsecase{repos: repos, logger: logger}
}

// nilは変更しない
type UpdateAccountInput struct {
	FirstName   *string
	LastName    *string
	IssueAlert  *bool
	OrderAlert  *bool
	PointsAlert *bool
}

// 本人・管理者・ドライバーのACTIVEなスポンサーのマネージャー
func (u *AccountUsecase) target(ctx context.Context, actorID, userID int64) (model.User, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return model.User{}, err
	}
	if actor.ID == userID {
		return actor, nil
	}

	target, err := u.repos.Users().FindByID(ctx, userID)
	if err != nil {
		return model.User{}, repoError(err, "find user")
	}
	var sponsorIDs []int64
	if target.Role == model.RoleDriver {
		list, err := u.repos.Sponsorships().ListByUserID(ctx, target.ID)
		if err != nil {
			return model.User{}, internalError(err, "list sponsorships")
		}
		for _, s := range list {
			if s.Active {
				sponsorIDs = append(sponsorIDs, s.SponsorID)
			}
		}
	}
	if !policy.HasAccountAccess(actor, *target, sponsorIDs) {
		return model.User{}, ErrAccessDenied
	}
	return *target, nil
}

func (u *AccountUsecase) Get(ctx context.Context, actorID, userID int64) (model.User, error) {
	return u.target(ctx, actorID, userID)
}

func (u *AccountUsecase) Update(ctx context.Context, actorID, userID int64, in UpdateAccountInput) (model.User, error) {
	user, err := u.target(ctx, actorID, userID)
	if err != nil {
		return model.User{}, err
	}

	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" || len(v) > 20 {
			return model.User{}, validationError("first_name")
		}
		user.FirstName = v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if v == "" || len(v) > 20 {
			return model.User{}, validationError("last_name")
		}
		user.LastName = v
	}
	if in.IssueAlert != nil {
		user.IssueAlert = *in.IssueAlert
	}
	if in.OrderAlert != nil {
		user.OrderAlert = *in.OrderAlert
	}
	if in.PointsAlert != nil {
		user.PointsAlert = *in.PointsAlert
	}

	if err := u.repos.Users().Update(ctx, &user); err != nil {
		return model.User{}, repoError(err, "update user")
	}
	return user, nil
}
