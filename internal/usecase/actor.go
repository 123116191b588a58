package usecase

import (
	"context"
	"errors"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"
)

// 操作しているユーザーを読み込む（消されていたら401）
func loadActor(ctx context.Context, users repo.UserRepository, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrUnauthorized
	}
	u, err := users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, ErrUnauthorized
	}
	if err != nil {
		return model.User{}, internalError(err, "load actor")
	}
	return *u, nil
}

// マネージャーの所属スポンサーID
func employerOf(actor model.User) (int64, error) {
	if actor.Role != model.RoleStoreManager || actor.EmployerID == nil {
		return 0, ErrAccessDenied
	}
	return *actor.EmployerID, nil
}
