package repository

import (
	"context"

	"rewards/internal/domain/model"
)

// 見つからなければErrNotFound、email重複はErrDuplicate
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//全カラム上書き
	Update(ctx context.Context, user *model.User) error
	//employer_idがsponsorIDの店舗マネージャー
	ListByEmployer(ctx context.Context, sponsorID int64) ([]model.User, error)
	Delete(ctx context.Context, userID int64) error
}
