package repository

import (
	"context"

	"rewards/internal/domain/model"
)

type SponsorshipRepository interface {
	//同じ組み合わせがあるとErrDuplicate
	Create(ctx context.Context, s *model.Sponsorship) error
	FindByID(ctx context.Context, sponsorshipID int64) (model.Sponsorship, error)
	//行ロック付き（ポイント更新・状態遷移の前に使う）
	FindByIDForUpdate(ctx context.Context, sponsorshipID int64) (model.Sponsorship, error)
	FindByPairForUpdate(ctx context.Context, userID, sponsorID int64) (model.Sponsorship, error)
	//存在しなければfound=false
	FindByPair(ctx context.Context, userID, sponsorID int64) (model.Sponsorship, bool, error)

	ListByUserID(ctx context.Context, userID int64) ([]model.Sponsorship, error)
	//active=nilなら全件
	ListBySponsorID(ctx context.Context, sponsorID int64, active *bool) ([]model.Sponsorship, error)

	Activate(ctx context.Context, sponsorshipID int64) error
	UpdatePoints(ctx context.Context, sponsorshipID int64, points int64) error
	Delete(ctx context.Context, sponsorshipID int64) error
}
