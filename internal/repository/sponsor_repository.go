package repository

import (
	"context"

	"rewards/internal/domain/model"
)

type SponsorRepository interface {
	Create(ctx context.Context, sponsor *model.Sponsor) error
	FindByID(ctx context.Context, sponsorID int64) (*model.Sponsor, error)
	List(ctx context.Context) ([]model.Sponsor, error)
	//名前重複はErrDuplicate
	Rename(ctx context.Context, sponsorID int64, name string) error
	Delete(ctx context.Context, sponsorID int64) error
}
