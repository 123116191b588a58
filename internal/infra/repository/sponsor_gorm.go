package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

type sponsorGormRepository struct {
	db *gorm.DB
}

func NewSponsorGormRepository(db *gorm.DB) repo.SponsorRepository {
	return &sponsorGormRepository{db: db}
}

func (r *sponsorGormRepository) Create(ctx context.Context, sponsor *model.Sponsor) error {
	return mapErr(r.db.WithContext(ctx).Create(sponsor).Error)
}

func (r *sponsorGormRepository) FindByID(ctx context.Context, sponsorID int64) (*model.Sponsor, error) {
	var s model.Sponsor
	if err := r.db.WithContext(ctx).First(&s, sponsorID).Error; err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *sponsorGormRepository) List(ctx context.Context) ([]model.Sponsor, error) {
	var list []model.Sponsor
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *sponsorGormRepository) Rename(ctx context.Context, sponsorID int64, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Sponsor{ID: sponsorID}).Update("name", name)
	switch {
	case res.Error != nil:
		return mapErr(res.Error)
	case res.RowsAffected == 0:
		return repo.ErrNotFound
	}
	return nil
}

func (r *sponsorGormRepository) Delete(ctx context.Context, sponsorID int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", sponsorID).Delete(&model.Sponsor{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
