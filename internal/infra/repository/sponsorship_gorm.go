package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

type SponsorshipGormRepository struct {
	db *gorm.DB
}

func NewSponsorshipGormRepository(db *gorm.DB) *SponsorshipGormRepository {
	return &SponsorshipGormRepository{db: db}
}

func (r *SponsorshipGormRepository) Create(ctx context.Context, s *model.Sponsorship) error {
	return mapErr(r.db.WithContext(ctx).Create(s).Error)
}

func (r *SponsorshipGormRepository) FindByID(ctx context.Context, sponsorshipID int64) (model.Sponsorship, error) {
	var s model.Sponsorship
	err := r.db.WithContext(ctx).Where("id = ?", sponsorshipID).First(&s).Error
	if err != nil {
		return model.Sponsorship{}, mapErr(err)
	}
	return s, nil
}

func (r *SponsorshipGormRepository) FindByIDForUpdate(ctx context.Context, sponsorshipID int64) (model.Sponsorship, error) {
	var s model.Sponsorship
	err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", sponsorshipID).First(&s).Error
	if err != nil {
		return model.Sponsorship{}, mapErr(err)
	}
	return s, nil
}

func (r *SponsorshipGormRepository) FindByPairForUpdate(ctx context.Context, userID, sponsorID int64) (model.Sponsorship, error) {
	var s model.Sponsorship
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND sponsor_id = ?", userID, sponsorID).
		First(&s).Error
	if err != nil {
		return model.Sponsorship{}, mapErr(err)
	}
	return s, nil
}

func (r *SponsorshipGormRepository) FindByPair(ctx context.Context, userID, sponsorID int64) (model.Sponsorship, bool, error) {
	var s model.Sponsorship
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sponsor_id = ?", userID, sponsorID).
		Take(&s).Error
	ok, err := found(err)
	return s, ok, err
}

func (r *SponsorshipGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Sponsorship, error) {
	var list []model.Sponsorship
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SponsorshipGormRepository) ListBySponsorID(ctx context.Context, sponsorID int64, active *bool) ([]model.Sponsorship, error) {
	q := r.db.WithContext(ctx).Where("sponsor_id = ?", sponsorID)
	if active != nil {
		q = q.Where("active = ?", *active)
	}

	var list []model.Sponsorship
	if err := q.Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SponsorshipGormRepository) Activate(ctx context.Context, sponsorshipID int64) error {
	return r.updateColumn(ctx, sponsorshipID, "active", true)
}

func (r *SponsorshipGormRepository) UpdatePoints(ctx context.Context, sponsorshipID int64, points int64) error {
	return r.updateColumn(ctx, sponsorshipID, "points", points)
}

func (r *SponsorshipGormRepository) updateColumn(ctx context.Context, sponsorshipID int64, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&model.Sponsorship{}).
		Where("id = ?", sponsorshipID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SponsorshipGormRepository) Delete(ctx context.Context, sponsorshipID int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", sponsorshipID).Delete(&model.Sponsorship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
