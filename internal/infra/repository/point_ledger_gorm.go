package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

type pointLedgerGormRepository struct {
	db *gorm.DB
}

func NewPointLedgerGormRepository(db *gorm.DB) repo.PointLedgerRepository {
	return &pointLedgerGormRepository{db: db}
}

func (r *pointLedgerGormRepository) Append(ctx context.Context, entry *model.PointLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// 新しい順
func (r *pointLedgerGormRepository) ListBySponsorshipID(ctx context.Context, sponsorshipID int64, limit, offset int) ([]model.PointLedgerEntry, error) {
	list := []model.PointLedgerEntry{}
	err := r.db.WithContext(ctx).
		Where("sponsorship_id = ?", sponsorshipID).
		Scopes(newestFirst, paginate(limit, offset)).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *pointLedgerGormRepository) DeleteBySponsorshipID(ctx context.Context, sponsorshipID int64) error {
	return r.db.WithContext(ctx).Where("sponsorship_id = ?", sponsorshipID).Delete(&model.PointLedgerEntry{}).Error
}
