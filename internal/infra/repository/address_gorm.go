package repository

import (
	"context"

	"rewards/internal/domain/model"

	"gorm.io/gorm"
)

type AddressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

func (r *AddressGormRepository) Create(ctx context.Context, a *model.Address) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AddressGormRepository) FindByID(ctx context.Context, addressID int64) (*model.Address, error) {
	a := &model.Address{}
	if err := r.db.WithContext(ctx).Where("id = ?", addressID).Take(a).Error; err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (r *AddressGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Address{}).Error
}

func (r *AddressGormRepository) DeleteOrphaned(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	return db.Where("id IN ?", ids).
		Where("NOT EXISTS (?)", db.Model(&model.Order{}).Select("1").Where("orders.address_id = addresses.id")).
		Where("NOT EXISTS (?)", db.Model(&model.User{}).Select("1").Where("users.address_id = addresses.id")).
		Delete(&model.Address{}).Error
}
