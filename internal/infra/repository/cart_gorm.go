package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 追加順で返す
func (r *CartGormRepository) ListItems(ctx context.Context, sponsorshipID int64) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Joins("JOIN cart_items ON cart_items.item_id = items.id").
		Where("cart_items.sponsorship_id = ?", sponsorshipID).
		Order("cart_items.created_at asc, items.id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// (sponsorship, item)の複合主キーなので2回目は何もしない
func (r *CartGormRepository) Add(ctx context.Context, sponsorshipID, itemID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CartItem{SponsorshipID: sponsorshipID, ItemID: itemID}).Error
}

func (r *CartGormRepository) Remove(ctx context.Context, sponsorshipID, itemID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("sponsorship_id = ? AND item_id = ?", sponsorshipID, itemID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// 明細を空にする
func (r *CartGormRepository) Clear(ctx context.Context, sponsorshipID int64) ([]int64, error) {
	db := r.db.WithContext(ctx)

	var itemIDs []int64
	if err := db.Model(&model.CartItem{}).
		Where("sponsorship_id = ?", sponsorshipID).
		Pluck("item_id", &itemIDs).Error; err != nil {
		return nil, err
	}
	if err := db.Where("sponsorship_id = ?", sponsorshipID).Delete(&model.CartItem{}).Error; err != nil {
		return nil, err
	}
	return itemIDs, nil
}

var _ repo.CartRepository = (*CartGormRepository)(nil)
