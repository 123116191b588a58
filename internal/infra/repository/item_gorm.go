package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

type itemGormRepository struct {
	db *gorm.DB
}

func NewItemGormRepository(db *gorm.DB) repo.ItemRepository {
	return &itemGormRepository{db: db}
}

func (r *itemGormRepository) GetOrCreate(ctx context.Context, externalID string) (model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).
		Where(model.Item{ExternalID: externalID}).
		FirstOrCreate(&it).Error
	if err != nil {
		return model.Item{}, mapErr(err)
	}
	return it, nil
}

func (r *itemGormRepository) FindByExternalID(ctx context.Context, externalID string) (model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&it).Error; err != nil {
		return model.Item{}, mapErr(err)
	}
	return it, nil
}

// 参照（カタログ・カート・注文）が1つでも残っていれば消さない
func (r *itemGormRepository) DeleteIfOrphaned(ctx context.Context, itemID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Where("NOT EXISTS (SELECT 1 FROM catalog_items WHERE item_id = ?)", itemID).
		Where("NOT EXISTS (SELECT 1 FROM cart_items WHERE item_id = ?)", itemID).
		Where("NOT EXISTS (SELECT 1 FROM order_items WHERE item_id = ?)", itemID).
		Delete(&model.Item{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
