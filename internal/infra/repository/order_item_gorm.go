package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	rows := make([]model.OrderItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		rows = append(rows, model.OrderItem{OrderID: orderID, ItemID: id})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *OrderItemGormRepository) ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.Item, error) {
	items := []model.Item{}
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Joins("JOIN order_items ON order_items.item_id = items.id").
		Where("order_items.order_id = ?", orderID).
		Order("items.id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

var _ repo.OrderItemRepository = (*OrderItemGormRepository)(nil)
