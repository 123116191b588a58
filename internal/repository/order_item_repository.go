package repository

import (
	"context"

	"rewards/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, itemIDs []int64) error
	ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.Item, error)
}
