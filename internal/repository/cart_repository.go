package repository

import (
	"context"

	"rewards/internal/domain/model"
)

// カートはsponsorshipごと（数量なし）
type CartRepository interface {
	ListItems(ctx context.Context, sponsorshipID int64) ([]model.Item, error)
	//同じ商品は何もしない
	Add(ctx context.Context, sponsorshipID, itemID int64) error
	//消したらtrue
	Remove(ctx context.Context, sponsorshipID, itemID int64) (bool, error)
	//消した商品IDを返す
	Clear(ctx context.Context, sponsorshipID int64) ([]int64, error)
}
