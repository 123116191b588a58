package repository

import (
	"context"

	"rewards/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	//ドライバー本人の注文
	UserID *int64
	//スポンサーの注文（マネージャー用）
	SponsorID *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	Create(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, sponsorshipID int64, key string) (model.Order, bool, error)
	//新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	//sponsorshipの注文が使った配送先
	AddressIDsBySponsorshipID(ctx context.Context, sponsorshipID int64) ([]int64, error)
	//sponsorshipの注文を明細ごと消し、参照していた商品IDを返す
	DeleteBySponsorshipID(ctx context.Context, sponsorshipID int64) ([]int64, error)

	//キャンセル以外の売上（セント）
	SumSalesCents(ctx context.Context) (int64, error)
}
