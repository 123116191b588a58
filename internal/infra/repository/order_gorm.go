package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultOrderPageSize = 50
	maxOrderPageSize     = 100
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

var _ repo.OrderRepository = (*OrderGormRepository)(nil)

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return takeOrder(r.db.WithContext(ctx), orderID)
}

func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return takeOrder(forUpdate(r.db.WithContext(ctx)), orderID)
}

func takeOrder(db *gorm.DB, orderID int64) (model.Order, error) {
	var o model.Order
	err := db.Take(&o, orderID).Error
	return o, mapErr(err)
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return mapErr(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{ID: orderID}).Update("status", status)
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, sponsorshipID int64, key string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("sponsorship_id = ? AND idempotency_key = ?", sponsorshipID, key).
		Take(&o).Error
	ok, err := found(err)
	return o, ok, err
}

// ドライバー/スポンサーの絞り込みはsponsorshipsをJOIN
func orderFilter(f repo.OrderListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("orders.status = ?", f.Status)
		}
		if f.UserID == nil && f.SponsorID == nil {
			return db
		}
		db = db.Joins("JOIN sponsorships ON sponsorships.id = orders.sponsorship_id")
		if f.UserID != nil {
			db = db.Where("sponsorships.user_id = ?", *f.UserID)
		}
		if f.SponsorID != nil {
			db = db.Where("sponsorships.sponsor_id = ?", *f.SponsorID)
		}
		return db
	}
}

// pageは1始まり、件数は絞り込み後の総数
func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	size := f.Limit
	if size <= 0 || size > maxOrderPageSize {
		size = defaultOrderPageSize
	}
	page := max(f.Page, 1)

	q := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(orderFilter(f))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := []model.Order{}
	err := q.Select("orders.*").
		Order("orders.id desc").
		Limit(size).
		Offset((page - 1) * size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderGormRepository) AddressIDsBySponsorshipID(ctx context.Context, sponsorshipID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("sponsorship_id = ?", sponsorshipID).
		Distinct().
		Pluck("address_id", &ids).Error
	return ids, err
}

func (r *OrderGormRepository) DeleteBySponsorshipID(ctx context.Context, sponsorshipID int64) ([]int64, error) {
	db := r.db.WithContext(ctx)

	orderIDs := db.Model(&model.Order{}).Select("id").Where("sponsorship_id = ?", sponsorshipID)

	var itemIDs []int64
	err := db.Model(&model.OrderItem{}).
		Where("order_id IN (?)", orderIDs).
		Distinct().
		Pluck("item_id", &itemIDs).Error
	if err != nil {
		return nil, err
	}

	if err := db.Where("order_id IN (?)", orderIDs).Delete(&model.OrderItem{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("sponsorship_id = ?", sponsorshipID).Delete(&model.Order{}).Error; err != nil {
		return nil, err
	}
	return itemIDs, nil
}

// 小計(ポイント) x 注文時のpoint_value = セント
func (r *OrderGormRepository) SumSalesCents(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusCanceled).
		Select("COALESCE(SUM(subtotal * point_value), 0)").
		Scan(&total).Error
	return total, err
}
