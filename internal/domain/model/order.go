package model

import "time"

type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "ORDERED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// 許可される遷移
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusOrdered: {OrderStatusShipped, OrderStatusCanceled},
	OrderStatusShipped: {OrderStatusDelivered, OrderStatusCanceled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOrdered, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// DELIVERED / CANCELED は終端
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// チェックアウト時点のスナップショット。作成後はStatus以外変更しない
type Order struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	SponsorshipID int64       `gorm:"not null;index;uniqueIndex:idx_orders_idempotency,priority:1" json:"sponsorship_id"`
	AddressID     int64       `gorm:"not null" json:"address_id"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//ポイント換算の金額
	Subtotal  int64 `gorm:"not null" json:"subtotal"`
	Rewards   int64 `gorm:"not null" json:"rewards"`
	AmountDue int64 `gorm:"not null" json:"amount_due"`

	//注文時のpoint_value
	PointValue int64 `gorm:"not null" json:"point_value"`

	//同じsponsorship内で一意
	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_idempotency,priority:2" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
