package model

import "time"

type PointEventType string

const (
	//マネージャーによる付与
	PointEventAward PointEventType = "AWARD"
	//マネージャーによる減算
	PointEventAdjust PointEventType = "ADJUST"
	//チェックアウトでの使用
	PointEventSpend PointEventType = "SPEND"
)

// ポイント増減の履歴（追記のみ）
type PointLedgerEntry struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SponsorshipID int64          `gorm:"not null;index" json:"sponsorship_id"`
	ActorUserID   int64          `gorm:"not null" json:"actor_user_id"`
	EventType     PointEventType `gorm:"type:varchar(20);not null" json:"event_type"`
	Change        int64          `gorm:"not null" json:"change"`
	BalanceAfter  int64          `gorm:"not null" json:"balance_after"`
	Reason        string         `gorm:"type:varchar(255)" json:"reason,omitempty"`
	OrderID       *int64         `json:"order_id,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
