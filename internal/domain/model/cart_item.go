package model

import "time"

// カート（sponsorship x item）
// 数量は持たない。同じ商品の再追加は何もしない
type CartItem struct {
	SponsorshipID int64     `gorm:"primaryKey;autoIncrement:false" json:"sponsorship_id"`
	ItemID        int64     `gorm:"primaryKey;autoIncrement:false;index" json:"item_id"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
