package model

import "time"

// 配送先住所
// 注文ごとに1件作られる
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//番地など
	Street1 string `gorm:"type:varchar(40);not null" json:"street_1"`

	//市区町村
	City string `gorm:"type:varchar(40);not null" json:"city"`

	//州（2文字）
	State string `gorm:"type:varchar(2);not null" json:"state"`

	//郵便番号（5桁）
	ZipCode string `gorm:"type:varchar(5);not null" json:"zip_code"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
