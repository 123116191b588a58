package model

// 外部マーケットの出品ID
// カタログ・カート・注文のどこからも参照されなくなったら削除する
type Item struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID string `gorm:"type:varchar(50);not null;uniqueIndex" json:"external_id"`
}
