package model

// 注文 x 商品（複合主キー）
type OrderItem struct {
	OrderID int64 `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	ItemID  int64 `gorm:"primaryKey;autoIncrement:false;index" json:"item_id"`
}
