package model

import "time"

type CatalogType string

const (
	CatalogTypeCategories CatalogType = "CATEGORIES"
	CatalogTypeItems      CatalogType = "ITEMS"
	CatalogTypeRules      CatalogType = "RULES"
)

func (t CatalogType) Valid() bool {
	switch t {
	case CatalogTypeCategories, CatalogTypeItems, CatalogTypeRules:
		return true
	}
	return false
}

type Category string

const (
	CategoryAutomotive  Category = "Automotive"
	CategoryClothing    Category = "Clothing"
	CategoryElectronics Category = "Electronics"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAutomotive, CategoryClothing, CategoryElectronics:
		return true
	}
	return false
}

const DefaultPointValue = 1

// スポンサーごとに1つ
// PointValueは1ポイントあたりのセント数
type Catalog struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	SponsorID   int64       `gorm:"not null;uniqueIndex" json:"sponsor_id"`
	CatalogType CatalogType `gorm:"type:varchar(20);not null;default:'RULES'" json:"catalog_type"`
	PointValue  int64       `gorm:"not null;default:1" json:"point_value"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Categories []Category `gorm:"-" json:"categories"`
	Rules      []Rule     `gorm:"-" json:"rules"`
	Items      []Item     `gorm:"-" json:"items"`
}

// 閲覧ルール（"Name:Value" 形式でoracleのフィルタになる）
type Rule struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Rule string `gorm:"type:varchar(50);not null;uniqueIndex" json:"rule"`
}

// 以下は複合主キーの結合テーブル
type CatalogCategory struct {
	CatalogID int64    `gorm:"primaryKey;autoIncrement:false"`
	Category  Category `gorm:"primaryKey;type:varchar(20)"`
}

type CatalogItem struct {
	CatalogID int64 `gorm:"primaryKey;autoIncrement:false"`
	ItemID    int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

type CatalogRule struct {
	CatalogID int64 `gorm:"primaryKey;autoIncrement:false"`
	RuleID    int64 `gorm:"primaryKey;autoIncrement:false;index"`
}
