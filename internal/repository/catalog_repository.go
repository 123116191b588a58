package repository

import (
	"context"

	"rewards/internal/domain/model"
)

type CatalogRepository interface {
	Create(ctx context.Context, catalog *model.Catalog) error
	//カテゴリ・ルール・商品も読み込む
	FindBySponsorID(ctx context.Context, sponsorID int64) (model.Catalog, error)
	UpdateSettings(ctx context.Context, catalogID int64, catalogType model.CatalogType, pointValue int64) error

	//既にあれば何もしない
	AddItem(ctx context.Context, catalogID, itemID int64) error
	RemoveItem(ctx context.Context, catalogID, itemID int64) error

	//カテゴリは丸ごと置き換え
	SetCategories(ctx context.Context, catalogID int64, categories []model.Category) error

	//ルールは文字列で共有される
	AddRule(ctx context.Context, catalogID int64, rule string) (model.Rule, error)
	RemoveRule(ctx context.Context, catalogID, ruleID int64) error

	//結合行ごと削除し、外れた商品IDを返す
	DeleteBySponsorID(ctx context.Context, sponsorID int64) ([]int64, error)
}
