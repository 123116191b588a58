package repository

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

func (r *CatalogGormRepository) Create(ctx context.Context, catalog *model.Catalog) error {
	if catalog.CatalogType == "" {
		catalog.CatalogType = model.CatalogTypeRules
	}
	if catalog.PointValue <= 0 {
		catalog.PointValue = model.DefaultPointValue
	}
	return mapErr(r.db.WithContext(ctx).Create(catalog).Error)
}

func (r *CatalogGormRepository) FindBySponsorID(ctx context.Context, sponsorID int64) (model.Catalog, error) {
	db := r.db.WithContext(ctx)

	var c model.Catalog
	if err := db.Where("sponsor_id = ?", sponsorID).First(&c).Error; err != nil {
		return model.Catalog{}, mapErr(err)
	}

	//カテゴリ
	var cats []model.CatalogCategory
	if err := db.Where("catalog_id = ?", c.ID).Order("category asc").Find(&cats).Error; err != nil {
		return model.Catalog{}, err
	}
	c.Categories = make([]model.Category, 0, len(cats))
	for _, cc := range cats {
		c.Categories = append(c.Categories, cc.Category)
	}

	//ルール
	c.Rules = []model.Rule{}
	if err := db.Model(&model.Rule{}).
		Joins("JOIN catalog_rules ON catalog_rules.rule_id = rules.id").
		Where("catalog_rules.catalog_id = ?", c.ID).
		Order("rules.id asc").
		Find(&c.Rules).Error; err != nil {
		return model.Catalog{}, err
	}

	//商品
	c.Items = []model.Item{}
	if err := db.Model(&model.Item{}).
		Joins("JOIN catalog_items ON catalog_items.item_id = items.id").
		Where("catalog_items.catalog_id = ?", c.ID).
		Order("items.id asc").
		Find(&c.Items).Error; err != nil {
		return model.Catalog{}, err
	}

	return c, nil
}

func (r *CatalogGormRepository) UpdateSettings(ctx context.Context, catalogID int64, catalogType model.CatalogType, pointValue int64) error {
	res := r.db.WithContext(ctx).Model(&model.Catalog{}).
		Where("id = ?", catalogID).
		Updates(map[string]any{"catalog_type": catalogType, "point_value": pointValue})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CatalogGormRepository) AddItem(ctx context.Context, catalogID, itemID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CatalogItem{CatalogID: catalogID, ItemID: itemID}).Error
}

func (r *CatalogGormRepository) RemoveItem(ctx context.Context, catalogID, itemID int64) error {
	res := r.db.WithContext(ctx).
		Where("catalog_id = ? AND item_id = ?", catalogID, itemID).
		Delete(&model.CatalogItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CatalogGormRepository) SetCategories(ctx context.Context, catalogID int64, categories []model.Category) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("catalog_id = ?", catalogID).Delete(&model.CatalogCategory{}).Error; err != nil {
		return err
	}
	if len(categories) == 0 {
		return nil
	}

	rows := make([]model.CatalogCategory, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, model.CatalogCategory{CatalogID: catalogID, Category: c})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *CatalogGormRepository) AddRule(ctx context.Context, catalogID int64, rule string) (model.Rule, error) {
	db := r.db.WithContext(ctx)

	//同じ文字列のルールは共有する
	var ru model.Rule
	if err := db.Where(model.Rule{Rule: rule}).FirstOrCreate(&ru).Error; err != nil {
		return model.Rule{}, err
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CatalogRule{CatalogID: catalogID, RuleID: ru.ID}).Error; err != nil {
		return model.Rule{}, err
	}
	return ru, nil
}

func (r *CatalogGormRepository) RemoveRule(ctx context.Context, catalogID, ruleID int64) error {
	db := r.db.WithContext(ctx)
	res := db.Where("catalog_id = ? AND rule_id = ?", catalogID, ruleID).Delete(&model.CatalogRule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	//どのカタログにも使われていないルールは消す
	return db.Where("id = ? AND NOT EXISTS (SELECT 1 FROM catalog_rules WHERE rule_id = ?)", ruleID, ruleID).
		Delete(&model.Rule{}).Error
}

func (r *CatalogGormRepository) DeleteBySponsorID(ctx context.Context, sponsorID int64) ([]int64, error) {
	db := r.db.WithContext(ctx)

	var c model.Catalog
	if err := db.Where("sponsor_id = ?", sponsorID).First(&c).Error; err != nil {
		return nil, mapErr(err)
	}

	var itemIDs []int64
	if err := db.Model(&model.CatalogItem{}).Where("catalog_id = ?", c.ID).Pluck("item_id", &itemIDs).Error; err != nil {
		return nil, err
	}
	var ruleIDs []int64
	if err := db.Model(&model.CatalogRule{}).Where("catalog_id = ?", c.ID).Pluck("rule_id", &ruleIDs).Error; err != nil {
		return nil, err
	}

	for _, m := range []any{&model.CatalogItem{}, &model.CatalogRule{}, &model.CatalogCategory{}} {
		if err := db.Where("catalog_id = ?", c.ID).Delete(m).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Delete(&model.Catalog{}, c.ID).Error; err != nil {
		return nil, err
	}

	if len(ruleIDs) > 0 {
		if err := db.Where("id IN ? AND id NOT IN (SELECT rule_id FROM catalog_rules)", ruleIDs).
			Delete(&model.Rule{}).Error; err != nil {
			return nil, err
		}
	}
	return itemIDs, nil
}
