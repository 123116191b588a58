package pricing

import (
	"context"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/infra/oracle"
)

type BrowseQuery struct {
	Keywords string
	Page     int
}

// カタログの種類ごとの閲覧方法
type Strategy interface {
	Browse(ctx context.Context, a *Adapter, q BrowseQuery) []PricedItem
}

// リクエストごとに1回だけ選ぶ
func StrategyFor(c model.Catalog) Strategy {
	switch c.CatalogType {
	case model.CatalogTypeCategories:
		return categoriesStrategy{categories: c.Categories, pointValue: c.PointValue}
	case model.CatalogTypeItems:
		ids := make([]string, 0, len(c.Items))
		for _, it := range c.Items {
			ids = append(ids, it.ExternalID)
		}
		return itemsStrategy{externalIDs: ids, pointValue: c.PointValue}
	default:
		return rulesStrategy{rules: c.Rules, pointValue: c.PointValue}
	}
}

// マーケット側のカテゴリID
var categoryIDs = map[model.Category]string{
	model.CategoryAutomotive:  "6000",
	model.CategoryClothing:    "11450",
	model.CategoryElectronics: "293",
}

type categoriesStrategy struct {
	categories []model.Category
	pointValue int64
}

func (s categoriesStrategy) Browse(ctx context.Context, a *Adapter, q BrowseQuery) []PricedItem {
	//カテゴリ未設定なら何も見せない
	if len(s.categories) == 0 {
		return []PricedItem{}
	}
	ids := make([]string, 0, len(s.categories))
	for _, c := range s.categories {
		if id, ok := categoryIDs[c]; ok {
			ids = append(ids, id)
		}
	}
	return a.Search(ctx, oracle.SearchQuery{
		Keywords:    q.Keywords,
		CategoryIDs: ids,
		Filters:     oracle.DefaultFilters,
		Page:        q.Page,
	}, s.pointValue)
}

// 固定の商品リスト。キーワードはタイトルで絞る
type itemsStrategy struct {
	externalIDs []string
	pointValue  int64
}

func (s itemsStrategy) Browse(ctx context.Context, a *Adapter, q BrowseQuery) []PricedItem {
	items := a.PriceItems(ctx, s.externalIDs, s.pointValue)

	kw := strings.ToLower(strings.TrimSpace(q.Keywords))
	if kw == "" {
		return items
	}
	out := make([]PricedItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), kw) {
			out = append(out, it)
		}
	}
	return out
}

// キーワード検索 + ルール（Name:Value）をフィルタに
type rulesStrategy struct {
	rules      []model.Rule
	pointValue int64
}

func (s rulesStrategy) Browse(ctx context.Context, a *Adapter, q BrowseQuery) []PricedItem {
	filters := append([]oracle.Filter{}, oracle.DefaultFilters...)
	for _, r := range s.rules {
		if f, ok := ParseRule(r.Rule); ok {
			filters = append(filters, f)
		}
	}
	return a.Search(ctx, oracle.SearchQuery{
		Keywords: q.Keywords,
		Filters:  filters,
		Page:     q.Page,
	}, s.pointValue)
}

// "MaxPrice:50" -> {MaxPrice 50}
func ParseRule(rule string) (oracle.Filter, bool) {
	name, value, ok := strings.Cut(rule, ":")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return oracle.Filter{}, false
	}
	return oracle.Filter{Name: name, Value: value}, true
}
