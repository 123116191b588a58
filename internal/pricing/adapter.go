// Package pricing は外部マーケットの価格をスポンサーのポイントに換算する。
// 価格は毎回取り直す（キャッシュしない）。
package pricing

import (
	"context"
	"errors"
	"log/slog"

	"rewards/internal/config"
	"rewards/internal/infra/oracle"

	"golang.org/x/sync/errgroup"
)

// 価格が取れない商品があった（チェックアウト用）
var ErrUnpriced = errors.New("pricing: item could not be priced")

type Oracle interface {
	Lookup(ctx context.Context, externalID string) (oracle.Listing, error)
	Search(ctx context.Context, q oracle.SearchQuery) ([]oracle.Listing, error)
}

// ポイント換算済みの商品
type PricedItem struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	ImageURL   string `json:"image_url"`
	PriceCents int64  `json:"price_cents"`
	Points     int64  `json:"points"`
}

// points = round(price_cents / point_value)
// point_valueは1ポイントあたりのセント数。四捨五入
func PointsFor(priceCents, pointValue int64) int64 {
	if pointValue <= 0 {
		pointValue = 1
	}
	if priceCents <= 0 {
		return 0
	}
	return (2*priceCents + pointValue) / (2 * pointValue)
}

func Price(l oracle.Listing, pointValue int64) PricedItem {
	return PricedItem{
		ExternalID: l.ExternalID,
		Title:      l.Title,
		URL:        l.URL,
		ImageURL:   l.ImageURL,
		PriceCents: l.PriceCents,
		Points:     PointsFor(l.PriceCents, pointValue),
	}
}

type Adapter struct {
	oracle         Oracle
	maxConcurrency int
	logger         *slog.Logger
}

func NewAdapter(o Oracle, cfg config.Config, logger *slog.Logger) *Adapter {
	n := cfg.Oracle.MaxConcurrency
	if n <= 0 {
		n = 1
	}
	return &Adapter{oracle: o, maxConcurrency: n, logger: logger}
}

// 取れなかった商品は黙って除外する。順番は入力どおり
func (a *Adapter) PriceItems(ctx context.Context, externalIDs []string, pointValue int64) []PricedItem {
	results, _ := a.lookupAll(ctx, externalIDs, pointValue)

	out := make([]PricedItem, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// 1件でも取れなければErrUnpriced
func (a *Adapter) PriceAll(ctx context.Context, externalIDs []string, pointValue int64) ([]PricedItem, error) {
	results, missing := a.lookupAll(ctx, externalIDs, pointValue)
	if missing > 0 {
		return nil, ErrUnpriced
	}

	out := make([]PricedItem, 0, len(results))
	for _, r := range results {
		out = append(out, *r)
	}
	return out, nil
}

// 検索結果の換算（0件・失敗は空）
func (a *Adapter) Search(ctx context.Context, q oracle.SearchQuery, pointValue int64) []PricedItem {
	list, err := a.oracle.Search(ctx, q)
	if err != nil {
		if !errors.Is(err, oracle.ErrNoResult) {
			a.logger.WarnContext(ctx, "oracle search failed", slog.String("keywords", q.Keywords), slog.Any("error", err))
		}
		return []PricedItem{}
	}

	out := make([]PricedItem, 0, len(list))
	for _, l := range list {
		out = append(out, Price(l, pointValue))
	}
	return out
}

// 並列で引く（上限maxConcurrency）
func (a *Adapter) lookupAll(ctx context.Context, externalIDs []string, pointValue int64) ([]*PricedItem, int) {
	results := make([]*PricedItem, len(externalIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)
	for i, id := range externalIDs {
		g.Go(func() error {
			l, err := a.oracle.Lookup(gctx, id)
			if err != nil {
				if !errors.Is(err, oracle.ErrNoResult) {
					a.logger.WarnContext(ctx, "oracle lookup failed", slog.String("external_id", id), slog.Any("error", err))
				}
				return nil
			}
			p := Price(l, pointValue)
			//検索キーではなく保存しているIDを返す
			p.ExternalID = id
			results[i] = &p
			return nil
		})
	}
	_ = g.Wait()

	missing := 0
	for _, r := range results {
		if r == nil {
			missing++
		}
	}
	return results, missing
}

func Subtotal(items []PricedItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Points
	}
	return total
}
