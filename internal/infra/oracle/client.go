// Package oracle は外部マーケットの検索API（Finding API形式）のクライアント。
// 0件と失敗は呼び出し側で区別できるようにエラーを分ける。
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rewards/internal/config"

	"github.com/pkg/errors"
)

var (
	ErrNoResult    = errors.New("oracle: no result")
	ErrUnavailable = errors.New("oracle: unavailable")
)

const EntriesPerPage = 30

// 検索結果1件
type Listing struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	ImageURL   string `json:"image_url"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
}

type Filter struct {
	Name  string
	Value string
}

type SearchQuery struct {
	Keywords    string
	CategoryIDs []string
	Filters     []Filter
	Page        int
}

// 出品の絞り込み（新品・送料無料）
var DefaultFilters = []Filter{
	{Name: "Condition", Value: "New"},
	{Name: "FreeShippingOnly", Value: "true"},
}

type Client struct {
	http   *http.Client
	cfg    config.Oracle
	logger *slog.Logger
}

func New(cfg config.Config, logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: cfg.Oracle.Timeout},
		cfg:    cfg.Oracle,
		logger: logger,
	}
}

// 外部IDで1件引く（先頭の結果を使う）
func (c *Client) Lookup(ctx context.Context, externalID string) (Listing, error) {
	if strings.TrimSpace(externalID) == "" {
		return Listing{}, ErrNoResult
	}

	params := url.Values{}
	params.Set("keywords", externalID)

	list, err := c.call(ctx, "findItemsByKeywords", params)
	if err != nil {
		return Listing{}, err
	}
	return list[0], nil
}

func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Listing, error) {
	keywords := strings.TrimSpace(q.Keywords)
	if keywords == "" && len(q.CategoryIDs) == 0 {
		return nil, ErrNoResult
	}

	params := url.Values{}
	if keywords != "" {
		params.Set("keywords", keywords)
	}
	for i, id := range q.CategoryIDs {
		params.Set(fmt.Sprintf("categoryId(%d)", i), id)
	}
	for i, f := range q.Filters {
		params.Set(fmt.Sprintf("itemFilter(%d).name", i), f.Name)
		params.Set(fmt.Sprintf("itemFilter(%d).value", i), f.Value)
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	params.Set("paginationInput.entriesPerPage", strconv.Itoa(EntriesPerPage))
	params.Set("paginationInput.pageNumber", strconv.Itoa(page))

	//カテゴリ指定はfindItemsAdvancedのみ
	op := "findItemsByKeywords"
	if len(q.CategoryIDs) > 0 {
		op = "findItemsAdvanced"
	}
	return c.call(ctx, op, params)
}

func (c *Client) call(ctx context.Context, op string, params url.Values) ([]Listing, error) {
	params.Set("OPERATION-NAME", op)
	params.Set("SERVICE-VERSION", "1.0.0")
	params.Set("SECURITY-APPNAME", c.cfg.AppID)
	params.Set("RESPONSE-DATA-FORMAT", "JSON")
	if c.cfg.SiteID != "" {
		params.Set("GLOBAL-ID", c.cfg.SiteID)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, errors.Wrapf(ErrUnavailable, "status %d", res.StatusCode)
	}

	var body map[string][]findingResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(ErrUnavailable, "decode: "+err.Error())
	}
	return parseResponse(body[op+"Response"])
}

// Finding APIのJSONは全部配列で包まれている
type findingResponse struct {
	Ack          []string `json:"ack"`
	SearchResult []struct {
		Count string        `json:"@count"`
		Item  []findingItem `json:"item"`
	} `json:"searchResult"`
}

type findingItem struct {
	ItemID        []string `json:"itemId"`
	Title         []string `json:"title"`
	ViewItemURL   []string `json:"viewItemURL"`
	GalleryURL    []string `json:"galleryURL"`
	SellingStatus []struct {
		CurrentPrice []struct {
			CurrencyID string `json:"@currencyId"`
			Value      string `json:"__value__"`
		} `json:"currentPrice"`
	} `json:"sellingStatus"`
}

func parseResponse(rs []findingResponse) ([]Listing, error) {
	if len(rs) == 0 {
		return nil, errors.Wrap(ErrUnavailable, "empty response")
	}
	r := rs[0]
	if first(r.Ack) == "Failure" {
		return nil, errors.Wrap(ErrUnavailable, "ack failure")
	}
	if len(r.SearchResult) == 0 || r.SearchResult[0].Count == "0" || len(r.SearchResult[0].Item) == 0 {
		return nil, ErrNoResult
	}

	out := make([]Listing, 0, len(r.SearchResult[0].Item))
	for _, it := range r.SearchResult[0].Item {
		l, ok := toListing(it)
		if !ok {
			continue
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, ErrNoResult
	}
	return out, nil
}

func toListing(it findingItem) (Listing, bool) {
	if len(it.SellingStatus) == 0 || len(it.SellingStatus[0].CurrentPrice) == 0 {
		return Listing{}, false
	}
	p := it.SellingStatus[0].CurrentPrice[0]
	cents, err := parseCents(p.Value)
	if err != nil {
		return Listing{}, false
	}
	return Listing{
		ExternalID: first(it.ItemID),
		Title:      first(it.Title),
		URL:        first(it.ViewItemURL),
		ImageURL:   first(it.GalleryURL),
		PriceCents: cents,
		Currency:   p.CurrencyID,
	}, true
}

// "12.34" -> 1234
func parseCents(v string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, errors.Errorf("negative price: %s", v)
	}
	return int64(math.Round(f * 100)), nil
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
