package usecase

import (
	"context"
	"log/slog"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	"rewards/internal/infra/oracle"
	"rewards/internal/pricing"
	repo "rewards/internal/repository"
)

// カタログ設定（マネージャー・管理者）と閲覧
type CatalogUsecase struct {
	tx      repo.TransactionManager
	repos   repo.TxRepos
	pricing *pricing.Adapter
	logger  *slog.Logger
}

func NewCatalogUsecase(tx repo.TransactionManager, repos repo.TxRepos, adapter *pricing.Adapter, logger *slog.Logger) *CatalogUsecase {
	return &CatalogUsecase{tx: tx, repos: repos, pricing: adapter, logger: logger}
}

func (u *CatalogUsecase) manager(ctx context.Context, actorID, sponsorID int64) (model.User, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return model.User{}, err
	}
	if !policy.CanManageSponsor(actor, sponsorID) {
		return model.User{}, ErrAccessDenied
	}
	return actor, nil
}

func (u *CatalogUsecase) Get(ctx context.Context, actorID, sponsorID int64) (model.Catalog, error) {
	if _, err := u.manager(ctx, actorID, sponsorID); err != nil {
		return model.Catalog{}, err
	}
	c, err := u.repos.Catalogs().FindBySponsorID(ctx, sponsorID)
	if err != nil {
		return model.Catalog{}, repoError(err, "find catalog")
	}
	return c, nil
}

type CatalogSettingsInput struct {
	CatalogType model.CatalogType
	PointValue  int64
}

func (u *CatalogUsecase) UpdateSettings(ctx context.Context, actorID, sponsorID int64, in CatalogSettingsInput) (model.Catalog, error) {
	actor, err := u.manager(ctx, actorID, sponsorID)
	if err != nil {
		return model.Catalog{}, err
	}
	if !in.CatalogType.Valid() {
		return model.Catalog{}, validationError("catalog_type")
	}
	if in.PointValue <= 0 {
		return model.Catalog{}, validationError("point_value")
	}

	var out model.Catalog
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Catalogs().FindBySponsorID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find catalog")
		}
		if err := r.Catalogs().UpdateSettings(ctx, c.ID, in.CatalogType, in.PointValue); err != nil {
			return repoError(err, "update catalog")
		}

		before := c
		c.CatalogType = in.CatalogType
		c.PointValue = in.PointValue
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionUpdateCatalog, model.AuditResourceCatalog, c.ID, before, c); err != nil {
			return internalError(err, "audit")
		}
		out = c
		return nil
	})
	if err != nil {
		return model.Catalog{}, err
	}
	return out, nil
}

// 固定商品リストに追加（Items型で使う）
func (u *CatalogUsecase) AddItem(ctx context.Context, actorID, sponsorID int64, externalID string) (model.Item, error) {
	if _, err := u.manager(ctx, actorID, sponsorID); err != nil {
		return model.Item{}, err
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return model.Item{}, validationError("item_id")
	}

	var out model.Item
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Catalogs().FindBySponsorID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find catalog")
		}
		item, err := r.Items().GetOrCreate(ctx, externalID)
		if err != nil {
			return internalError(err, "get item")
		}
		if err := r.Catalogs().AddItem(ctx, c.ID, item.ID); err != nil {
			return internalError(err, "add catalog item")
		}
		out = item
		return nil
	})
	if err != nil {
		return model.Item{}, err
	}
	return out, nil
}

// 外した結果どこからも参照されなければ商品も消える
func (u *CatalogUsecase) RemoveItem(ctx context.Context, actorID, sponsorID int64, externalID string) error {
	if _, err := u.manager(ctx, actorID, sponsorID); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Catalogs().FindBySponsorID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find catalog")
		}
		item, err := r.Items().FindByExternalID(ctx, externalID)
		if err != nil {
			return repoError(err, "find item")
		}
		if err := r.Catalogs().RemoveItem(ctx, c.ID, item.ID); err != nil {
			return repoError(err, "remove catalog item")
		}
		if _, err := r.Items().DeleteIfOrphaned(ctx, item.ID); err != nil {
			return internalError(err, "collect item")
		}
		return nil
	})
}

func (u *CatalogUsecase) SetCategories(ctx context.Context, actorID, sponsorID int64, categories []model.Category) (model.Catalog, error) {
	if _, err := u.manager(ctx, actorID, sponsorID); err != nil {
		return model.Catalog{}, err
	}

	seen := make(map[model.Category]struct{}, len(categories))
	uniq := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if !c.Valid() {
			return model.Catalog{}, validationError("categories")
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}

	var out model.Catalog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Catalogs().FindBySponsorID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find catalog")
		}
		if err := r.Catalogs().SetCategories(ctx, c.ID, uniq); err != nil {
			return internalError(err, "set categories")
		}
		c.Categories = uniq
		out = c
		return nil
	})
	if err != nil {
		return model.Catalog{}, err
	}
	return out, nil
}

// ルールは "Name:Value"
func (u *CatalogUsecase) AddRule(ctx context.Context, actorID, sponsorID int64, rule string) (model.Rule, error) {
	if _, err := u.manager(ctx, actorID, sponsorID); err != nil {
		return model.Rule{}, err
	}
	rule = strings.TrimSpace(rule)
	if _, ok := pricing.ParseRule(rule); !ok || len(rule) > 50 {
		return model.Rule{}, validationError("rule")
	}

	var out model.Rule
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Catalogs().FindBySponsorID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find catalog")
		}
		if out, err = r.Catalogs().AddRule(ctx, c.ID, rule); err != nil {
			return internalError(err, "add rule")
		}
		return nil
	})
	if err != nil {
		return model.Rule{}, err
	}
	return out, nil
}

func (u *CatalogUsecase) RemoveRule(ctx context.Context, actorID, sponsorID, ruleID int64) error {
	if _, err := u.manager(ctx, actorID, sponsorID); err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Catalogs().FindBySponsorID(ctx, sponsorID)
		if err != nil {
			return repoError(err, "find catalog")
		}
		if err := r.Catalogs().RemoveRule(ctx, c.ID, ruleID); err != nil {
			return repoError(err, "remove rule")
		}
		return nil
	})
}

type BrowseInput struct {
	SponsorID int64
	Keywords  string
	Page      int
}

type BrowseOutput struct {
	SponsorID   int64                `json:"sponsor_id"`
	CatalogType model.CatalogType    `json:"catalog_type"`
	PointValue  int64                `json:"point_value"`
	Page        int                  `json:"page"`
	Items       []pricing.PricedItem `json:"items"`
}

// 閲覧できるのは管理者・所属マネージャー・ACTIVEなドライバー
// 値段が取れない商品は表示しないだけ
func (u *CatalogUsecase) Browse(ctx context.Context, actorID int64, in BrowseInput) (BrowseOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return BrowseOutput{}, err
	}
	if err := u.canBrowse(ctx, actor, in.SponsorID); err != nil {
		return BrowseOutput{}, err
	}

	c, err := u.repos.Catalogs().FindBySponsorID(ctx, in.SponsorID)
	if err != nil {
		return BrowseOutput{}, repoError(err, "find catalog")
	}

	page := in.Page
	if page <= 0 {
		page = 1
	}
	items := pricing.StrategyFor(c).Browse(ctx, u.pricing, pricing.BrowseQuery{
		Keywords: strings.TrimSpace(in.Keywords),
		Page:     page,
	})

	return BrowseOutput{
		SponsorID:   c.SponsorID,
		CatalogType: c.CatalogType,
		PointValue:  c.PointValue,
		Page:        page,
		Items:       items,
	}, nil
}

func (u *CatalogUsecase) canBrowse(ctx context.Context, actor model.User, sponsorID int64) error {
	if policy.CanManageSponsor(actor, sponsorID) {
		return nil
	}
	if actor.Role != model.RoleDriver {
		return ErrAccessDenied
	}
	s, found, err := u.repos.Sponsorships().FindByPair(ctx, actor.ID, sponsorID)
	if err != nil {
		return internalError(err, "find sponsorship")
	}
	if !found || !s.Active {
		return ErrAccessDenied
	}
	return nil
}

// マネージャーが固定商品を選ぶためのマーケット検索（カタログの絞り込みなし）
func (u *CatalogUsecase) SearchMarket(ctx context.Context, actorID int64, in BrowseInput) (BrowseOutput, error) {
	if _, err := u.manager(ctx, actorID, in.SponsorID); err != nil {
		return BrowseOutput{}, err
	}
	keywords := strings.TrimSpace(in.Keywords)
	if keywords == "" {
		return BrowseOutput{}, validationError("keywords")
	}

	c, err := u.repos.Catalogs().FindBySponsorID(ctx, in.SponsorID)
	if err != nil {
		return BrowseOutput{}, repoError(err, "find catalog")
	}

	page := in.Page
	if page <= 0 {
		page = 1
	}
	items := u.pricing.Search(ctx, oracle.SearchQuery{
		Keywords: keywords,
		Filters:  oracle.DefaultFilters,
		Page:     page,
	}, c.PointValue)

	return BrowseOutput{
		SponsorID:   c.SponsorID,
		CatalogType: c.CatalogType,
		PointValue:  c.PointValue,
		Page:        page,
		Items:       items,
	}, nil
}
