package usecase

import (
	"context"
	"log/slog"
	"strings"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	"rewards/internal/pricing"
	repo "rewards/internal/repository"
)

// カート（sponsorshipごと、数量なし）
type CartUsecase struct {
	tx      repo.TransactionManager
	repos   repo.TxRepos
	pricing *pricing.Adapter
	logger  *slog.Logger
}

func NewCartUsecase(tx repo.TransactionManager, repos repo.TxRepos, adapter *pricing.Adapter, logger *slog.Logger) *CartUsecase {
	return &CartUsecase{tx: tx, repos: repos, pricing: adapter, logger: logger}
}

// 表示用の見積もり。値段は毎回取り直す
type CartOutput struct {
	SponsorshipID int64                `json:"sponsorship_id"`
	Items         []pricing.PricedItem `json:"items"`
	//値段が取れなかった商品の数（カートからは消さない）
	Unavailable int   `json:"unavailable"`
	Subtotal    int64 `json:"subtotal"`
	Points      int64 `json:"points"`
	Rewards     int64 `json:"rewards"`
	Total       int64 `json:"total"`
}

// rewards = min(subtotal, points), total = subtotal - rewards
func splitPayment(subtotal, points int64) (rewards, total int64) {
	rewards = min(subtotal, max(points, 0))
	return rewards, subtotal - rewards
}

func externalIDs(items []model.Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ExternalID)
	}
	return ids
}

func (u *CartUsecase) Get(ctx context.Context, actorID, sponsorshipID int64) (CartOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return CartOutput{}, err
	}
	s, err := u.repos.Sponsorships().FindByID(ctx, sponsorshipID)
	if err != nil {
		return CartOutput{}, repoError(err, "find sponsorship")
	}
	if !policy.CanViewSponsorship(actor, s) {
		return CartOutput{}, ErrAccessDenied
	}

	out, _, err := quoteCart(ctx, u.pricing, u.repos, s)
	return out, err
}

// カートの中身を今の値段で見積もる（値段が取れない商品は除く）
func quoteCart(ctx context.Context, a *pricing.Adapter, r repo.TxRepos, s model.Sponsorship) (CartOutput, []model.Item, error) {
	items, err := r.Carts().ListItems(ctx, s.ID)
	if err != nil {
		return CartOutput{}, nil, internalError(err, "list cart")
	}
	c, err := r.Catalogs().FindBySponsorID(ctx, s.SponsorID)
	if err != nil {
		return CartOutput{}, nil, repoError(err, "find catalog")
	}

	priced := a.PriceItems(ctx, externalIDs(items), c.PointValue)
	subtotal := pricing.Subtotal(priced)
	rewards, total := splitPayment(subtotal, s.Points)

	return CartOutput{
		SponsorshipID: s.ID,
		Items:         priced,
		Unavailable:   len(items) - len(priced),
		Subtotal:      subtotal,
		Points:        s.Points,
		Rewards:       rewards,
		Total:         total,
	}, items, nil
}

// ドライバー本人かつACTIVEのみ
func (u *CartUsecase) ownCart(ctx context.Context, r repo.TxRepos, actor model.User, sponsorshipID int64) (model.Sponsorship, error) {
	s, err := r.Sponsorships().FindByIDForUpdate(ctx, sponsorshipID)
	if err != nil {
		return model.Sponsorship{}, repoError(err, "find sponsorship")
	}
	if !policy.CanUseCart(actor, s) || !s.Active {
		return model.Sponsorship{}, ErrAccessDenied
	}
	return s, nil
}

// 同じ商品を2回入れても1つのまま
func (u *CartUsecase) Add(ctx context.Context, actorID, sponsorshipID int64, externalID string) error {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return err
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return validationError("item_id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := u.ownCart(ctx, r, actor, sponsorshipID)
		if err != nil {
			return err
		}
		item, err := r.Items().GetOrCreate(ctx, externalID)
		if err != nil {
			return internalError(err, "get item")
		}
		if err := r.Carts().Add(ctx, s.ID, item.ID); err != nil {
			return internalError(err, "add cart item")
		}
		return nil
	})
}

func (u *CartUsecase) Remove(ctx context.Context, actorID, sponsorshipID int64, externalID string) error {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return err
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := u.ownCart(ctx, r, actor, sponsorshipID)
		if err != nil {
			return err
		}
		item, err := r.Items().FindByExternalID(ctx, externalID)
		if err != nil {
			return repoError(err, "find item")
		}
		removed, err := r.Carts().Remove(ctx, s.ID, item.ID)
		if err != nil {
			return internalError(err, "remove cart item")
		}
		if !removed {
			return ErrNotFound
		}
		if _, err := r.Items().DeleteIfOrphaned(ctx, item.ID); err != nil {
			return internalError(err, "collect item")
		}
		return nil
	})
}

type OpenCartOutput struct {
	SponsorshipID int64  `json:"sponsorship_id"`
	DriverID      int64  `json:"driver_id"`
	DriverName    string `json:"driver_name"`
	ItemCount     int    `json:"item_count"`
}

// マネージャー向け：所属ドライバーのうちカートが空でないもの
func (u *CartUsecase) ListOpenCarts(ctx context.Context, actorID int64) ([]OpenCartOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return nil, err
	}
	sponsorID, err := employerOf(actor)
	if err != nil {
		return nil, err
	}

	active := true
	list, err := u.repos.Sponsorships().ListBySponsorID(ctx, sponsorID, &active)
	if err != nil {
		return nil, internalError(err, "list sponsorships")
	}

	outs := make([]OpenCartOutput, 0)
	for _, s := range list {
		items, err := u.repos.Carts().ListItems(ctx, s.ID)
		if err != nil {
			return nil, internalError(err, "list cart")
		}
		if len(items) == 0 {
			continue
		}
		out := OpenCartOutput{SponsorshipID: s.ID, DriverID: s.UserID, ItemCount: len(items)}
		if d, err := u.repos.Users().FindByID(ctx, s.UserID); err == nil {
			out.DriverName = d.FullName()
		}
		outs = append(outs, out)
	}
	return outs, nil
}
