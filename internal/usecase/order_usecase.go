package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rewards/internal/domain/model"
	"rewards/internal/domain/policy"
	"rewards/internal/pricing"
	repo "rewards/internal/repository"

	"github.com/google/uuid"
)

// チェックアウトと注文のステータス管理
type OrderUsecase struct {
	tx      repo.TransactionManager
	repos   repo.TxRepos
	pricing *pricing.Adapter
	notes   *Notifications
	logger  *slog.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, repos repo.TxRepos, adapter *pricing.Adapter, notes *Notifications, logger *slog.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, repos: repos, pricing: adapter, notes: notes, logger: logger}
}

type AddressInput struct {
	Street1 string
	City    string
	State   string
	ZipCode string
}

func (in AddressInput) normalize() AddressInput {
	return AddressInput{
		Street1: strings.TrimSpace(in.Street1),
		City:    strings.TrimSpace(in.City),
		State:   strings.ToUpper(strings.TrimSpace(in.State)),
		ZipCode: strings.TrimSpace(in.ZipCode),
	}
}

func (in AddressInput) validate() error {
	if in.Street1 == "" || len(in.Street1) > 40 {
		return validationError("street_1")
	}
	if in.City == "" || len(in.City) > 40 {
		return validationError("city")
	}
	if len(in.State) != 2 || !allIn(in.State, 'A', 'Z') {
		return validationError("state")
	}
	if len(in.ZipCode) != 5 || !allIn(in.ZipCode, '0', '9') {
		return validationError("zip_code")
	}
	return nil
}

func allIn(s string, lo, hi byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < lo || s[i] > hi {
			return false
		}
	}
	return true
}

type CheckoutPreviewOutput struct {
	Cart CartOutput `json:"cart"`
	//前回の配送先（無ければnil）
	Address *model.Address `json:"address,omitempty"`
}

// 確定前の見積もりと住所のプリフィル
func (u *OrderUsecase) PreviewCheckout(ctx context.Context, actorID, sponsorshipID int64) (CheckoutPreviewOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return CheckoutPreviewOutput{}, err
	}
	s, err := u.repos.Sponsorships().FindByID(ctx, sponsorshipID)
	if err != nil {
		return CheckoutPreviewOutput{}, repoError(err, "find sponsorship")
	}
	if !policy.CanCheckout(actor, s) {
		return CheckoutPreviewOutput{}, ErrAccessDenied
	}

	cart, items, err := quoteCart(ctx, u.pricing, u.repos, s)
	if err != nil {
		return CheckoutPreviewOutput{}, err
	}
	if len(items) == 0 {
		return CheckoutPreviewOutput{}, ErrCartEmpty
	}

	out := CheckoutPreviewOutput{Cart: cart}
	driver, err := u.repos.Users().FindByID(ctx, s.UserID)
	if err != nil {
		return CheckoutPreviewOutput{}, repoError(err, "find driver")
	}
	if driver.AddressID != nil {
		if a, err := u.repos.Addresses().FindByID(ctx, *driver.AddressID); err == nil {
			out.Address = a
		}
	}
	return out, nil
}

type CheckoutInput struct {
	SponsorshipID int64
	Address       AddressInput
	//同じキーの再送は同じ注文を返す（空なら毎回新規）
	IdempotencyKey string
}

type OrderOutput struct {
	Order   model.Order          `json:"order"`
	Address *model.Address       `json:"address,omitempty"`
	Items   []pricing.PricedItem `json:"items"`
	//値段が取れなかった商品の数
	Unavailable int `json:"unavailable"`
}

// 注文確定
// 値段はtxの外で全件取る。1件でも取れなければ注文しない
// ポイントはrewards = min(subtotal, points)だけ減らす
func (u *OrderUsecase) Checkout(ctx context.Context, actorID int64, in CheckoutInput) (OrderOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return OrderOutput{}, err
	}
	addr := in.Address.normalize()
	if err := addr.validate(); err != nil {
		return OrderOutput{}, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, validationError("idempotency_key")
	}
	if key == "" {
		key = uuid.NewString()
	}

	s, err := u.repos.Sponsorships().FindByID(ctx, in.SponsorshipID)
	if err != nil {
		return OrderOutput{}, repoError(err, "find sponsorship")
	}
	if !policy.CanCheckout(actor, s) || !s.Active {
		return OrderOutput{}, ErrAccessDenied
	}

	if o, found, err := u.repos.Orders().FindByIdempotencyKey(ctx, s.ID, key); err != nil {
		return OrderOutput{}, internalError(err, "find order")
	} else if found {
		return u.detail(ctx, o)
	}

	items, err := u.repos.Carts().ListItems(ctx, s.ID)
	if err != nil {
		return OrderOutput{}, internalError(err, "list cart")
	}
	if len(items) == 0 {
		return OrderOutput{}, ErrCartEmpty
	}
	c, err := u.repos.Catalogs().FindBySponsorID(ctx, s.SponsorID)
	if err != nil {
		return OrderOutput{}, repoError(err, "find catalog")
	}
	priced, err := u.pricing.PriceAll(ctx, externalIDs(items), c.PointValue)
	if err != nil {
		return OrderOutput{}, withCause(ErrOracleUnavailable, err, "price cart")
	}

	var (
		order   model.Order
		address model.Address
		driver  *model.User
		sponsor *model.Sponsor
		replay  bool
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		locked, err := r.Sponsorships().FindByIDForUpdate(ctx, s.ID)
		if err != nil {
			return repoError(err, "lock sponsorship")
		}
		if !locked.Active {
			return ErrAccessDenied
		}

		//ロック待ちの間に同じキーで確定済み
		if o, found, err := r.Orders().FindByIdempotencyKey(ctx, locked.ID, key); err != nil {
			return internalError(err, "find order")
		} else if found {
			order, replay = o, true
			return nil
		}

		current, err := r.Carts().ListItems(ctx, locked.ID)
		if err != nil {
			return internalError(err, "list cart")
		}
		if len(current) == 0 {
			return ErrCartEmpty
		}
		if !sameItems(items, current) {
			return ErrCartChanged
		}

		subtotal := pricing.Subtotal(priced)
		rewards, total := splitPayment(subtotal, locked.Points)

		if driver, err = r.Users().FindByID(ctx, locked.UserID); err != nil {
			return repoError(err, "find driver")
		}
		if sponsor, err = r.Sponsors().FindByID(ctx, locked.SponsorID); err != nil {
			return repoError(err, "find sponsor")
		}

		address = model.Address{
			UserID:  driver.ID,
			Street1: addr.Street1,
			City:    addr.City,
			State:   addr.State,
			ZipCode: addr.ZipCode,
		}
		if err := r.Addresses().Create(ctx, &address); err != nil {
			return internalError(err, "create address")
		}

		order = model.Order{
			SponsorshipID:  locked.ID,
			AddressID:      address.ID,
			Status:         model.OrderStatusOrdered,
			Subtotal:       subtotal,
			Rewards:        rewards,
			AmountDue:      total,
			PointValue:     c.PointValue,
			IdempotencyKey: key,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrConflict
			}
			return internalError(err, "create order")
		}

		itemIDs := make([]int64, 0, len(current))
		for _, it := range current {
			itemIDs = append(itemIDs, it.ID)
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, itemIDs); err != nil {
			return internalError(err, "create order items")
		}
		if _, err := r.Carts().Clear(ctx, locked.ID); err != nil {
			return internalError(err, "clear cart")
		}

		if rewards > 0 {
			balance := locked.Points - rewards
			if err := r.Sponsorships().UpdatePoints(ctx, locked.ID, balance); err != nil {
				return repoError(err, "update points")
			}
			orderID := order.ID
			if err := r.Ledger().Append(ctx, &model.PointLedgerEntry{
				SponsorshipID: locked.ID,
				ActorUserID:   actor.ID,
				EventType:     model.PointEventSpend,
				Change:        -rewards,
				BalanceAfter:  balance,
				OrderID:       &orderID,
			}); err != nil {
				return internalError(err, "append ledger")
			}
		}

		//次回のプリフィル用
		driver.AddressID = &address.ID
		if err := r.Users().Update(ctx, driver); err != nil {
			return repoError(err, "update driver")
		}
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	if replay {
		return u.detail(ctx, order)
	}

	u.notes.OrderSummary(ctx, *driver, *sponsor, order, priced)
	u.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("sponsorship_id", order.SponsorshipID),
		slog.Int64("subtotal", order.Subtotal),
		slog.Int64("rewards", order.Rewards),
	)

	return OrderOutput{Order: order, Address: &address, Items: priced}, nil
}

// 見積もり後にカートが変わっていないか
func sameItems(a, b []model.Item) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]struct{}, len(a))
	for _, it := range a {
		seen[it.ID] = struct{}{}
	}
	for _, it := range b {
		if _, ok := seen[it.ID]; !ok {
			return false
		}
	}
	return true
}

// ステータス更新（管理者・所属マネージャー）
// 同じステータスへの更新は何もしない
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorID, orderID int64, status model.OrderStatus) (model.Order, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return model.Order{}, err
	}
	if !status.Valid() {
		return model.Order{}, validationError("status")
	}
	return u.transition(ctx, actor, orderID, status, policy.CanUpdateOrderStatus)
}

// キャンセル（本人・所属マネージャー・管理者）。ポイントは戻さない
func (u *OrderUsecase) Cancel(ctx context.Context, actorID, orderID int64) (model.Order, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return model.Order{}, err
	}
	return u.transition(ctx, actor, orderID, model.OrderStatusCanceled, policy.CanCancelOrder)
}

func (u *OrderUsecase) transition(ctx context.Context, actor model.User, orderID int64, next model.OrderStatus, allowed func(model.User, model.Sponsorship) bool) (model.Order, error) {
	var (
		out     model.Order
		changed bool
		driver  *model.User
		sponsor *model.Sponsor
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return repoError(err, "find order")
		}
		s, err := r.Sponsorships().FindByID(ctx, o.SponsorshipID)
		if err != nil {
			return repoError(err, "find sponsorship")
		}
		if !allowed(actor, s) {
			return ErrAccessDenied
		}

		if o.Status == next {
			out = o
			return nil
		}
		if !o.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, next); err != nil {
			return repoError(err, "update status")
		}

		before := o
		o.Status = next
		o.UpdatedAt = time.Now()
		if err := writeAudit(ctx, r, actor.ID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, o.ID, before, o); err != nil {
			return internalError(err, "audit")
		}

		if next == model.OrderStatusCanceled {
			if driver, err = r.Users().FindByID(ctx, s.UserID); err != nil {
				return repoError(err, "find driver")
			}
			if sponsor, err = r.Sponsors().FindByID(ctx, s.SponsorID); err != nil {
				return repoError(err, "find sponsor")
			}
		}
		out = o
		changed = true
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	if changed && next == model.OrderStatusCanceled {
		u.notes.OrderCanceled(ctx, *driver, *sponsor, out)
	}
	return out, nil
}

type OrderListInput struct {
	Page   int
	Limit  int
	Status string
}

type OrderListOutput struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// ドライバーは自分の注文、マネージャーはスポンサーの注文、管理者は全件
func (u *OrderUsecase) List(ctx context.Context, actorID int64, in OrderListInput) (OrderListOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return OrderListOutput{}, err
	}

	page := in.Page
	if page <= 0 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	f := repo.OrderListFilter{Page: page, Limit: limit}
	if in.Status != "" {
		st := model.OrderStatus(strings.ToUpper(in.Status))
		if !st.Valid() {
			return OrderListOutput{}, validationError("status")
		}
		f.Status = string(st)
	}

	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleStoreManager:
		sponsorID, err := employerOf(actor)
		if err != nil {
			return OrderListOutput{}, err
		}
		f.SponsorID = &sponsorID
	default:
		f.UserID = &actor.ID
	}

	orders, total, err := u.repos.Orders().List(ctx, f)
	if err != nil {
		return OrderListOutput{}, internalError(err, "list orders")
	}
	return OrderListOutput{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

// 明細は注文時のpoint_valueで今の値段を出す
func (u *OrderUsecase) Detail(ctx context.Context, actorID, orderID int64) (OrderOutput, error) {
	actor, err := loadActor(ctx, u.repos.Users(), actorID)
	if err != nil {
		return OrderOutput{}, err
	}
	o, err := u.repos.Orders().FindByID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, repoError(err, "find order")
	}
	s, err := u.repos.Sponsorships().FindByID(ctx, o.SponsorshipID)
	if err != nil {
		return OrderOutput{}, repoError(err, "find sponsorship")
	}
	if !policy.CanViewOrder(actor, s) {
		return OrderOutput{}, ErrAccessDenied
	}
	return u.detail(ctx, o)
}

func (u *OrderUsecase) detail(ctx context.Context, o model.Order) (OrderOutput, error) {
	items, err := u.repos.OrderItems().ListItemsByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, internalError(err, "list order items")
	}
	priced := u.pricing.PriceItems(ctx, externalIDs(items), o.PointValue)

	out := OrderOutput{Order: o, Items: priced, Unavailable: len(items) - len(priced)}
	if a, err := u.repos.Addresses().FindByID(ctx, o.AddressID); err == nil {
		out.Address = a
	}
	return out, nil
}
