package repository

import (
	"context"

	repo "rewards/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users        repo.UserRepository
	sponsors     repo.SponsorRepository
	sponsorships repo.SponsorshipRepository
	catalogs     repo.CatalogRepository
	items        repo.ItemRepository
	carts        repo.CartRepository
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	addresses    repo.AddressRepository
	ledger       repo.PointLedgerRepository
	auditLogs    repo.AuditLogRepository
	tickets      repo.SupportTicketRepository
}

func (r *txReposGorm) Users() repo.UserRepository               { return r.users }
func (r *txReposGorm) Sponsors() repo.SponsorRepository         { return r.sponsors }
func (r *txReposGorm) Sponsorships() repo.SponsorshipRepository { return r.sponsorships }
func (r *txReposGorm) Catalogs() repo.CatalogRepository         { return r.catalogs }
func (r *txReposGorm) Items() repo.ItemRepository               { return r.items }
func (r *txReposGorm) Carts() repo.CartRepository               { return r.carts }
func (r *txReposGorm) Orders() repo.OrderRepository             { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository     { return r.orderItems }
func (r *txReposGorm) Addresses() repo.AddressRepository        { return r.addresses }
func (r *txReposGorm) Ledger() repo.PointLedgerRepository       { return r.ledger }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }
func (r *txReposGorm) Tickets() repo.SupportTicketRepository    { return r.tickets }

// txを持ったDBでrepoを全部作り直す
func newTxRepos(db *gorm.DB) *txReposGorm {
	return &txReposGorm{
		users:        NewUserGormRepository(db),
		sponsors:     NewSponsorGormRepository(db),
		sponsorships: NewSponsorshipGormRepository(db),
		catalogs:     NewCatalogGormRepository(db),
		items:        NewItemGormRepository(db),
		carts:        NewCartGormRepository(db),
		orders:       NewOrderGormRepository(db),
		orderItems:   NewOrderItemGormRepository(db),
		addresses:    NewAddressGormRepository(db),
		ledger:       NewPointLedgerGormRepository(db),
		auditLogs:    NewAuditLogGormRepository(db),
		tickets:      NewSupportTicketGormRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxRepos(tx))
	})
}

// トランザクション外で使う（読み取り用）
func NewRepos(db *gorm.DB) repo.TxRepos {
	return newTxRepos(db)
}
