package repository

import "context"

// 同じトランザクションを共有するリポジトリ群
type TxRepos interface {
	Users() UserRepository
	Sponsors() SponsorRepository
	Sponsorships() SponsorshipRepository
	Catalogs() CatalogRepository
	Items() ItemRepository
	Carts() CartRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Addresses() AddressRepository
	Ledger() PointLedgerRepository
	AuditLogs() AuditLogRepository
	Tickets() SupportTicketRepository
}

// fnがerrorを返せばrollback
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
