package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"rewards/internal/domain/model"
	"rewards/internal/infra/notify"
	repo "rewards/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録
	m.Called(ctx)
	return fn(m.Repos)
}

// 使わないrepoはnilのまま
type TxReposMock struct {
	users        repo.UserRepository
	sponsors     repo.SponsorRepository
	sponsorships repo.SponsorshipRepository
	ledger       repo.PointLedgerRepository
	auditLogs    repo.AuditLogRepository
}

func (r *TxReposMock) Users() repo.UserRepository               { return r.users }
func (r *TxReposMock) Sponsors() repo.SponsorRepository         { return r.sponsors }
func (r *TxReposMock) Sponsorships() repo.SponsorshipRepository { return r.sponsorships }
func (r *TxReposMock) Catalogs() repo.CatalogRepository         { return nil }
func (r *TxReposMock) Items() repo.ItemRepository               { return nil }
func (r *TxReposMock) Carts() repo.CartRepository               { return nil }
func (r *TxReposMock) Orders() repo.OrderRepository             { return nil }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository     { return nil }
func (r *TxReposMock) Addresses() repo.AddressRepository        { return nil }
func (r *TxReposMock) Ledger() repo.PointLedgerRepository       { return r.ledger }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }
func (r *TxReposMock) Tickets() repo.SupportTicketRepository    { return nil }

// =====================
// Repository mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in usecase unit tests")
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	panic("not used in usecase unit tests")
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) ListByEmployer(ctx context.Context, sponsorID int64) ([]model.User, error) {
	panic("not used in usecase unit tests")
}

func (m *UserRepoMock) Delete(ctx context.Context, userID int64) error {
	panic("not used in usecase unit tests")
}

type SponsorRepoMock struct{ mock.Mock }

func (m *SponsorRepoMock) Create(ctx context.Context, sponsor *model.Sponsor) error {
	panic("not used in usecase unit tests")
}

func (m *SponsorRepoMock) FindByID(ctx context.Context, sponsorID int64) (*model.Sponsor, error) {
	args := m.Called(ctx, sponsorID)
	s, _ := args.Get(0).(*model.Sponsor)
	return s, args.Error(1)
}

func (m *SponsorRepoMock) List(ctx context.Context) ([]model.Sponsor, error) {
	panic("not used in usecase unit tests")
}

func (m *SponsorRepoMock) Rename(ctx context.Context, sponsorID int64, name string) error {
	return m.Called(ctx, sponsorID, name).Error(0)
}

func (m *SponsorRepoMock) Delete(ctx context.Context, sponsorID int64) error {
	panic("not used in usecase unit tests")
}

type SponsorshipRepoMock struct{ mock.Mock }

func (m *SponsorshipRepoMock) Create(ctx context.Context, s *model.Sponsorship) error {
	args := m.Called(ctx, s)
	if args.Error(0) == nil {
		s.ID = 100
	}
	return args.Error(0)
}

func (m *SponsorshipRepoMock) FindByID(ctx context.Context, sponsorshipID int64) (model.Sponsorship, error) {
	args := m.Called(ctx, sponsorshipID)
	s, _ := args.Get(0).(model.Sponsorship)
	return s, args.Error(1)
}

func (m *SponsorshipRepoMock) FindByIDForUpdate(ctx context.Context, sponsorshipID int64) (model.Sponsorship, error) {
	args := m.Called(ctx, sponsorshipID)
	s, _ := args.Get(0).(model.Sponsorship)
	return s, args.Error(1)
}

func (m *SponsorshipRepoMock) FindByPairForUpdate(ctx context.Context, userID, sponsorID int64) (model.Sponsorship, error) {
	args := m.Called(ctx, userID, sponsorID)
	s, _ := args.Get(0).(model.Sponsorship)
	return s, args.Error(1)
}

func (m *SponsorshipRepoMock) FindByPair(ctx context.Context, userID, sponsorID int64) (model.Sponsorship, bool, error) {
	args := m.Called(ctx, userID, sponsorID)
	s, _ := args.Get(0).(model.Sponsorship)
	return s, args.Bool(1), args.Error(2)
}

func (m *SponsorshipRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Sponsorship, error) {
	panic("not used in usecase unit tests")
}

func (m *SponsorshipRepoMock) ListBySponsorID(ctx context.Context, sponsorID int64, active *bool) ([]model.Sponsorship, error) {
	panic("not used in usecase unit tests")
}

func (m *SponsorshipRepoMock) Activate(ctx context.Context, sponsorshipID int64) error {
	args := m.Called(ctx, sponsorshipID)
	return args.Error(0)
}

func (m *SponsorshipRepoMock) UpdatePoints(ctx context.Context, sponsorshipID int64, points int64) error {
	args := m.Called(ctx, sponsorshipID, points)
	return args.Error(0)
}

func (m *SponsorshipRepoMock) Delete(ctx context.Context, sponsorshipID int64) error {
	args := m.Called(ctx, sponsorshipID)
	return args.Error(0)
}

type LedgerRepoMock struct{ mock.Mock }

func (m *LedgerRepoMock) Append(ctx context.Context, entry *model.PointLedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *LedgerRepoMock) ListBySponsorshipID(ctx context.Context, sponsorshipID int64, limit, offset int) ([]model.PointLedgerEntry, error) {
	args := m.Called(ctx, sponsorshipID, limit, offset)
	entries, _ := args.Get(0).([]model.PointLedgerEntry)
	return entries, args.Error(1)
}

func (m *LedgerRepoMock) DeleteBySponsorshipID(ctx context.Context, sponsorshipID int64) error {
	panic("not used in usecase unit tests")
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in usecase unit tests")
}

// =====================
// Notifier（送った内容を記録するだけ）
// =====================

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Notify(ctx context.Context, m notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, m)
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) events() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Event, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Event)
	}
	return out
}

// =====================
// Helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func int64Ptr(v int64) *int64 { return &v }

func driverUser(id int64) *model.User {
	return &model.User{ID: id, Role: model.RoleDriver, FirstName: "Dana", LastName: "Driver", Email: "dana@example.com", PointsAlert: true, OrderAlert: true, IssueAlert: true}
}

func managerUser(id, sponsorID int64) *model.User {
	return &model.User{ID: id, Role: model.RoleStoreManager, FirstName: "Max", LastName: "Manager", Email: "max@example.com", EmployerID: int64Ptr(sponsorID)}
}
