package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"rewards/internal/config"
	"rewards/internal/domain/model"
	"rewards/internal/infra/db"
	"rewards/internal/infra/oracle"
	infrarepo "rewards/internal/infra/repository"
	"rewards/internal/pricing"
	repo "rewards/internal/repository"
	"rewards/internal/usecase"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 値段表だけを持つoracle（無いIDはErrNoResult）
type priceOracle struct {
	mu     sync.Mutex
	prices map[string]int64
}

func (o *priceOracle) set(id string, cents int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[id] = cents
}

func (o *priceOracle) drop(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.prices, id)
}

func (o *priceOracle) Lookup(ctx context.Context, externalID string) (oracle.Listing, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cents, ok := o.prices[externalID]
	if !ok {
		return oracle.Listing{}, oracle.ErrNoResult
	}
	return oracle.Listing{ExternalID: externalID, Title: "item " + externalID, PriceCents: cents, Currency: "USD"}, nil
}

func (o *priceOracle) Search(ctx context.Context, q oracle.SearchQuery) ([]oracle.Listing, error) {
	return nil, oracle.ErrNoResult
}

// SQLiteで組み立てたusecase一式
type testEnv struct {
	t        *testing.T
	gdb      *gorm.DB
	repos    repo.TxRepos
	oracle   *priceOracle
	notifier *recordingNotifier

	orders   *usecase.OrderUsecase
	carts    *usecase.CartUsecase
	catalogs *usecase.CatalogUsecase
	admin    *usecase.AdminUsecase
	ledger   *usecase.LedgerUsecase
	sps      *usecase.SponsorshipUsecase
	sponsors *usecase.SponsorUsecase
	accounts *usecase.AccountUsecase
	tickets  *usecase.TicketUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	cfg := config.Config{}
	cfg.Oracle.MaxConcurrency = 4
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tx := infrarepo.NewTxManagerGorm(gdb)
	repos := infrarepo.NewRepos(gdb)
	o := &priceOracle{prices: map[string]int64{}}
	n := &recordingNotifier{}
	notes := usecase.NewNotifications(n, cfg)
	adapter := pricing.NewAdapter(o, cfg, log)

	return &testEnv{
		t:        t,
		gdb:      gdb,
		repos:    repos,
		oracle:   o,
		notifier: n,
		orders:   usecase.NewOrderUsecase(tx, repos, adapter, notes, log),
		carts:    usecase.NewCartUsecase(tx, repos, adapter, log),
		catalogs: usecase.NewCatalogUsecase(tx, repos, adapter, log),
		admin:    usecase.NewAdminUsecase(tx, repos, notes, log),
		ledger:   usecase.NewLedgerUsecase(tx, repos, notes, log),
		sps:      usecase.NewSponsorshipUsecase(tx, repos, notes, log),
		sponsors: usecase.NewSponsorUsecase(tx, repos, log),
		accounts: usecase.NewAccountUsecase(repos, log),
		tickets:  usecase.NewTicketUsecase(repos, log),
	}
}

func (e *testEnv) sponsor(name string, pointValue int64) model.Sponsor {
	e.t.Helper()
	s, err := e.sponsors.Create(context.Background(), name)
	require.NoError(e.t, err)
	if pointValue != model.DefaultPointValue {
		c, err := e.repos.Catalogs().FindBySponsorID(context.Background(), s.ID)
		require.NoError(e.t, err)
		require.NoError(e.t, e.repos.Catalogs().UpdateSettings(context.Background(), c.ID, c.CatalogType, pointValue))
	}
	return s
}

func (e *testEnv) user(role model.Role, email string, employerID *int64) model.User {
	e.t.Helper()
	u := model.User{
		Role:         role,
		FirstName:    "Test",
		LastName:     string(role),
		Email:        email,
		PasswordHash: "x",
		EmployerID:   employerID,
		IssueAlert:   true,
		OrderAlert:   true,
		PointsAlert:  true,
	}
	require.NoError(e.t, e.repos.Users().Create(context.Background(), &u))
	return u
}

func (e *testEnv) sponsorship(driverID, sponsorID, points int64) model.Sponsorship {
	e.t.Helper()
	ctx := context.Background()
	s := model.Sponsorship{UserID: driverID, SponsorID: sponsorID}
	require.NoError(e.t, e.repos.Sponsorships().Create(ctx, &s))
	require.NoError(e.t, e.repos.Sponsorships().Activate(ctx, s.ID))
	require.NoError(e.t, e.repos.Sponsorships().UpdatePoints(ctx, s.ID, points))
	s.Active = true
	s.Points = points
	return s
}

func (e *testEnv) points(sponsorshipID int64) int64 {
	e.t.Helper()
	s, err := e.repos.Sponsorships().FindByID(context.Background(), sponsorshipID)
	require.NoError(e.t, err)
	return s.Points
}

func (e *testEnv) itemExists(externalID string) bool {
	e.t.Helper()
	_, err := e.repos.Items().FindByExternalID(context.Background(), externalID)
	if err == nil {
		return true
	}
	require.ErrorIs(e.t, err, repo.ErrNotFound)
	return false
}

var testAddress = usecase.AddressInput{Street1: "1 Main St", City: "Springfield", State: "il", ZipCode: "62701"}
