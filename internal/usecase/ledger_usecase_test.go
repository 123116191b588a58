package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"rewards/internal/config"
	"rewards/internal/domain/model"
	"rewards/internal/infra/notify"
	"rewards/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	tx       *TxManagerMock
	users    *UserRepoMock
	sponsors *SponsorRepoMock
	sps      *SponsorshipRepoMock
	ledger   *LedgerRepoMock
	audit    *AuditRepoMock
	notifier *recordingNotifier
	uc       *usecase.LedgerUsecase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		tx:       new(TxManagerMock),
		users:    new(UserRepoMock),
		sponsors: new(SponsorRepoMock),
		sps:      new(SponsorshipRepoMock),
		ledger:   new(LedgerRepoMock),
		audit:    new(AuditRepoMock),
		notifier: &recordingNotifier{},
	}
	repos := &TxReposMock{users: f.users, sponsors: f.sponsors, sponsorships: f.sps, ledger: f.ledger, auditLogs: f.audit}
	f.tx.Repos = repos

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.uc = usecase.NewLedgerUsecase(f.tx, repos, usecase.NewNotifications(f.notifier, config.Config{}), logger)
	return f
}

// 付与後の読み込み（通知用）
func (f *ledgerFixture) expectAwardSuccess(driver *model.User) {
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByID", mock.Anything, driver.ID).Return(driver, nil)
	f.sponsors.On("FindByID", mock.Anything, int64(10)).Return(&model.Sponsor{ID: 10, Name: "Acme"}, nil)
}

func TestLedgerUsecase_Award_Success(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.users.On("FindByID", mock.Anything, int64(2)).Return(managerUser(2, 10), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.sps.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Sponsorship{ID: 7, UserID: 1, SponsorID: 10, Active: true, Points: 100}, nil)
	f.sps.On("UpdatePoints", mock.Anything, int64(7), int64(150)).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.MatchedBy(func(e *model.PointLedgerEntry) bool {
		return e.EventType == model.PointEventAward && e.Change == 50 && e.BalanceAfter == 150 && e.Reason == "safe driving"
	})).Return(nil)
	f.expectAwardSuccess(driverUser(1))

	out, err := f.uc.Award(ctx, 2, usecase.AwardInput{SponsorshipID: 7, Delta: 50, Reason: " safe driving "})
	require.NoError(t, err)
	assert.Equal(t, int64(150), out.Points)
	assert.Equal(t, []notify.Event{notify.EventNewPointsBalance}, f.notifier.events())

	f.sps.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestLedgerUsecase_Award_Negative_Adjust(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.users.On("FindByID", mock.Anything, int64(2)).Return(managerUser(2, 10), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.sps.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Sponsorship{ID: 7, UserID: 1, SponsorID: 10, Active: true, Points: 100}, nil)
	f.sps.On("UpdatePoints", mock.Anything, int64(7), int64(30)).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.MatchedBy(func(e *model.PointLedgerEntry) bool {
		return e.EventType == model.PointEventAdjust && e.Change == -70 && e.BalanceAfter == 30
	})).Return(nil)
	f.expectAwardSuccess(driverUser(1))

	out, err := f.uc.Award(ctx, 2, usecase.AwardInput{SponsorshipID: 7, Delta: -70})
	require.NoError(t, err)
	assert.Equal(t, int64(30), out.Points)
}

func TestLedgerUsecase_Award_BelowZero_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.users.On("FindByID", mock.Anything, int64(2)).Return(managerUser(2, 10), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.sps.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Sponsorship{ID: 7, UserID: 1, SponsorID: 10, Active: true, Points: 20}, nil)

	_, err := f.uc.Award(ctx, 2, usecase.AwardInput{SponsorshipID: 7, Delta: -21})
	assert.ErrorIs(t, err, usecase.ErrValidation)
	assertErrContains(t, err, "points")
	f.sps.AssertNotCalled(t, "UpdatePoints", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.events())
}

// スポンサーAのマネージャーは、スポンサーBとだけ関係のあるドライバーに付与できない
func TestLedgerUsecase_Award_OtherSponsorManager_Denied(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.users.On("FindByID", mock.Anything, int64(2)).Return(managerUser(2, 10), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.sps.On("FindByIDForUpdate", mock.Anything, int64(8)).
		Return(model.Sponsorship{ID: 8, UserID: 1, SponsorID: 20, Active: true, Points: 100}, nil)

	_, err := f.uc.Award(ctx, 2, usecase.AwardInput{SponsorshipID: 8, Delta: 10})
	assert.ErrorIs(t, err, usecase.ErrAccessDenied)
	f.sps.AssertNotCalled(t, "UpdatePoints", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerUsecase_Award_Applied_Denied(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.users.On("FindByID", mock.Anything, int64(2)).Return(managerUser(2, 10), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.sps.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Sponsorship{ID: 7, UserID: 1, SponsorID: 10, Active: false}, nil)

	_, err := f.uc.Award(ctx, 2, usecase.AwardInput{SponsorshipID: 7, Delta: 10})
	assert.ErrorIs(t, err, usecase.ErrAccessDenied)
}

func TestLedgerUsecase_Award_ZeroDelta(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	f.users.On("FindByID", mock.Anything, int64(2)).Return(managerUser(2, 10), nil)

	_, err := f.uc.Award(ctx, 2, usecase.AwardInput{SponsorshipID: 7, Delta: 0})
	assert.ErrorIs(t, err, usecase.ErrValidation)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestLedgerUsecase_Award_PointsAlertOff_NoNotification(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	driver := driverUser(1)
	driver.PointsAlert = false

	f.users.On("FindByID", mock.Anything, int64(2)).Return(managerUser(2, 10), nil)
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.sps.On("FindByIDForUpdate", mock.Anything, int64(7)).
		Return(model.Sponsorship{ID: 7, UserID: 1, SponsorID: 10, Active: true, Points: 0}, nil)
	f.sps.On("UpdatePoints", mock.Anything, int64(7), int64(5)).Return(nil)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.expectAwardSuccess(driver)

	_, err := f.uc.Award(ctx, 2, usecase.AwardInput{SponsorshipID: 7, Delta: 5})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.events())
}

func TestLedgerUsecase_History_OwnerAllowed_OtherDriverDenied(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	s := model.Sponsorship{ID: 7, UserID: 1, SponsorID: 10, Active: true, Points: 40}
	f.users.On("FindByID", mock.Anything, int64(1)).Return(driverUser(1), nil)
	f.users.On("FindByID", mock.Anything, int64(3)).Return(driverUser(3), nil)
	f.sps.On("FindByID", mock.Anything, int64(7)).Return(s, nil)
	f.ledger.On("ListBySponsorshipID", mock.Anything, int64(7), 50, 0).
		Return([]model.PointLedgerEntry{{ID: 1, SponsorshipID: 7, Change: 40, BalanceAfter: 40}}, nil)

	out, err := f.uc.History(ctx, 1, 7, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(40), out.Points)
	assert.Len(t, out.Entries, 1)

	_, err = f.uc.History(ctx, 3, 7, 0, 0)
	assert.ErrorIs(t, err, usecase.ErrAccessDenied)
}
