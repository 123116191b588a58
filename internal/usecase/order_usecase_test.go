package usecase_test

import (
	"context"
	"testing"

	"rewards/internal/domain/model"
	"rewards/internal/infra/notify"
	"rewards/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	env     *testEnv
	sponsor model.Sponsor
	driver  model.User
	manager model.User
	s       model.Sponsorship
}

// point_value=1なのでポイント=セント
func newCheckoutFixture(t *testing.T, points int64, prices map[string]int64) *checkoutFixture {
	env := newTestEnv(t)
	sp := env.sponsor("Acme", 1)
	f := &checkoutFixture{
		env:     env,
		sponsor: sp,
		driver:  env.user(model.RoleDriver, "driver@example.com", nil),
		manager: env.user(model.RoleStoreManager, "manager@example.com", &sp.ID),
	}
	f.s = env.sponsorship(f.driver.ID, sp.ID, points)

	for id, cents := range prices {
		env.oracle.set(id, cents)
		require.NoError(t, env.carts.Add(context.Background(), f.driver.ID, f.s.ID, id))
	}
	return f
}

func (f *checkoutFixture) checkout(t *testing.T, key string) (usecase.OrderOutput, error) {
	t.Helper()
	return f.env.orders.Checkout(context.Background(), f.driver.ID, usecase.CheckoutInput{
		SponsorshipID:  f.s.ID,
		Address:        testAddress,
		IdempotencyKey: key,
	})
}

func TestCheckout_SubtotalExceedsPoints_DebitsRewardsOnly(t *testing.T) {
	f := newCheckoutFixture(t, 300, map[string]int64{"A": 200, "B": 300})
	ctx := context.Background()

	out, err := f.checkout(t, "")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusOrdered, out.Order.Status)
	assert.Equal(t, int64(500), out.Order.Subtotal)
	assert.Equal(t, int64(300), out.Order.Rewards)
	assert.Equal(t, int64(200), out.Order.AmountDue)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, int64(0), f.env.points(f.s.ID))

	cart, err := f.env.carts.Get(ctx, f.driver.ID, f.s.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	hist, err := f.env.ledger.History(ctx, f.driver.ID, f.s.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, hist.Entries, 1)
	assert.Equal(t, model.PointEventSpend, hist.Entries[0].EventType)
	assert.Equal(t, int64(-300), hist.Entries[0].Change)
	assert.Equal(t, int64(0), hist.Entries[0].BalanceAfter)
	require.NotNil(t, hist.Entries[0].OrderID)
	assert.Equal(t, out.Order.ID, *hist.Entries[0].OrderID)

	//次回のプリフィル
	d, err := f.env.repos.Users().FindByID(ctx, f.driver.ID)
	require.NoError(t, err)
	require.NotNil(t, d.AddressID)
	assert.Equal(t, out.Address.ID, *d.AddressID)
	assert.Equal(t, "IL", out.Address.State)

	assert.Equal(t, []notify.Event{notify.EventOrderSummary}, f.env.notifier.events())
}

func TestCheckout_PointsCoverSubtotal(t *testing.T) {
	f := newCheckoutFixture(t, 500, map[string]int64{"A": 200})

	out, err := f.checkout(t, "")
	require.NoError(t, err)
	assert.Equal(t, int64(200), out.Order.Rewards)
	assert.Equal(t, int64(0), out.Order.AmountDue)
	assert.Equal(t, int64(300), f.env.points(f.s.ID))
}

func TestCheckout_ZeroPoints_NoLedgerEntry(t *testing.T) {
	f := newCheckoutFixture(t, 0, map[string]int64{"A": 200})

	out, err := f.checkout(t, "")
	require.NoError(t, err)
	assert.Equal(t, int64(200), out.Order.AmountDue)

	hist, err := f.env.ledger.History(context.Background(), f.driver.ID, f.s.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, hist.Entries)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, 100, nil)

	_, err := f.checkout(t, "")
	assert.ErrorIs(t, err, usecase.ErrCartEmpty)
}

func TestCheckout_UnpricedItem_NoPartialOrder(t *testing.T) {
	f := newCheckoutFixture(t, 300, map[string]int64{"A": 200, "B": 300})
	f.env.oracle.drop("B")

	_, err := f.checkout(t, "")
	assert.ErrorIs(t, err, usecase.ErrOracleUnavailable)

	assert.Equal(t, int64(300), f.env.points(f.s.ID))
	items, err := f.env.repos.Carts().ListItems(context.Background(), f.s.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	//表示側は取れない商品を除くだけ
	cart, err := f.env.carts.Get(context.Background(), f.driver.ID, f.s.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Unavailable)
	assert.Equal(t, int64(200), cart.Subtotal)
}

func TestCheckout_SameIdempotencyKey_ReturnsSameOrder(t *testing.T) {
	f := newCheckoutFixture(t, 1000, map[string]int64{"A": 200})

	first, err := f.checkout(t, "key-1")
	require.NoError(t, err)
	second, err := f.checkout(t, "key-1")
	require.NoError(t, err)

	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, int64(800), f.env.points(f.s.ID))
}

func TestCheckout_ManagerAllowed_OtherDriverDenied(t *testing.T) {
	f := newCheckoutFixture(t, 0, map[string]int64{"A": 200})
	other := f.env.user(model.RoleDriver, "other@example.com", nil)
	ctx := context.Background()

	_, err := f.env.orders.Checkout(ctx, other.ID, usecase.CheckoutInput{SponsorshipID: f.s.ID, Address: testAddress})
	assert.ErrorIs(t, err, usecase.ErrAccessDenied)

	out, err := f.env.orders.Checkout(ctx, f.manager.ID, usecase.CheckoutInput{SponsorshipID: f.s.ID, Address: testAddress})
	require.NoError(t, err)
	//住所はドライバーのもの
	assert.Equal(t, f.driver.ID, out.Address.UserID)
}

func TestCheckout_InvalidAddress(t *testing.T) {
	f := newCheckoutFixture(t, 0, map[string]int64{"A": 200})

	_, err := f.env.orders.Checkout(context.Background(), f.driver.ID, usecase.CheckoutInput{
		SponsorshipID: f.s.ID,
		Address:       usecase.AddressInput{Street1: "1 Main St", City: "Springfield", State: "IL", ZipCode: "6270"},
	})
	assert.ErrorIs(t, err, usecase.ErrValidation)
	assertErrContains(t, err, "zip_code")
}

func TestPreviewCheckout_PrefillsLastAddress(t *testing.T) {
	f := newCheckoutFixture(t, 50, map[string]int64{"A": 200})
	ctx := context.Background()

	_, err := f.checkout(t, "")
	require.NoError(t, err)

	require.NoError(t, f.env.carts.Add(ctx, f.driver.ID, f.s.ID, "A"))
	prev, err := f.env.orders.PreviewCheckout(ctx, f.driver.ID, f.s.ID)
	require.NoError(t, err)
	require.NotNil(t, prev.Address)
	assert.Equal(t, "Springfield", prev.Address.City)
	assert.Equal(t, int64(200), prev.Cart.Subtotal)
	assert.Equal(t, int64(0), prev.Cart.Rewards)
}

func TestOrder_Cancel_RepeatedIsNoop_NoRefund(t *testing.T) {
	f := newCheckoutFixture(t, 100, map[string]int64{"A": 200})
	ctx := context.Background()

	out, err := f.checkout(t, "")
	require.NoError(t, err)

	o, err := f.env.orders.Cancel(ctx, f.driver.ID, out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCanceled, o.Status)

	o, err = f.env.orders.Cancel(ctx, f.driver.ID, out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCanceled, o.Status)

	assert.Equal(t, int64(0), f.env.points(f.s.ID))
	assert.Equal(t, []notify.Event{notify.EventOrderSummary, notify.EventOrderCanceled}, f.env.notifier.events())
}

func TestOrder_Cancel_OtherDriverDenied(t *testing.T) {
	f := newCheckoutFixture(t, 0, map[string]int64{"A": 200})
	other := f.env.user(model.RoleDriver, "other@example.com", nil)

	out, err := f.checkout(t, "")
	require.NoError(t, err)

	_, err = f.env.orders.Cancel(context.Background(), other.ID, out.Order.ID)
	assert.ErrorIs(t, err, usecase.ErrAccessDenied)
}

func TestOrder_StatusTransitions(t *testing.T) {
	f := newCheckoutFixture(t, 0, map[string]int64{"A": 200})
	ctx := context.Background()

	out, err := f.checkout(t, "")
	require.NoError(t, err)
	id := out.Order.ID

	//ORDERED -> DELIVERED は不可
	_, err = f.env.orders.UpdateStatus(ctx, f.manager.ID, id, model.OrderStatusDelivered)
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)

	//ドライバーは更新できない
	_, err = f.env.orders.UpdateStatus(ctx, f.driver.ID, id, model.OrderStatusShipped)
	assert.ErrorIs(t, err, usecase.ErrAccessDenied)

	o, err := f.env.orders.UpdateStatus(ctx, f.manager.ID, id, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, o.Status)

	o, err = f.env.orders.UpdateStatus(ctx, f.manager.ID, id, model.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, o.Status)

	//DELIVEREDからのキャンセルは不可
	_, err = f.env.orders.Cancel(ctx, f.driver.ID, id)
	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
}

func TestOrder_ListScopedByRole_AndDetail(t *testing.T) {
	f := newCheckoutFixture(t, 0, map[string]int64{"A": 200})
	ctx := context.Background()

	out, err := f.checkout(t, "")
	require.NoError(t, err)

	other := f.env.sponsor("Other", 1)
	otherManager := f.env.user(model.RoleStoreManager, "om@example.com", &other.ID)

	list, err := f.env.orders.List(ctx, f.driver.ID, usecase.OrderListInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	list, err = f.env.orders.List(ctx, otherManager.ID, usecase.OrderListInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, list.Total)

	_, err = f.env.orders.List(ctx, f.driver.ID, usecase.OrderListInput{Status: "lost"})
	assert.ErrorIs(t, err, usecase.ErrValidation)

	//明細は今の値段（注文時のpoint_value）で出す
	f.env.oracle.set("A", 250)
	d, err := f.env.orders.Detail(ctx, f.manager.ID, out.Order.ID)
	require.NoError(t, err)
	require.Len(t, d.Items, 1)
	assert.Equal(t, int64(250), d.Items[0].Points)
	assert.Equal(t, int64(200), d.Order.Subtotal)

	_, err = f.env.orders.Detail(ctx, otherManager.ID, out.Order.ID)
	assert.ErrorIs(t, err, usecase.ErrAccessDenied)
}

// キーはsponsorshipごと
func TestCheckout_SameKeyOtherDriver_NewOrder(t *testing.T) {
	f := newCheckoutFixture(t, 1000, map[string]int64{"A": 200})
	ctx := context.Background()

	other := f.env.user(model.RoleDriver, "other@example.com", nil)
	otherS := f.env.sponsorship(other.ID, f.sponsor.ID, 1000)
	require.NoError(t, f.env.carts.Add(ctx, other.ID, otherS.ID, "A"))

	first, err := f.checkout(t, "shared-key")
	require.NoError(t, err)
	second, err := f.env.orders.Checkout(ctx, other.ID, usecase.CheckoutInput{
		SponsorshipID:  otherS.ID,
		Address:        testAddress,
		IdempotencyKey: "shared-key",
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, otherS.ID, second.Order.SponsorshipID)
	assert.Equal(t, int64(800), f.env.points(otherS.ID))
}

// 注文の配送先も消える（最後に使った住所は残す）
func TestRemoveSponsorship_DeletesOrderAddresses(t *testing.T) {
	f := newCheckoutFixture(t, 1000, map[string]int64{"A": 200})
	ctx := context.Background()

	_, err := f.checkout(t, "k1")
	require.NoError(t, err)
	require.NoError(t, f.env.carts.Add(ctx, f.driver.ID, f.s.ID, "A"))
	last, err := f.checkout(t, "k2")
	require.NoError(t, err)

	require.NoError(t, f.env.sps.Remove(ctx, f.manager.ID, f.s.ID))

	var addresses []model.Address
	require.NoError(t, f.env.gdb.Find(&addresses).Error)
	require.Len(t, addresses, 1)
	assert.Equal(t, last.Order.AddressID, addresses[0].ID)

	driver, err := f.env.repos.Users().FindByID(ctx, f.driver.ID)
	require.NoError(t, err)
	require.NotNil(t, driver.AddressID)
	assert.Equal(t, addresses[0].ID, *driver.AddressID)
}
