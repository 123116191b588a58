package repository

import (
	"context"
	"testing"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, r *OrderGormRepository, sponsorshipID int64, key string, status model.OrderStatus, subtotal, pointValue int64) model.Order {
	t.Helper()
	o := model.Order{
		SponsorshipID:  sponsorshipID,
		AddressID:      1,
		Status:         status,
		Subtotal:       subtotal,
		PointValue:     pointValue,
		IdempotencyKey: key,
	}
	require.NoError(t, r.Create(context.Background(), &o))
	return o
}

func TestOrderGorm_ListFilters(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	s1 := seedSponsorship(t, gdb, 1, 10, true, 0)
	s2 := seedSponsorship(t, gdb, 2, 20, true, 0)
	o1 := createOrder(t, r, s1.ID, "k1", model.OrderStatusOrdered, 100, 1)
	o2 := createOrder(t, r, s1.ID, "k2", model.OrderStatusShipped, 100, 1)
	createOrder(t, r, s2.ID, "k3", model.OrderStatusOrdered, 100, 1)

	uid := int64(1)
	list, total, err := r.List(ctx, repo.OrderListFilter{UserID: &uid})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	//新しい順
	assert.Equal(t, []int64{o2.ID, o1.ID}, []int64{list[0].ID, list[1].ID})

	sid := int64(20)
	_, total, err = r.List(ctx, repo.OrderListFilter{SponsorID: &sid})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = r.List(ctx, repo.OrderListFilter{Status: string(model.OrderStatusOrdered)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestOrderGorm_IdempotencyAndStatus(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	o := createOrder(t, r, 1, "key", model.OrderStatusOrdered, 100, 1)

	got, found, err := r.FindByIdempotencyKey(ctx, 1, "key")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, o.ID, got.ID)

	_, found, err = r.FindByIdempotencyKey(ctx, 2, "key")
	require.NoError(t, err)
	assert.False(t, found)

	dup := model.Order{SponsorshipID: 1, AddressID: 1, Status: model.OrderStatusOrdered, IdempotencyKey: "key"}
	assert.ErrorIs(t, r.Create(ctx, &dup), repo.ErrDuplicate)

	require.NoError(t, r.UpdateStatus(ctx, o.ID, model.OrderStatusShipped))
	got, err = r.FindByIDForUpdate(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, got.Status)

	assert.ErrorIs(t, r.UpdateStatus(ctx, 999, model.OrderStatusShipped), repo.ErrNotFound)
}

func TestOrderGorm_SumSalesAndDelete(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	items := NewItemGormRepository(gdb)
	ctx := context.Background()

	createOrder(t, r, 1, "a", model.OrderStatusOrdered, 100, 2)
	createOrder(t, r, 1, "b", model.OrderStatusDelivered, 50, 10)
	createOrder(t, r, 2, "c", model.OrderStatusCanceled, 999, 1)

	total, err := r.SumSalesCents(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 700, total)

	o := createOrder(t, r, 3, "d", model.OrderStatusOrdered, 1, 1)
	it, _ := items.GetOrCreate(ctx, "x")
	require.NoError(t, NewOrderItemGormRepository(gdb).CreateBulk(ctx, o.ID, []int64{it.ID}))

	itemIDs, err := r.DeleteBySponsorshipID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{it.ID}, itemIDs)
	_, err = r.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOrderGorm_IdempotencyKeyPerSponsorship(t *testing.T) {
	gdb := newTestDB(t)
	r := NewOrderGormRepository(gdb)
	ctx := context.Background()

	createOrder(t, r, 1, "same", model.OrderStatusOrdered, 100, 1)
	createOrder(t, r, 2, "same", model.OrderStatusOrdered, 100, 1)

	err := r.Create(ctx, &model.Order{SponsorshipID: 1, AddressID: 1, Status: model.OrderStatusOrdered, PointValue: 1, IdempotencyKey: "same"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	o, found, err := r.FindByIdempotencyKey(ctx, 2, "same")
	require.NoError(t, err)
	require.True(t, found)
	assert.EqualValues(t, 2, o.SponsorshipID)
}
