package repository

import (
	"context"
	"testing"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSponsorshipGorm_CreateDuplicatePair(t *testing.T) {
	gdb := newTestDB(t)
	r := NewSponsorshipGormRepository(gdb)
	ctx := context.Background()

	seedSponsorship(t, gdb, 1, 10, false, 0)

	err := r.Create(ctx, &model.Sponsorship{UserID: 1, SponsorID: 10})
	assert.ErrorIs(t, err, repo.ErrDuplicate)
}

func TestSponsorshipGorm_FindAndUpdate(t *testing.T) {
	gdb := newTestDB(t)
	r := NewSponsorshipGormRepository(gdb)
	ctx := context.Background()

	s := seedSponsorship(t, gdb, 1, 10, false, 0)
	seedSponsorship(t, gdb, 2, 10, true, 50)

	_, found, err := r.FindByPair(ctx, 1, 99)
	require.NoError(t, err)
	assert.False(t, found)

	got, found, err := r.FindByPair(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, s.ID, got.ID)

	require.NoError(t, r.Activate(ctx, s.ID))
	require.NoError(t, r.UpdatePoints(ctx, s.ID, 120))

	locked, err := r.FindByIDForUpdate(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, locked.Active)
	assert.EqualValues(t, 120, locked.Points)

	active := true
	list, err := r.ListBySponsorID(ctx, 10, &active)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, r.Delete(ctx, s.ID))
	_, err = r.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, s.ID), repo.ErrNotFound)
}
