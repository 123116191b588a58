package repository

import (
	"context"
	"testing"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogGorm_DefaultsAndTags(t *testing.T) {
	gdb := newTestDB(t)
	r := NewCatalogGormRepository(gdb)
	items := NewItemGormRepository(gdb)
	ctx := context.Background()

	c := model.Catalog{SponsorID: 5}
	require.NoError(t, r.Create(ctx, &c))

	got, err := r.FindBySponsorID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, model.CatalogTypeRules, got.CatalogType)
	assert.EqualValues(t, 1, got.PointValue)
	assert.Empty(t, got.Categories)

	require.NoError(t, r.UpdateSettings(ctx, c.ID, model.CatalogTypeCategories, 4))
	require.NoError(t, r.SetCategories(ctx, c.ID, []model.Category{model.CategoryClothing, model.CategoryAutomotive}))
	require.NoError(t, r.SetCategories(ctx, c.ID, []model.Category{model.CategoryElectronics}))

	rule, err := r.AddRule(ctx, c.ID, "Brand:Acme")
	require.NoError(t, err)
	again, err := r.AddRule(ctx, c.ID, "Brand:Acme")
	require.NoError(t, err)
	assert.Equal(t, rule.ID, again.ID)

	it, _ := items.GetOrCreate(ctx, "x")
	require.NoError(t, r.AddItem(ctx, c.ID, it.ID))
	require.NoError(t, r.AddItem(ctx, c.ID, it.ID))

	got, err = r.FindBySponsorID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, model.CatalogTypeCategories, got.CatalogType)
	assert.EqualValues(t, 4, got.PointValue)
	assert.Equal(t, []model.Category{model.CategoryElectronics}, got.Categories)
	require.Len(t, got.Rules, 1)
	assert.Equal(t, "Brand:Acme", got.Rules[0].Rule)
	require.Len(t, got.Items, 1)

	require.NoError(t, r.RemoveRule(ctx, c.ID, rule.ID))
	assert.ErrorIs(t, r.RemoveRule(ctx, c.ID, rule.ID), repo.ErrNotFound)

	itemIDs, err := r.DeleteBySponsorID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{it.ID}, itemIDs)

	_, err = r.FindBySponsorID(ctx, 5)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
