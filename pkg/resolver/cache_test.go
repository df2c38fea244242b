package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/pkg/models"
)

func TestCachedResolverMemoizesCreates(t *testing.T) {
	france := "country-fr"
	store := &memStore{}
	cache := NewBatchCache()
	cached := WithCache[models.Region](newTestResolver(store), cache)

	first, err := cached.GetOrCreate(context.Background(), "Jura", &france)
	require.NoError(t, err)

	// Same name under varied casing and spacing hits the memo.
	second, err := cached.GetOrCreate(context.Background(), "  jura ", &france)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, cache.Len())
}

func TestCachedResolverResolveAfterCreateHitsMemo(t *testing.T) {
	france := "country-fr"
	store := &memStore{}
	cache := NewBatchCache()
	cached := WithCache[models.Region](newTestResolver(store), cache)

	created, err := cached.GetOrCreate(context.Background(), "Savoie", &france)
	require.NoError(t, err)

	res, err := cached.Resolve(context.Background(), "savoie", &france)
	require.NoError(t, err)
	assert.Equal(t, StateCreated, res.State)
	assert.Equal(t, created.ID, res.Entity.ID)
}

func TestCachedResolverDoesNotMemoizeNotFound(t *testing.T) {
	france := "country-fr"
	store := &memStore{}
	cache := NewBatchCache()
	cached := WithCache[models.Region](newTestResolver(store), cache)

	res, err := cached.Resolve(context.Background(), "Alsace", &france)
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, res.State)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheKeysSeparateParentScopes(t *testing.T) {
	france, spain := "country-fr", "country-es"
	store := &memStore{}
	cache := NewBatchCache()
	cached := WithCache[models.Region](newTestResolver(store), cache)

	_, err := cached.GetOrCreate(context.Background(), "Castilla", &france)
	require.NoError(t, err)
	_, err = cached.GetOrCreate(context.Background(), "Castilla", &spain)
	require.NoError(t, err)

	assert.Equal(t, 2, store.creates)
	assert.Equal(t, 2, cache.Len())
}

func TestCachedWineResolverMemoizesCreates(t *testing.T) {
	store := &memWineStore{}
	cache := NewBatchCache()
	cached := WithWineCache(newTestWineResolver(store), cache)

	req := models.CreateWineRequest{Name: "Clos des Fous", Color: models.ColorRed, SubAppellationID: "sa1"}

	first, err := cached.GetOrCreate(context.Background(), req)
	require.NoError(t, err)
	second, err := cached.GetOrCreate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.creates)
}

func TestCachedWineResolverKeysBySubAppellation(t *testing.T) {
	store := &memWineStore{}
	cache := NewBatchCache()
	cached := WithWineCache(newTestWineResolver(store), cache)

	_, err := cached.GetOrCreate(context.Background(), models.CreateWineRequest{Name: "Clos des Fous", Color: models.ColorRed, SubAppellationID: "sa1"})
	require.NoError(t, err)
	_, err = cached.GetOrCreate(context.Background(), models.CreateWineRequest{Name: "Clos des Fous", Color: models.ColorRed, SubAppellationID: "sa2"})
	require.NoError(t, err)

	assert.Equal(t, 2, store.creates)
}

func TestCachedWineResolverKeysSentinelLookupsByAppellation(t *testing.T) {
	store := &memWineStore{wines: []models.WineDetail{
		{
			Wine:            models.Wine{ID: "w-chablis", Name: "Cuvee des Pins", Color: models.ColorWhite, SubAppellationID: "sa-chablis"},
			AppellationName: "Chablis",
		},
		{
			Wine:            models.Wine{ID: "w-barolo", Name: "Cuvee des Pins", Color: models.ColorRed, SubAppellationID: "sa-barolo"},
			AppellationName: "Barolo",
		},
	}}
	cache := NewBatchCache()
	cached := WithWineCache(newTestWineResolver(store), cache)

	first, err := cached.Resolve(context.Background(), "Cuvee des Pins", WineTarget{AppellationName: "Chablis"})
	require.NoError(t, err)
	require.True(t, first.State.Found())
	assert.Equal(t, "w-chablis", first.Wine.ID)

	// The same name looked up under another appellation must not reuse the
	// first appellation's memo.
	second, err := cached.Resolve(context.Background(), "Cuvee des Pins", WineTarget{AppellationName: "Barolo"})
	require.NoError(t, err)
	require.True(t, second.State.Found())
	assert.Equal(t, "w-barolo", second.Wine.ID)
}
