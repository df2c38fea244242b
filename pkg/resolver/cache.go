package resolver

import (
	"context"

	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/normalizers"
)

// BatchCache memoizes resolutions within a single import job, keyed by
// (level, parent scope id, case-folded name). It makes bulk import
// idempotent and cheap: the second row naming the same entity reuses the
// first row's outcome instead of re-querying or re-creating.
//
// The cache is local to one job and is not safe to share across concurrently
// running jobs.
type BatchCache struct {
	entries map[cacheKey]any
}

type cacheKey struct {
	level    Level
	parentID string
	name     string
}

// NewBatchCache creates an empty job cache.
func NewBatchCache() *BatchCache {
	return &BatchCache{entries: make(map[cacheKey]any)}
}

// Len returns the number of memoized resolutions.
func (c *BatchCache) Len() int {
	return len(c.entries)
}

func (c *BatchCache) key(level Level, parentID *string, name string) cacheKey {
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return cacheKey{level: level, parentID: parent, name: normalizers.Fold(name)}
}

func (c *BatchCache) get(k cacheKey) (any, bool) {
	v, ok := c.entries[k]
	return v, ok
}

func (c *BatchCache) put(k cacheKey, v any) {
	c.entries[k] = v
}

// CachedResolver decorates a place-level resolver with the job cache. Every
// call checks the cache before the lookup/create path and populates it on
// first resolution.
type CachedResolver[T Named] struct {
	inner API[T]
	cache *BatchCache
}

// WithCache wraps a resolver in the job cache.
func WithCache[T Named](inner API[T], cache *BatchCache) *CachedResolver[T] {
	return &CachedResolver[T]{inner: inner, cache: cache}
}

// Level returns the taxonomy level of the wrapped resolver.
func (c *CachedResolver[T]) Level() Level {
	return c.inner.Level()
}

// Resolve returns the memoized resolution when one exists, re-resolving
// otherwise. Only settled outcomes (found or created) are memoized; NotFound
// is not, so a row that creates the entity updates the cache through
// GetOrCreate.
func (c *CachedResolver[T]) Resolve(ctx context.Context, name string, parentID *string) (Resolution[T], error) {
	k := c.cache.key(c.inner.Level(), parentID, name)
	if v, ok := c.cache.get(k); ok {
		return v.(Resolution[T]), nil
	}

	res, err := c.inner.Resolve(ctx, name, parentID)
	if err != nil {
		return res, err
	}
	if res.State.Found() {
		c.cache.put(k, res)
	}
	return res, nil
}

// GetOrCreate creates the entity and memoizes it as Created so later rows in
// the job resolve it without further store calls.
func (c *CachedResolver[T]) GetOrCreate(ctx context.Context, name string, parentID *string) (*T, error) {
	k := c.cache.key(c.inner.Level(), parentID, name)
	if v, ok := c.cache.get(k); ok {
		if res, isRes := v.(Resolution[T]); isRes && res.Entity != nil {
			return res.Entity, nil
		}
	}

	entity, err := c.inner.GetOrCreate(ctx, name, parentID)
	if err != nil {
		return nil, err
	}
	c.cache.put(k, Resolution[T]{State: StateCreated, Entity: entity})
	return entity, nil
}

// CachedWineResolver decorates the wine resolver with the job cache, keyed
// by the target sub-appellation scope.
type CachedWineResolver struct {
	inner WineAPI
	cache *BatchCache
}

// WithWineCache wraps the wine resolver in the job cache.
func WithWineCache(inner WineAPI, cache *BatchCache) *CachedWineResolver {
	return &CachedWineResolver{inner: inner, cache: cache}
}

// wineKey scopes a memoized wine by its target sub-appellation. A target
// without a sub-appellation id is a sentinel-scope lookup carrying only the
// appellation name; keying it under the folded appellation keeps the same
// wine name under two different appellations apart.
func (c *CachedWineResolver) wineKey(name, subAppellationID, appellationName string) cacheKey {
	scope := subAppellationID
	if scope == "" {
		scope = "appellation/" + normalizers.Fold(appellationName)
	}
	return c.cache.key(LevelWine, &scope, name)
}

// Resolve returns the memoized wine resolution when one exists.
func (c *CachedWineResolver) Resolve(ctx context.Context, name string, target WineTarget) (WineResolution, error) {
	k := c.wineKey(name, target.SubAppellationID, target.AppellationName)
	if v, ok := c.cache.get(k); ok {
		return v.(WineResolution), nil
	}

	res, err := c.inner.Resolve(ctx, name, target)
	if err != nil {
		return res, err
	}
	if res.State.Found() {
		c.cache.put(k, res)
	}
	return res, nil
}

// GetOrCreate creates the wine and memoizes it as Created.
func (c *CachedWineResolver) GetOrCreate(ctx context.Context, req models.CreateWineRequest) (*models.WineDetail, error) {
	k := c.wineKey(req.Name, req.SubAppellationID, "")
	if v, ok := c.cache.get(k); ok {
		if res, isRes := v.(WineResolution); isRes && res.Wine != nil {
			return res.Wine, nil
		}
	}

	wine, err := c.inner.GetOrCreate(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.put(k, WineResolution{State: StateCreated, Wine: wine})
	return wine, nil
}

// Update delegates to the wrapped resolver. Callers mutate the cached
// WineDetail in place, so the memoized copy stays current.
func (c *CachedWineResolver) Update(ctx context.Context, wine *models.Wine) error {
	return c.inner.Update(ctx, wine)
}
