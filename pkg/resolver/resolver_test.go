package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// memStore is an in-memory Store over regions, scoped by country id.
type memStore struct {
	regions []models.Region
	creates int
}

func (m *memStore) FindExact(_ context.Context, name string, parentID *string) (*models.Region, error) {
	for i := range m.regions {
		if !strings.EqualFold(m.regions[i].Name, name) {
			continue
		}
		if parentID != nil && m.regions[i].CountryID != *parentID {
			continue
		}
		return &m.regions[i], nil
	}
	return nil, nil
}

func (m *memStore) SearchApproximate(_ context.Context, _ string, parentID *string, limit int) ([]models.Region, error) {
	out := make([]models.Region, 0, limit)
	for _, r := range m.regions {
		if parentID != nil && r.CountryID != *parentID {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) GetOrCreate(ctx context.Context, name string, parentID *string) (*models.Region, error) {
	if existing, _ := m.FindExact(ctx, name, parentID); existing != nil {
		return existing, nil
	}
	m.creates++
	region := models.Region{ID: uuid.New().String(), Name: name}
	if parentID != nil {
		region.CountryID = *parentID
	}
	m.regions = append(m.regions, region)
	return &m.regions[len(m.regions)-1], nil
}

func newTestResolver(store *memStore) *Resolver[models.Region] {
	return New[models.Region](testLogger(), store, LevelRegion, Config{Threshold: 0.3, SearchLimit: 5})
}

func TestResolveExactMatchIsCaseInsensitive(t *testing.T) {
	france := "country-fr"
	store := &memStore{regions: []models.Region{{ID: "r1", Name: "Burgundy", CountryID: france}}}
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), "burgundy", &france)
	require.NoError(t, err)
	assert.Equal(t, StateFoundExact, res.State)
	assert.Equal(t, "Burgundy", res.Entity.Name)
}

func TestResolveApproximateMatchWithinThreshold(t *testing.T) {
	france := "country-fr"
	store := &memStore{regions: []models.Region{
		{ID: "r1", Name: "Burgundy", CountryID: france},
		{ID: "r2", Name: "Bordeaux", CountryID: france},
	}}
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), "Burgandy", &france)
	require.NoError(t, err)
	assert.Equal(t, StateFoundApproximate, res.State)
	assert.Equal(t, "Burgundy", res.Entity.Name)
}

func TestResolveScopeLimitsCandidates(t *testing.T) {
	france, spain := "country-fr", "country-es"
	store := &memStore{regions: []models.Region{{ID: "r1", Name: "Rioja", CountryID: spain}}}
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), "Rioja", &france)
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, res.State)
}

func TestResolveNotFoundCarriesSuggestions(t *testing.T) {
	france := "country-fr"
	store := &memStore{regions: []models.Region{
		{ID: "r1", Name: "Burgundy", CountryID: france},
		{ID: "r2", Name: "Bordeaux", CountryID: france},
	}}
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), "Tuscany", &france)
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, res.State)
	assert.ElementsMatch(t, []string{"Burgundy", "Bordeaux"}, res.Suggestions)
}

func TestResolveBlankNameSkipsFuzzySearch(t *testing.T) {
	appellation := "a1"
	store := &memStore{regions: []models.Region{{ID: "r1", Name: "Chablis", CountryID: appellation}}}
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), "", &appellation)
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, res.State)
	assert.Empty(t, res.Suggestions)
}

func TestGetOrCreateTrimsName(t *testing.T) {
	france := "country-fr"
	store := &memStore{}
	r := newTestResolver(store)

	region, err := r.GetOrCreate(context.Background(), "  Loire Valley  ", &france)
	require.NoError(t, err)
	assert.Equal(t, "Loire Valley", region.Name)
	assert.Equal(t, 1, store.creates)
}
