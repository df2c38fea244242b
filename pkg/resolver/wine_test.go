package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/pkg/models"
)

// memWineStore is an in-memory WineStore.
type memWineStore struct {
	wines   []models.WineDetail
	creates int
	updates int
}

func (m *memWineStore) FindByNameAndContext(_ context.Context, name, subAppellationName, appellationName string) (*models.WineDetail, error) {
	for i := range m.wines {
		w := &m.wines[i]
		if !strings.EqualFold(w.Name, name) {
			continue
		}
		if appellationName == "" {
			return w, nil
		}
		if strings.EqualFold(w.AppellationName, appellationName) && strings.EqualFold(w.SubAppellationName, subAppellationName) {
			return w, nil
		}
	}
	return nil, nil
}

func (m *memWineStore) FindClosestMatches(_ context.Context, _ string, limit int) ([]models.WineDetail, error) {
	out := m.wines
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memWineStore) GetOrCreate(_ context.Context, req models.CreateWineRequest) (*models.WineDetail, error) {
	m.creates++
	detail := models.WineDetail{Wine: models.Wine{
		ID:               "wine-new",
		Name:             req.Name,
		Color:            req.Color,
		GrapeVariety:     req.GrapeVariety,
		SubAppellationID: req.SubAppellationID,
	}}
	m.wines = append(m.wines, detail)
	return &m.wines[len(m.wines)-1], nil
}

func (m *memWineStore) Update(_ context.Context, _ *models.Wine) error {
	m.updates++
	return nil
}

func newTestWineResolver(store *memWineStore) *WineResolver {
	return NewWineResolver(testLogger(), store, WineConfig{Threshold: 0.2, PlaceThreshold: 0.3, SearchLimit: 5})
}

func chablisWine() models.WineDetail {
	return models.WineDetail{
		Wine: models.Wine{
			ID:               "w1",
			Name:             "Domaine Laroche",
			Color:            models.ColorWhite,
			SubAppellationID: "sa1",
		},
		SubAppellationName: "Vaillons",
		AppellationName:    "Chablis",
	}
}

func TestWineResolveExactByContext(t *testing.T) {
	store := &memWineStore{wines: []models.WineDetail{chablisWine()}}
	r := newTestWineResolver(store)

	res, err := r.Resolve(context.Background(), "domaine laroche", WineTarget{
		SubAppellationName: "Vaillons",
		AppellationName:    "Chablis",
	})
	require.NoError(t, err)
	assert.Equal(t, StateFoundExact, res.State)
	assert.Equal(t, "w1", res.Wine.ID)
}

func TestWineResolveNameOnlyProbe(t *testing.T) {
	store := &memWineStore{wines: []models.WineDetail{chablisWine()}}
	r := newTestWineResolver(store)

	// No hierarchy supplied: a name match alone resolves the wine.
	res, err := r.Resolve(context.Background(), "Domaine Laroche", WineTarget{})
	require.NoError(t, err)
	assert.Equal(t, StateFoundExact, res.State)
}

func TestWineResolveApproximateAcceptsSameSubAppellation(t *testing.T) {
	store := &memWineStore{wines: []models.WineDetail{chablisWine()}}
	r := newTestWineResolver(store)

	res, err := r.Resolve(context.Background(), "Domaine Larocha", WineTarget{
		SubAppellationID:   "sa1",
		SubAppellationName: "Vaillons",
		AppellationName:    "Chablis",
	})
	require.NoError(t, err)
	assert.Equal(t, StateFoundApproximate, res.State)
	assert.Equal(t, "w1", res.Wine.ID)
}

func TestWineResolveRejectsDifferentAppellation(t *testing.T) {
	store := &memWineStore{wines: []models.WineDetail{chablisWine()}}
	r := newTestWineResolver(store)

	res, err := r.Resolve(context.Background(), "Domaine Larocha", WineTarget{
		SubAppellationID:   "sa-other",
		SubAppellationName: "Vaillons",
		AppellationName:    "Sancerre",
	})
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, res.State)
	assert.Contains(t, res.Suggestions, "Domaine Laroche")
}

func TestWineResolveBlankSubAppellationsMatch(t *testing.T) {
	wine := chablisWine()
	wine.SubAppellationName = ""
	store := &memWineStore{wines: []models.WineDetail{wine}}
	r := newTestWineResolver(store)

	res, err := r.Resolve(context.Background(), "Domaine Larocha", WineTarget{
		SubAppellationID: "sa-other",
		AppellationName:  "Chablis",
	})
	require.NoError(t, err)
	assert.Equal(t, StateFoundApproximate, res.State)
}

func TestWineResolveCloseSubAppellationNamesMatch(t *testing.T) {
	store := &memWineStore{wines: []models.WineDetail{chablisWine()}}
	r := newTestWineResolver(store)

	res, err := r.Resolve(context.Background(), "Domaine Larocha", WineTarget{
		SubAppellationID:   "sa-other",
		SubAppellationName: "Vaillon",
		AppellationName:    "Chablis",
	})
	require.NoError(t, err)
	assert.Equal(t, StateFoundApproximate, res.State)
}

func TestWineResolveBlankVersusNamedSubAppellationRejected(t *testing.T) {
	store := &memWineStore{wines: []models.WineDetail{chablisWine()}}
	r := newTestWineResolver(store)

	res, err := r.Resolve(context.Background(), "Domaine Larocha", WineTarget{
		SubAppellationID: "sa-other",
		AppellationName:  "Chablis",
	})
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, res.State)
}
