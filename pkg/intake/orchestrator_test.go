package intake

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/resolver"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// fakeStore is an in-memory place store for one taxonomy level.
type fakeStore[T resolver.Named] struct {
	items    []T
	creates  int
	build    func(id, name string, parentID *string) T
	parentOf func(T) string
}

func (f *fakeStore[T]) FindExact(_ context.Context, name string, parentID *string) (*T, error) {
	for i := range f.items {
		if !strings.EqualFold(f.items[i].EntityName(), name) {
			continue
		}
		if parentID != nil && f.parentOf(f.items[i]) != *parentID {
			continue
		}
		return &f.items[i], nil
	}
	return nil, nil
}

func (f *fakeStore[T]) SearchApproximate(_ context.Context, _ string, parentID *string, limit int) ([]T, error) {
	out := make([]T, 0, limit)
	for _, item := range f.items {
		if parentID != nil && f.parentOf(item) != *parentID {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore[T]) GetOrCreate(ctx context.Context, name string, parentID *string) (*T, error) {
	if existing, _ := f.FindExact(ctx, name, parentID); existing != nil {
		return existing, nil
	}
	f.creates++
	item := f.build(fmt.Sprintf("id-%d", len(f.items)+1), name, parentID)
	f.items = append(f.items, item)
	return &f.items[len(f.items)-1], nil
}

// fixture wires an orchestrator over in-memory stores plus an event
// recorder, so tests drive the full resolution path.
type fixture struct {
	countries       *fakeStore[models.Country]
	regions         *fakeStore[models.Region]
	appellations    *fakeStore[models.Appellation]
	subAppellations *fakeStore[models.SubAppellation]
	wines           *fakeWineStore
	events          *eventRecorder
	orchestrator    *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		countries: &fakeStore[models.Country]{
			build:    func(id, name string, _ *string) models.Country { return models.Country{ID: id, Name: name} },
			parentOf: func(models.Country) string { return "" },
		},
		regions: &fakeStore[models.Region]{
			build: func(id, name string, parentID *string) models.Region {
				r := models.Region{ID: id, Name: name}
				if parentID != nil {
					r.CountryID = *parentID
				}
				return r
			},
			parentOf: func(r models.Region) string { return r.CountryID },
		},
		appellations: &fakeStore[models.Appellation]{
			build: func(id, name string, parentID *string) models.Appellation {
				a := models.Appellation{ID: id, Name: name}
				if parentID != nil {
					a.RegionID = *parentID
				}
				return a
			},
			parentOf: func(a models.Appellation) string { return a.RegionID },
		},
		subAppellations: &fakeStore[models.SubAppellation]{
			build: func(id, name string, parentID *string) models.SubAppellation {
				s := models.SubAppellation{ID: id, Name: name}
				if parentID != nil {
					s.AppellationID = *parentID
				}
				return s
			},
			parentOf: func(s models.SubAppellation) string { return s.AppellationID },
		},
		events: &eventRecorder{},
	}
	f.wines = &fakeWineStore{fixture: f}

	logger := testLogger()
	placeCfg := resolver.Config{Threshold: 0.3, SearchLimit: 5}

	f.orchestrator = NewOrchestrator(
		logger,
		Config{PlaceThreshold: 0.3},
		resolver.New[models.Country](logger, f.countries, resolver.LevelCountry, placeCfg),
		resolver.New[models.Region](logger, f.regions, resolver.LevelRegion, placeCfg),
		resolver.New[models.Appellation](logger, f.appellations, resolver.LevelAppellation, placeCfg),
		resolver.New[models.SubAppellation](logger, f.subAppellations, resolver.LevelSubAppellation, placeCfg),
		resolver.NewWineResolver(logger, f.wines, resolver.WineConfig{Threshold: 0.2, PlaceThreshold: 0.3, SearchLimit: 5}),
		f.events,
		nil,
	)
	return f
}

// seedHierarchy creates a full France > Burgundy > Chablis chain with the
// given sub-appellation name ("" seeds the sentinel) and returns the chain.
func (f *fixture) seedHierarchy(t *testing.T, subAppellationName string) (models.Country, models.Region, models.Appellation, models.SubAppellation) {
	t.Helper()
	ctx := context.Background()

	country, err := f.countries.GetOrCreate(ctx, "France", nil)
	require.NoError(t, err)
	region, err := f.regions.GetOrCreate(ctx, "Burgundy", &country.ID)
	require.NoError(t, err)
	appellation, err := f.appellations.GetOrCreate(ctx, "Chablis", &region.ID)
	require.NoError(t, err)
	subAppellation, err := f.subAppellations.GetOrCreate(ctx, subAppellationName, &appellation.ID)
	require.NoError(t, err)

	return *country, *region, *appellation, *subAppellation
}

func (f *fixture) seedWine(t *testing.T, name string, color models.Color, grapeVariety string, subAppellationName string) *models.WineDetail {
	t.Helper()
	_, _, _, subAppellation := f.seedHierarchy(t, subAppellationName)

	wine, err := f.wines.GetOrCreate(context.Background(), models.CreateWineRequest{
		Name:             name,
		Color:            color,
		GrapeVariety:     grapeVariety,
		SubAppellationID: subAppellation.ID,
	})
	require.NoError(t, err)
	return wine
}

// fakeWineStore derives the hierarchy columns of WineDetail from the place
// stores, the way the SQL join does.
type fakeWineStore struct {
	fixture *fixture
	wines   []models.WineDetail
	creates int
	updates int
}

func (s *fakeWineStore) detail(wine models.Wine) models.WineDetail {
	d := models.WineDetail{Wine: wine}
	for _, sa := range s.fixture.subAppellations.items {
		if sa.ID != wine.SubAppellationID {
			continue
		}
		d.SubAppellationName = sa.Name
		for _, a := range s.fixture.appellations.items {
			if a.ID != sa.AppellationID {
				continue
			}
			d.AppellationID = a.ID
			d.AppellationName = a.Name
			for _, r := range s.fixture.regions.items {
				if r.ID != a.RegionID {
					continue
				}
				d.RegionID = r.ID
				d.RegionName = r.Name
				for _, c := range s.fixture.countries.items {
					if c.ID == r.CountryID {
						d.CountryID = c.ID
						d.CountryName = c.Name
					}
				}
			}
		}
	}
	return d
}

func (s *fakeWineStore) FindByNameAndContext(_ context.Context, name, subAppellationName, appellationName string) (*models.WineDetail, error) {
	for i := range s.wines {
		w := s.detail(s.wines[i].Wine)
		if !strings.EqualFold(w.Name, name) {
			continue
		}
		if appellationName == "" {
			s.wines[i] = w
			return &s.wines[i], nil
		}
		if strings.EqualFold(w.AppellationName, appellationName) && strings.EqualFold(w.SubAppellationName, subAppellationName) {
			s.wines[i] = w
			return &s.wines[i], nil
		}
	}
	return nil, nil
}

func (s *fakeWineStore) FindClosestMatches(_ context.Context, _ string, limit int) ([]models.WineDetail, error) {
	out := make([]models.WineDetail, 0, limit)
	for i := range s.wines {
		out = append(out, s.detail(s.wines[i].Wine))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeWineStore) GetOrCreate(_ context.Context, req models.CreateWineRequest) (*models.WineDetail, error) {
	for i := range s.wines {
		w := &s.wines[i]
		if strings.EqualFold(w.Name, req.Name) && w.SubAppellationID == req.SubAppellationID {
			return w, nil
		}
	}
	s.creates++
	detail := s.detail(models.Wine{
		ID:               fmt.Sprintf("wine-%d", len(s.wines)+1),
		Name:             req.Name,
		Color:            req.Color,
		GrapeVariety:     req.GrapeVariety,
		SubAppellationID: req.SubAppellationID,
	})
	s.wines = append(s.wines, detail)
	return &s.wines[len(s.wines)-1], nil
}

func (s *fakeWineStore) Update(_ context.Context, wine *models.Wine) error {
	s.updates++
	for i := range s.wines {
		if s.wines[i].ID == wine.ID {
			s.wines[i] = s.detail(*wine)
			return nil
		}
	}
	return nil
}

// eventRecorder captures emitted catalog events.
type eventRecorder struct {
	winesCreated  int
	winesUpdated  int
	placesCreated []resolver.Level
	imports       int
}

func (e *eventRecorder) WineCreated(context.Context, *models.WineDetail) { e.winesCreated++ }
func (e *eventRecorder) WineUpdated(context.Context, *models.WineDetail) { e.winesUpdated++ }
func (e *eventRecorder) PlaceCreated(_ context.Context, level resolver.Level, _, _ string, _ *string) {
	e.placesCreated = append(e.placesCreated, level)
}
func (e *eventRecorder) ImportCompleted(context.Context, *ImportReport) { e.imports++ }

func TestIntakeRequiresName(t *testing.T) {
	f := newFixture()

	result := f.orchestrator.Intake(context.Background(), Request{Color: "Red"})

	assert.False(t, result.Success)
	require.NotNil(t, result.Suggestions)
	assert.Equal(t, FailureMissingFields, result.Suggestions.Kind())
}

func TestIntakeRejectsUnknownColor(t *testing.T) {
	f := newFixture()

	result := f.orchestrator.Intake(context.Background(), Request{Name: "Some Wine", Color: "Orange"})

	assert.False(t, result.Success)
	require.NotNil(t, result.Suggestions)
	assert.Equal(t, FailureInvalidColor, result.Suggestions.Kind())
}

func TestIntakeMatchesExistingWineByNameOnly(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "Chardonnay", "Vaillons")

	result := f.orchestrator.Intake(context.Background(), Request{Name: "domaine laroche"})

	assert.True(t, result.Success)
	assert.False(t, result.Created)
	require.NotNil(t, result.Wine)
	assert.Equal(t, "Domaine Laroche", result.Wine.Name)
	// Only the seeded create happened.
	assert.Equal(t, 1, f.wines.creates)
}

func TestIntakeReportsMissingFieldsForNewWine(t *testing.T) {
	f := newFixture()

	result := f.orchestrator.Intake(context.Background(), Request{Name: "Unknown Wine", Color: "Red"})

	assert.False(t, result.Success)
	require.NotNil(t, result.Suggestions)
	missing, ok := result.Suggestions.(MissingFields)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"region", "appellation"}, missing.Fields)
}

func TestIntakeCreatesWineAndMissingPlaces(t *testing.T) {
	f := newFixture()

	result := f.orchestrator.Intake(context.Background(), Request{
		Name:         "Clos Nouveau",
		Color:        "Red",
		Country:      "France",
		Region:       "Burgundy",
		Appellation:  "Chablis",
		GrapeVariety: "Pinot Noir",
	})

	assert.True(t, result.Success)
	assert.True(t, result.Created)
	require.NotNil(t, result.Wine)
	assert.Equal(t, models.ColorRed, result.Wine.Color)
	assert.Equal(t, "France", result.Wine.CountryName)

	assert.Equal(t, 1, f.countries.creates)
	assert.Equal(t, 1, f.regions.creates)
	assert.Equal(t, 1, f.appellations.creates)
	// The blank sub-appellation record exists but is not announced.
	assert.Equal(t, 1, f.subAppellations.creates)
	assert.Equal(t, []resolver.Level{resolver.LevelCountry, resolver.LevelRegion, resolver.LevelAppellation}, f.events.placesCreated)
	assert.Equal(t, 1, f.events.winesCreated)
}

func TestIntakeCreatesNamedSubAppellation(t *testing.T) {
	f := newFixture()

	result := f.orchestrator.Intake(context.Background(), Request{
		Name:           "Clos Nouveau",
		Color:          "White",
		Country:        "France",
		Region:         "Burgundy",
		Appellation:    "Chablis",
		SubAppellation: "Vaillons",
	})

	assert.True(t, result.Success)
	assert.Contains(t, f.events.placesCreated, resolver.LevelSubAppellation)
	assert.Equal(t, "Vaillons", result.Wine.SubAppellationName)
}

func TestIntakeResolvesMisspelledPlaces(t *testing.T) {
	f := newFixture()
	f.seedHierarchy(t, "")

	result := f.orchestrator.Intake(context.Background(), Request{
		Name:        "Clos Nouveau",
		Color:       "Red",
		Country:     "France",
		Region:      "Burgandy",
		Appellation: "Chablis",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "Burgundy", result.Wine.RegionName)
	assert.Equal(t, 0, f.regions.creates)
}

func TestIntakeRegionWithoutCountryFails(t *testing.T) {
	f := newFixture()
	_, _, _, _ = f.seedHierarchy(t, "")

	result := f.orchestrator.Intake(context.Background(), Request{
		Name:        "Clos Nouveau",
		Color:       "Red",
		Region:      "Piedmont",
		Appellation: "Barolo",
	})

	assert.False(t, result.Success)
	require.NotNil(t, result.Suggestions)
	fail, ok := result.Suggestions.(RegionCreationMissingCountry)
	require.True(t, ok)
	assert.Equal(t, "Piedmont", fail.Query)
	assert.Contains(t, fail.Suggestions, "Burgundy")
}

func TestIntakeColorConflictDoesNotMutate(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "", "Vaillons")

	result := f.orchestrator.Intake(context.Background(), Request{Name: "Domaine Laroche", Color: "Red"})

	assert.False(t, result.Success)
	require.NotNil(t, result.Suggestions)
	mismatch, ok := result.Suggestions.(WineColorMismatch)
	require.True(t, ok)
	assert.Equal(t, models.ColorRed, mismatch.Requested)
	assert.Equal(t, models.ColorWhite, mismatch.Actual)
	assert.Equal(t, 0, f.wines.updates)
}

func TestIntakeRegionConflictOnExistingWine(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "", "Vaillons")

	result := f.orchestrator.Intake(context.Background(), Request{Name: "Domaine Laroche", Region: "Tuscany"})

	assert.False(t, result.Success)
	require.NotNil(t, result.Suggestions)
	assert.Equal(t, FailureWineRegionMismatch, result.Suggestions.Kind())
}

func TestIntakeMisspelledRegionAgreesOnExistingWine(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "", "Vaillons")

	result := f.orchestrator.Intake(context.Background(), Request{Name: "Domaine Laroche", Region: "Burgandy"})

	assert.True(t, result.Success)
}

func TestIntakeBackfillsGrapeVariety(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "", "Vaillons")

	result := f.orchestrator.Intake(context.Background(), Request{Name: "Domaine Laroche", GrapeVariety: "Chardonnay"})

	assert.True(t, result.Success)
	assert.Equal(t, "Chardonnay", result.Wine.GrapeVariety)
	assert.Equal(t, 1, f.wines.updates)
	assert.Equal(t, 1, f.events.winesUpdated)
}

func TestIntakeDoesNotOverwriteGrapeVariety(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "Chardonnay", "Vaillons")

	result := f.orchestrator.Intake(context.Background(), Request{Name: "Domaine Laroche", GrapeVariety: "Riesling"})

	assert.True(t, result.Success)
	assert.Equal(t, "Chardonnay", result.Wine.GrapeVariety)
	assert.Equal(t, 0, f.wines.updates)
}

func TestIntakeIsIdempotent(t *testing.T) {
	f := newFixture()
	req := Request{
		Name:        "Clos Nouveau",
		Color:       "Red",
		Country:     "France",
		Region:      "Burgundy",
		Appellation: "Chablis",
	}

	first := f.orchestrator.Intake(context.Background(), req)
	second := f.orchestrator.Intake(context.Background(), req)

	assert.True(t, first.Created)
	assert.True(t, second.Success)
	assert.False(t, second.Created)
	assert.Equal(t, 1, f.wines.creates)
}
