package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/pkg/importer"
	"github.com/Ramsey-B/vine/pkg/models"
)

var importHeader = []string{"Name", "Country", "Region", "Color", "Appellation", "Sub Appellation", "Grape Variety"}

func importSource(t *testing.T, rows [][]string) importer.Source {
	t.Helper()
	src, err := importer.NewRowsSource(importHeader, rows)
	require.NoError(t, err)
	return src
}

func TestImportRejectsMissingColumns(t *testing.T) {
	f := newFixture()

	src, err := importer.NewRowsSource([]string{"Name", "Country", "Color"}, nil)
	require.NoError(t, err)

	report, err := f.orchestrator.Import(context.Background(), src)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
	assert.Contains(t, err.Error(), "appellation")
}

func TestImportCreatesWinesAndPlaces(t *testing.T) {
	f := newFixture()

	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{
		{"Clos Nouveau", "France", "Burgundy", "Red", "Chablis", "Vaillons", "Pinot Noir"},
		{"Domaine Laroche", "France", "Burgundy", "White", "Chablis", "", "Chardonnay"},
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, report.RowsProcessed)
	assert.Empty(t, report.RowErrors)
	assert.Equal(t, 1, report.CountriesCreated)
	assert.Equal(t, 1, report.RegionsCreated)
	assert.Equal(t, 1, report.AppellationsCreated)
	// The named sub-appellation counts; the blank sentinel does not.
	assert.Equal(t, 1, report.SubAppellationsCreated)
	assert.Equal(t, 2, report.WinesCreated)
	assert.Equal(t, 0, report.WinesUpdated)
	assert.Equal(t, 1, f.events.imports)
}

func TestImportDuplicateRowsCreateOnce(t *testing.T) {
	f := newFixture()

	row := []string{"Clos Nouveau", "France", "Burgundy", "Red", "Chablis", "", "Pinot Noir"}
	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{row, row}))
	require.NoError(t, err)

	assert.Equal(t, 2, report.RowsProcessed)
	assert.Equal(t, 1, report.WinesCreated)
	assert.Equal(t, 0, report.WinesUpdated)
	assert.Equal(t, 1, f.wines.creates)
	assert.Equal(t, 1, f.countries.creates)
}

func TestImportSkipsBadRowsAndKeepsGoing(t *testing.T) {
	f := newFixture()

	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{
		{"Clos Nouveau", "France", "Burgundy", "Red", "Chablis", "", ""},
		{"Bad Wine", "France", "Burgundy", "Orange", "Chablis", "", ""},
		{"", "France", "Burgundy", "Red", "Chablis", "", ""},
		{"Domaine Laroche", "France", "Burgundy", "White", "Chablis", "", ""},
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, report.RowsProcessed)
	assert.Equal(t, 2, report.WinesCreated)
	require.Len(t, report.RowErrors, 2)
	assert.Equal(t, 2, report.RowErrors[0].Row)
	assert.Equal(t, 3, report.RowErrors[1].Row)
	assert.Contains(t, report.RowErrors[1].Errors[0], "name")
}

// cancellingSource cancels the job context once the given row has been
// handed out.
type cancellingSource struct {
	importer.Source
	cancel   context.CancelFunc
	afterRow int
	handed   int
}

func (s *cancellingSource) Next() (importer.Row, bool, error) {
	row, ok, err := s.Source.Next()
	if ok {
		s.handed++
		if s.handed == s.afterRow {
			s.cancel()
		}
	}
	return row, ok, err
}

func TestImportStopsOnCancelledContext(t *testing.T) {
	f := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &cancellingSource{
		Source: importSource(t, [][]string{
			{"Clos Nouveau", "France", "Burgundy", "Red", "Chablis", "", ""},
			{"Domaine Laroche", "France", "Burgundy", "White", "Chablis", "", ""},
		}),
		cancel:   cancel,
		afterRow: 1,
	}

	report, err := f.orchestrator.Import(ctx, src)
	require.ErrorIs(t, err, context.Canceled)

	// The partial report covers the rows that committed before the cancel.
	require.NotNil(t, report)
	assert.Equal(t, 1, report.RowsProcessed)
	assert.Equal(t, 1, report.WinesCreated)
	assert.Equal(t, 1, f.wines.creates)
	assert.Equal(t, 0, f.events.imports)
}

func TestImportSameWineNameUnderTwoAppellations(t *testing.T) {
	f := newFixture()

	// Row 2 refines row 1's sentinel record in Chablis. Row 3 carries the
	// same name under Barolo and must create a second wine there instead of
	// mutating the Chablis one.
	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{
		{"Cuvee des Pins", "France", "Burgundy", "White", "Chablis", "", ""},
		{"Cuvee des Pins", "France", "Burgundy", "White", "Chablis", "Vaillons", ""},
		{"Cuvee des Pins", "Italy", "Piedmont", "Red", "Barolo", "Serralunga", ""},
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, report.RowsProcessed)
	assert.Empty(t, report.RowErrors)
	assert.Equal(t, 2, report.WinesCreated)
	assert.Equal(t, 1, report.WinesUpdated)

	require.Len(t, f.wines.wines, 2)
	chablis, barolo := f.wines.wines[0], f.wines.wines[1]
	assert.Equal(t, models.ColorWhite, chablis.Color)
	assert.Equal(t, "Vaillons", chablis.SubAppellationName)
	assert.Equal(t, models.ColorRed, barolo.Color)
	assert.Equal(t, "Barolo", barolo.AppellationName)
	assert.Equal(t, "Serralunga", barolo.SubAppellationName)
}

func TestImportColorSupersedesExisting(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorRed, "", "")

	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{
		{"Domaine Laroche", "France", "Burgundy", "White", "Chablis", "", ""},
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, report.WinesUpdated)
	assert.Equal(t, 0, report.WinesCreated)
	assert.Equal(t, models.ColorWhite, f.wines.wines[0].Color)
}

func TestImportNamedSubAppellationReplacesSentinel(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "", "")

	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{
		{"Domaine Laroche", "France", "Burgundy", "White", "Chablis", "Vaillons", ""},
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, report.WinesUpdated)
	assert.Equal(t, "Vaillons", f.wines.wines[0].SubAppellationName)
}

func TestImportBackfillsGrapeVariety(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "", "")

	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{
		{"Domaine Laroche", "France", "Burgundy", "White", "Chablis", "", "Chardonnay"},
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, report.WinesUpdated)
	assert.Equal(t, "Chardonnay", f.wines.wines[0].GrapeVariety)
}

func TestImportIdenticalRowIsNoop(t *testing.T) {
	f := newFixture()
	f.seedWine(t, "Domaine Laroche", models.ColorWhite, "Chardonnay", "")

	report, err := f.orchestrator.Import(context.Background(), importSource(t, [][]string{
		{"Domaine Laroche", "France", "Burgundy", "White", "Chablis", "", "Chardonnay"},
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, report.RowsProcessed)
	assert.Equal(t, 0, report.WinesCreated)
	assert.Equal(t, 0, report.WinesUpdated)
	assert.Equal(t, 0, f.wines.updates)
}
