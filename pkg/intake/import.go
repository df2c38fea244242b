package intake

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Ramsey-B/vine/pkg/importer"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/resolver"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// requiredColumns must all be present for an import to start. GrapeVariety
// is the only optional column.
var requiredColumns = []string{
	importer.ColumnName,
	importer.ColumnCountry,
	importer.ColumnRegion,
	importer.ColumnColor,
	importer.ColumnAppellation,
	importer.ColumnSubAppellation,
}

// Import reconciles every row of a tabular source against the catalog. A
// source missing required columns aborts before any row is touched; a row
// with bad values is recorded in the report and skipped without affecting
// its neighbors. Rows naming an existing wine update it permissively: the
// row's color and a more specific sub-appellation supersede the record.
func (o *Orchestrator) Import(ctx context.Context, src importer.Source) (*ImportReport, error) {
	ctx, span := tracing.StartSpan(ctx, "intake.Import")
	defer span.End()

	if err := checkColumns(src.Columns()); err != nil {
		return nil, err
	}

	// One cache per job: repeated names across rows resolve once and create
	// once, whatever order the rows arrive in.
	cache := resolver.NewBatchCache()
	job := &importJob{
		o:               o,
		countries:       resolver.WithCache(o.countries, cache),
		regions:         resolver.WithCache(o.regions, cache),
		appellations:    resolver.WithCache(o.appellations, cache),
		subAppellations: resolver.WithCache(o.subAppellations, cache),
		wines:           resolver.WithWineCache(o.wines, cache),
		report:          &ImportReport{},
	}

	rowNum := 0
	for {
		if err := ctx.Err(); err != nil {
			return job.report, err
		}

		row, ok, err := src.Next()
		if err != nil {
			return job.report, errors.Wrap(err, "failed to read import row")
		}
		if !ok {
			break
		}
		rowNum++

		if errs := job.processRow(ctx, rowNum, row); len(errs) > 0 {
			job.report.RowErrors = append(job.report.RowErrors, RowError{Row: rowNum, Errors: errs})
			continue
		}
		job.report.RowsProcessed++
	}

	o.logger.WithContext(ctx).WithFields(map[string]any{
		"rows_processed": job.report.RowsProcessed,
		"row_errors":     len(job.report.RowErrors),
		"wines_created":  job.report.WinesCreated,
		"wines_updated":  job.report.WinesUpdated,
	}).Info("import completed")

	if o.events != nil {
		o.events.ImportCompleted(ctx, job.report)
	}
	return job.report, nil
}

func checkColumns(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	missing := make([]string, 0)
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("import source is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// importJob is the per-call state of one import: cache-wrapped resolvers
// and the accumulating report.
type importJob struct {
	o               *Orchestrator
	countries       resolver.API[models.Country]
	regions         resolver.API[models.Region]
	appellations    resolver.API[models.Appellation]
	subAppellations resolver.API[models.SubAppellation]
	wines           resolver.WineAPI
	report          *ImportReport
}

// processRow reconciles one row. Returned errors mean the row was skipped;
// an empty slice means it was applied.
func (j *importJob) processRow(ctx context.Context, rowNum int, row importer.Row) []string {
	name := row[importer.ColumnName]
	country := row[importer.ColumnCountry]
	region := row[importer.ColumnRegion]
	rawColor := row[importer.ColumnColor]
	appellation := row[importer.ColumnAppellation]
	subAppellation := row[importer.ColumnSubAppellation]
	grapeVariety := row[importer.ColumnGrapeVariety]

	errs := make([]string, 0)
	for _, check := range []struct {
		column string
		value  string
	}{
		{importer.ColumnName, name},
		{importer.ColumnCountry, country},
		{importer.ColumnRegion, region},
		{importer.ColumnColor, rawColor},
		{importer.ColumnAppellation, appellation},
	} {
		if check.value == "" {
			errs = append(errs, fmt.Sprintf("missing value for column %q", check.column))
		}
	}
	if len(errs) > 0 {
		return errs
	}

	color, err := models.ParseColor(rawColor)
	if err != nil {
		return []string{NewInvalidColor(rawColor).Error()}
	}

	countryEnt, created, err := resolvePlace(ctx, j.countries, country, nil)
	if err != nil {
		return []string{err.Error()}
	}
	if created {
		j.report.CountriesCreated++
		j.o.placeCreated(ctx, resolver.LevelCountry, countryEnt.ID, countryEnt.Name, nil)
	}

	regionEnt, created, err := resolvePlace(ctx, j.regions, region, &countryEnt.ID)
	if err != nil {
		return []string{err.Error()}
	}
	if created {
		j.report.RegionsCreated++
		j.o.placeCreated(ctx, resolver.LevelRegion, regionEnt.ID, regionEnt.Name, &countryEnt.ID)
	}

	appellationEnt, created, err := resolvePlace(ctx, j.appellations, appellation, &regionEnt.ID)
	if err != nil {
		return []string{err.Error()}
	}
	if created {
		j.report.AppellationsCreated++
		j.o.placeCreated(ctx, resolver.LevelAppellation, appellationEnt.ID, appellationEnt.Name, &regionEnt.ID)
	}

	subAppellationEnt, created, err := resolvePlace(ctx, j.subAppellations, subAppellation, &appellationEnt.ID)
	if err != nil {
		return []string{err.Error()}
	}
	if created && !subAppellationEnt.IsSentinel() {
		j.report.SubAppellationsCreated++
		j.o.placeCreated(ctx, resolver.LevelSubAppellation, subAppellationEnt.ID, subAppellationEnt.Name, &appellationEnt.ID)
	}

	res, err := j.wines.Resolve(ctx, name, resolver.WineTarget{
		SubAppellationID:   subAppellationEnt.ID,
		SubAppellationName: subAppellationEnt.Name,
		AppellationName:    appellationEnt.Name,
	})
	if err != nil {
		return []string{err.Error()}
	}

	if res.State.Found() || res.State == resolver.StateCreated {
		return j.updateExisting(ctx, res.Wine, color, grapeVariety, subAppellationEnt)
	}

	// A row naming a sub-appellation may be refining a wine recorded under
	// the sentinel. Probe the sentinel scope before creating a sibling.
	if !subAppellationEnt.IsSentinel() {
		sentinelRes, err := j.wines.Resolve(ctx, name, resolver.WineTarget{
			AppellationName: appellationEnt.Name,
		})
		if err != nil {
			return []string{err.Error()}
		}
		if sentinelRes.State.Found() || sentinelRes.State == resolver.StateCreated {
			return j.updateExisting(ctx, sentinelRes.Wine, color, grapeVariety, subAppellationEnt)
		}
	}

	detail, err := j.wines.GetOrCreate(ctx, models.CreateWineRequest{
		Name:             name,
		Color:            color,
		GrapeVariety:     grapeVariety,
		SubAppellationID: subAppellationEnt.ID,
	})
	if err != nil {
		return []string{err.Error()}
	}
	j.report.WinesCreated++
	if j.o.events != nil {
		j.o.events.WineCreated(ctx, detail)
	}
	j.o.projectWine(ctx, detail)
	return nil
}

// updateExisting applies a richer row to an existing wine. Bulk rows come
// from upstream systems of record, so they supersede: the row's color wins,
// a named sub-appellation replaces the blank sentinel, and a blank grape
// variety is backfilled.
func (j *importJob) updateExisting(ctx context.Context, wine *models.WineDetail, color models.Color, grapeVariety string, subAppellation *models.SubAppellation) []string {
	updated := false

	if wine.Color != color {
		wine.Color = color
		updated = true
	}
	if wine.SubAppellationName == "" && !subAppellation.IsSentinel() && wine.SubAppellationID != subAppellation.ID {
		wine.SubAppellationID = subAppellation.ID
		wine.SubAppellationName = subAppellation.Name
		updated = true
	}
	if wine.GrapeVariety == "" && grapeVariety != "" {
		wine.GrapeVariety = grapeVariety
		updated = true
	}

	if !updated {
		return nil
	}

	if err := j.wines.Update(ctx, &wine.Wine); err != nil {
		return []string{err.Error()}
	}
	j.report.WinesUpdated++
	if j.o.events != nil {
		j.o.events.WineUpdated(ctx, wine)
	}
	j.o.projectWine(ctx, wine)
	return nil
}
