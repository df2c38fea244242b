// Package intake reconciles noisy wine records against the canonical
// Country, Region, Appellation, SubAppellation and Wine catalog. It offers
// a strict single-record flow, where any disagreement with an existing wine
// is a conflict, and a permissive batch flow, where richer rows update
// existing records.
package intake

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/vine/pkg/matching"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/resolver"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Request is one record of intake input. Only Name is always required;
// Color, Region and Appellation become required when the wine does not
// already exist. A blank SubAppellation maps to the appellation's blank
// sentinel record.
type Request struct {
	Name           string `json:"name" validate:"required"`
	Color          string `json:"color"`
	Country        string `json:"country"`
	Region         string `json:"region"`
	Appellation    string `json:"appellation"`
	SubAppellation string `json:"subAppellation"`
	GrapeVariety   string `json:"grapeVariety"`
}

func (r *Request) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Color = strings.TrimSpace(r.Color)
	r.Country = strings.TrimSpace(r.Country)
	r.Region = strings.TrimSpace(r.Region)
	r.Appellation = strings.TrimSpace(r.Appellation)
	r.SubAppellation = strings.TrimSpace(r.SubAppellation)
	r.GrapeVariety = strings.TrimSpace(r.GrapeVariety)
}

// EventSink receives catalog change notifications. Implementations must not
// fail the intake; delivery is best effort.
type EventSink interface {
	WineCreated(ctx context.Context, wine *models.WineDetail)
	WineUpdated(ctx context.Context, wine *models.WineDetail)
	PlaceCreated(ctx context.Context, level resolver.Level, id, name string, parentID *string)
	ImportCompleted(ctx context.Context, report *ImportReport)
}

// GraphProjector mirrors catalog changes into the graph database.
type GraphProjector interface {
	ProjectWine(ctx context.Context, wine *models.WineDetail) error
}

// Config carries the orchestrator tunables. PlaceThreshold is used when
// comparing supplied place names against a wine's recorded hierarchy, so a
// misspelled region still matches its record instead of raising a conflict.
type Config struct {
	PlaceThreshold float64
}

// Orchestrator drives the resolution flows across all five levels.
type Orchestrator struct {
	logger          ectologger.Logger
	scorer          *matching.Scorer
	cfg             Config
	countries       resolver.API[models.Country]
	regions         resolver.API[models.Region]
	appellations    resolver.API[models.Appellation]
	subAppellations resolver.API[models.SubAppellation]
	wines           resolver.WineAPI
	events          EventSink      // optional
	graph           GraphProjector // optional
}

// NewOrchestrator wires the per-level resolvers into an intake orchestrator.
// events and graph may be nil.
func NewOrchestrator(
	logger ectologger.Logger,
	cfg Config,
	countries resolver.API[models.Country],
	regions resolver.API[models.Region],
	appellations resolver.API[models.Appellation],
	subAppellations resolver.API[models.SubAppellation],
	wines resolver.WineAPI,
	events EventSink,
	graph GraphProjector,
) *Orchestrator {
	return &Orchestrator{
		logger:          logger,
		scorer:          matching.NewScorer(),
		cfg:             cfg,
		countries:       countries,
		regions:         regions,
		appellations:    appellations,
		subAppellations: subAppellations,
		wines:           wines,
		events:          events,
		graph:           graph,
	}
}

// Intake reconciles a single record. A wine that already exists is
// cross-checked against every supplied attribute and any disagreement is a
// conflict; a wine that does not exist is created, creating missing places
// along the way when the record carries enough context.
func (o *Orchestrator) Intake(ctx context.Context, req Request) Result {
	ctx, span := tracing.StartSpan(ctx, "intake.Intake")
	defer span.End()

	req.trim()
	log := o.logger.WithContext(ctx).WithFields(map[string]any{"wine": req.Name})

	if req.Name == "" {
		return failed(NewMissingFields("name"))
	}

	var color models.Color
	if req.Color != "" {
		parsed, err := models.ParseColor(req.Color)
		if err != nil {
			return failed(NewInvalidColor(req.Color))
		}
		color = parsed
	}

	// The wine may already exist under the supplied context, or under any
	// context when none was supplied. Resolution before the hierarchy is
	// known probes by names only.
	probe, err := o.wines.Resolve(ctx, req.Name, resolver.WineTarget{
		SubAppellationName: req.SubAppellation,
		AppellationName:    req.Appellation,
	})
	if err != nil {
		log.WithError(err).Error("wine probe failed")
		return internalFailure(err)
	}
	if probe.State.Found() {
		return o.reconcileExisting(ctx, req, color, probe.Wine, nil)
	}

	missing := make([]string, 0, 3)
	if req.Color == "" {
		missing = append(missing, "color")
	}
	if req.Region == "" {
		missing = append(missing, "region")
	}
	if req.Appellation == "" {
		missing = append(missing, "appellation")
	}
	if len(missing) > 0 {
		return failed(NewMissingFields(missing...))
	}

	places, fail, err := o.resolvePlaces(ctx, req)
	if err != nil {
		log.WithError(err).Error("place resolution failed")
		return internalFailure(err)
	}
	if fail != nil {
		return failed(fail)
	}

	res, err := o.wines.Resolve(ctx, req.Name, resolver.WineTarget{
		SubAppellationID:   places.subAppellation.ID,
		SubAppellationName: places.subAppellation.Name,
		AppellationName:    places.appellation.Name,
	})
	if err != nil {
		log.WithError(err).Error("wine resolution failed")
		return internalFailure(err)
	}
	if res.State.Found() {
		return o.reconcileExisting(ctx, req, color, res.Wine, places)
	}

	detail, err := o.wines.GetOrCreate(ctx, models.CreateWineRequest{
		Name:             req.Name,
		Color:            color,
		GrapeVariety:     req.GrapeVariety,
		SubAppellationID: places.subAppellation.ID,
	})
	if err != nil {
		log.WithError(err).Error("wine creation failed")
		return internalFailure(err)
	}
	log.WithFields(map[string]any{"wine_id": detail.ID}).Info("wine created")

	if o.events != nil {
		o.events.WineCreated(ctx, detail)
	}
	o.projectWine(ctx, detail)

	return Result{Success: true, Message: "wine created", Wine: detail, Created: true}
}

// resolvedPlaces is the hierarchy chain resolved for one record. country is
// nil when the record carried no country.
type resolvedPlaces struct {
	country        *models.Country
	region         *models.Region
	appellation    *models.Appellation
	subAppellation *models.SubAppellation
	created        placeCounts
}

type placeCounts struct {
	countries       int
	regions         int
	appellations    int
	subAppellations int
}

// resolvePlaces walks the hierarchy top down, resolving each supplied name
// within its parent's scope and creating what is missing. A region that
// matches nothing cannot be created without a country; that is the one
// non-creatable gap and it surfaces as a typed failure with suggestions.
func (o *Orchestrator) resolvePlaces(ctx context.Context, req Request) (*resolvedPlaces, Failure, error) {
	ctx, span := tracing.StartSpan(ctx, "intake.resolvePlaces")
	defer span.End()

	places := &resolvedPlaces{}

	var countryID *string
	if req.Country != "" {
		country, created, err := resolvePlace(ctx, o.countries, req.Country, nil)
		if err != nil {
			return nil, nil, err
		}
		if created {
			places.created.countries++
			o.placeCreated(ctx, resolver.LevelCountry, country.EntityID(), country.EntityName(), nil)
		}
		places.country = country
		countryID = &country.ID
	}

	regionRes, err := o.regions.Resolve(ctx, req.Region, countryID)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case regionRes.State.Found():
		places.region = regionRes.Entity
	case countryID == nil:
		return nil, NewRegionCreationMissingCountry(req.Region, regionRes.Suggestions), nil
	default:
		region, err := o.regions.GetOrCreate(ctx, req.Region, countryID)
		if err != nil {
			return nil, nil, err
		}
		places.created.regions++
		o.placeCreated(ctx, resolver.LevelRegion, region.ID, region.Name, countryID)
		places.region = region
	}

	appellation, created, err := resolvePlace(ctx, o.appellations, req.Appellation, &places.region.ID)
	if err != nil {
		return nil, nil, err
	}
	if created {
		places.created.appellations++
		o.placeCreated(ctx, resolver.LevelAppellation, appellation.ID, appellation.Name, &places.region.ID)
	}
	places.appellation = appellation

	subAppellation, created, err := resolvePlace(ctx, o.subAppellations, req.SubAppellation, &places.appellation.ID)
	if err != nil {
		return nil, nil, err
	}
	if created && !subAppellation.IsSentinel() {
		places.created.subAppellations++
		o.placeCreated(ctx, resolver.LevelSubAppellation, subAppellation.ID, subAppellation.Name, &places.appellation.ID)
	}
	places.subAppellation = subAppellation

	return places, nil, nil
}

// resolvePlace resolves one name at one level and falls back to creation
// when nothing matched. The bool reports whether a record was created; a
// memoized Created from earlier in a batch job counts as already existing,
// so only the creating row reports it.
func resolvePlace[T resolver.Named](ctx context.Context, api resolver.API[T], name string, parentID *string) (*T, bool, error) {
	res, err := api.Resolve(ctx, name, parentID)
	if err != nil {
		return nil, false, err
	}
	if res.State.Found() || res.State == resolver.StateCreated {
		return res.Entity, false, nil
	}
	entity, err := api.GetOrCreate(ctx, name, parentID)
	if err != nil {
		return nil, false, err
	}
	return entity, true, nil
}

// reconcileExisting cross-checks a found wine against every supplied
// attribute. Disagreements are conflicts; a blank recorded grape variety is
// backfilled from the input. places is nil on the probe path, where supplied
// names are compared fuzzily against the recorded hierarchy instead of by id.
func (o *Orchestrator) reconcileExisting(ctx context.Context, req Request, color models.Color, wine *models.WineDetail, places *resolvedPlaces) Result {
	if fail := o.conflict(req, color, wine, places); fail != nil {
		return failed(fail)
	}

	if wine.GrapeVariety == "" && req.GrapeVariety != "" {
		wine.GrapeVariety = req.GrapeVariety
		if err := o.wines.Update(ctx, &wine.Wine); err != nil {
			o.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"wine_id": wine.ID}).Error("grape variety backfill failed")
			return internalFailure(err)
		}
		if o.events != nil {
			o.events.WineUpdated(ctx, wine)
		}
	}

	return Result{Success: true, Message: "wine matched", Wine: wine}
}

func (o *Orchestrator) conflict(req Request, color models.Color, wine *models.WineDetail, places *resolvedPlaces) Failure {
	if color != "" && wine.Color != color {
		return NewWineColorMismatch(color, wine.Color)
	}

	if places != nil {
		if wine.RegionID != places.region.ID {
			return NewWineRegionMismatch(places.region.Name, wine.RegionName)
		}
		if wine.AppellationID != places.appellation.ID {
			return NewWineAppellationMismatch(places.appellation.Name, wine.AppellationName)
		}
		if wine.SubAppellationID != places.subAppellation.ID {
			return NewWineSubAppellationMismatch(places.subAppellation.Name, wine.SubAppellationName)
		}
		if places.country != nil && wine.CountryID != places.country.ID {
			return NewRegionCountryMismatch(places.country.Name, wine.CountryName)
		}
		return nil
	}

	if req.Region != "" && !o.placeEqual(req.Region, wine.RegionName) {
		return NewWineRegionMismatch(req.Region, wine.RegionName)
	}
	if req.Appellation != "" && !o.placeEqual(req.Appellation, wine.AppellationName) {
		return NewWineAppellationMismatch(req.Appellation, wine.AppellationName)
	}
	if req.SubAppellation != "" && !o.placeEqual(req.SubAppellation, wine.SubAppellationName) {
		return NewWineSubAppellationMismatch(req.SubAppellation, wine.SubAppellationName)
	}
	if req.Country != "" && !o.placeEqual(req.Country, wine.CountryName) {
		return NewRegionCountryMismatch(req.Country, wine.CountryName)
	}
	return nil
}

// placeEqual treats a small misspelling of a recorded place name as
// agreement rather than a conflict.
func (o *Orchestrator) placeEqual(supplied, recorded string) bool {
	if strings.EqualFold(supplied, recorded) {
		return true
	}
	return o.scorer.NormalizedDistance(supplied, recorded) <= o.cfg.PlaceThreshold
}

func (o *Orchestrator) placeCreated(ctx context.Context, level resolver.Level, id, name string, parentID *string) {
	if o.events == nil {
		return
	}
	o.events.PlaceCreated(ctx, level, id, name, parentID)
}

func (o *Orchestrator) projectWine(ctx context.Context, wine *models.WineDetail) {
	if o.graph == nil {
		return
	}
	if err := o.graph.ProjectWine(ctx, wine); err != nil {
		o.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"wine_id": wine.ID}).Warn("graph projection failed")
	}
}
