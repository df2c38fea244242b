package resolver

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/vine/pkg/matching"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// WineStore is the persistence capability of the wine resolver. Closest-match
// search is unscoped by hierarchy; the acceptance rules below re-impose the
// hierarchy constraints.
type WineStore interface {
	FindByNameAndContext(ctx context.Context, name, subAppellationName, appellationName string) (*models.WineDetail, error)
	FindClosestMatches(ctx context.Context, name string, limit int) ([]models.WineDetail, error)
	GetOrCreate(ctx context.Context, req models.CreateWineRequest) (*models.WineDetail, error)
	Update(ctx context.Context, wine *models.Wine) error
}

// WineTarget is the hierarchy context a wine is being resolved against.
// SubAppellationID may be empty when the hierarchy has not been resolved yet
// (the exact-probe path); the id-based acceptance rule is skipped then.
type WineTarget struct {
	SubAppellationID   string
	SubAppellationName string
	AppellationName    string
}

// WineResolution is the outcome of resolving one wine.
type WineResolution struct {
	State       State
	Wine        *models.WineDetail
	Suggestions []string
}

// WineConfig carries the wine resolver tunables. Threshold applies to wine
// names (tighter than places, small edits change meaning); PlaceThreshold is
// reused for comparing candidate sub-appellation names.
type WineConfig struct {
	Threshold      float64
	PlaceThreshold float64
	SearchLimit    int
}

// WineAPI is the wine resolution surface the intake flows depend on.
type WineAPI interface {
	Resolve(ctx context.Context, name string, target WineTarget) (WineResolution, error)
	GetOrCreate(ctx context.Context, req models.CreateWineRequest) (*models.WineDetail, error)
	Update(ctx context.Context, wine *models.Wine) error
}

// WineResolver resolves wines by name plus appellation/sub-appellation
// context.
type WineResolver struct {
	logger ectologger.Logger
	store  WineStore
	scorer *matching.Scorer
	cfg    WineConfig
}

// NewWineResolver creates a wine resolver.
func NewWineResolver(logger ectologger.Logger, store WineStore, cfg WineConfig) *WineResolver {
	return &WineResolver{
		logger: logger,
		store:  store,
		scorer: matching.NewScorer(),
		cfg:    cfg,
	}
}

// Resolve finds an existing wine for name within the target context.
// It tries an exact (name, sub-appellation, appellation) lookup first, then
// walks the ranked closest-name candidates and accepts the first one whose
// hierarchy is compatible with the target.
func (r *WineResolver) Resolve(ctx context.Context, name string, target WineTarget) (WineResolution, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.WineResolver.Resolve")
	defer span.End()

	name = strings.TrimSpace(name)

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"wine":        name,
		"appellation": target.AppellationName,
	})

	exact, err := r.store.FindByNameAndContext(ctx, name, target.SubAppellationName, target.AppellationName)
	if err != nil {
		log.WithError(err).Error("exact wine lookup failed")
		return WineResolution{State: StateFailed}, err
	}
	if exact != nil {
		return WineResolution{State: StateFoundExact, Wine: exact}, nil
	}

	candidates, err := r.store.FindClosestMatches(ctx, name, r.cfg.SearchLimit)
	if err != nil {
		log.WithError(err).Error("closest-match wine search failed")
		return WineResolution{State: StateFailed}, err
	}

	ranked := matching.RankCandidates(r.scorer, candidates, name, wineName, r.cfg.SearchLimit, r.cfg.Threshold)
	for i := range ranked {
		if r.accepts(&ranked[i], target) {
			log.WithFields(map[string]any{"matched": ranked[i].Name}).Debug("resolved approximate wine match")
			return WineResolution{State: StateFoundApproximate, Wine: &ranked[i]}, nil
		}
	}

	nearby := matching.RankCandidates(r.scorer, candidates, name, wineName, r.cfg.SearchLimit, 1.0)
	suggestions := make([]string, 0, len(nearby))
	for _, c := range nearby {
		suggestions = append(suggestions, c.Name)
	}

	return WineResolution{State: StateNotFound, Suggestions: suggestions}, nil
}

// accepts applies the hierarchy acceptance rules to one ranked candidate:
// same sub-appellation id, or same appellation with both sub-appellation
// names blank, or same appellation with both sub-appellation names non-blank
// and close enough under the place threshold.
func (r *WineResolver) accepts(candidate *models.WineDetail, target WineTarget) bool {
	if target.SubAppellationID != "" && candidate.SubAppellationID == target.SubAppellationID {
		return true
	}

	if !strings.EqualFold(candidate.AppellationName, target.AppellationName) {
		return false
	}

	candidateBlank := strings.TrimSpace(candidate.SubAppellationName) == ""
	targetBlank := strings.TrimSpace(target.SubAppellationName) == ""

	if candidateBlank && targetBlank {
		return true
	}
	if candidateBlank || targetBlank {
		return false
	}

	return r.scorer.NormalizedDistance(candidate.SubAppellationName, target.SubAppellationName) <= r.cfg.PlaceThreshold
}

// GetOrCreate creates (or finds, under a concurrent create) the wine.
func (r *WineResolver) GetOrCreate(ctx context.Context, req models.CreateWineRequest) (*models.WineDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.WineResolver.GetOrCreate")
	defer span.End()

	wine, err := r.store.GetOrCreate(ctx, req)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"wine": req.Name}).Error("wine get-or-create failed")
		return nil, err
	}
	return wine, nil
}

// Update persists attribute changes to an existing wine. The intake flows
// only call this for permitted mutations (grape-variety backfill, batch
// color/sub-appellation supersede).
func (r *WineResolver) Update(ctx context.Context, wine *models.Wine) error {
	ctx, span := tracing.StartSpan(ctx, "resolver.WineResolver.Update")
	defer span.End()

	return r.store.Update(ctx, wine)
}

func wineName(w models.WineDetail) string {
	return w.Name
}
