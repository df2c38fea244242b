// Package resolver implements entity resolution against the canonical
// taxonomy. One generic resolver handles every place level (country, region,
// appellation, sub-appellation) through a narrow store capability; a wine
// specialization layers hierarchy-aware acceptance rules on top. Candidate
// sets are always scope-limited; there is no global fuzzy search.
package resolver

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/vine/pkg/matching"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Level identifies one level of the taxonomy.
type Level string

const (
	LevelCountry        Level = "country"
	LevelRegion         Level = "region"
	LevelAppellation    Level = "appellation"
	LevelSubAppellation Level = "sub_appellation"
	LevelWine           Level = "wine"
)

// State is the terminal state of one resolution step.
type State string

const (
	StateNotStarted       State = "not_started"
	StateFoundExact       State = "found_exact"
	StateFoundApproximate State = "found_approximate"
	StateNotFound         State = "not_found"
	StateCreated          State = "created"
	StateFailed           State = "failed"
)

// Found reports whether the state refers to an entity that already existed
// before this resolution.
func (s State) Found() bool {
	return s == StateFoundExact || s == StateFoundApproximate
}

// Named is implemented by every taxonomy model.
type Named interface {
	EntityID() string
	EntityName() string
}

// Store is the persistence capability the resolver needs for one place
// level. SearchApproximate returns candidates already scoped to the parent;
// re-ranking them is the resolver's job. GetOrCreate must be an idempotent
// upsert: resolution takes no locks across the resolve-then-create gap, so
// concurrent creators are deduplicated by the store's unique constraints.
type Store[T Named] interface {
	FindExact(ctx context.Context, name string, parentID *string) (*T, error)
	SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]T, error)
	GetOrCreate(ctx context.Context, name string, parentID *string) (*T, error)
}

// Resolution is the outcome of resolving one name at one level.
type Resolution[T Named] struct {
	State       State
	Entity      *T
	Suggestions []string // nearby candidate names, populated when NotFound
}

// Config carries the resolution tunables. Threshold is the maximum
// normalized edit distance accepted for an approximate match; SearchLimit
// caps the candidate set requested from the store.
type Config struct {
	Threshold   float64
	SearchLimit int
}

// API is the resolution surface the intake flows depend on. It is satisfied
// by Resolver and by the batch-cache decorator.
type API[T Named] interface {
	Level() Level
	Resolve(ctx context.Context, name string, parentID *string) (Resolution[T], error)
	GetOrCreate(ctx context.Context, name string, parentID *string) (*T, error)
}

// Resolver resolves names at a single place level.
type Resolver[T Named] struct {
	logger ectologger.Logger
	store  Store[T]
	scorer *matching.Scorer
	level  Level
	cfg    Config
}

// New creates a resolver for one place level.
func New[T Named](logger ectologger.Logger, store Store[T], level Level, cfg Config) *Resolver[T] {
	return &Resolver[T]{
		logger: logger,
		store:  store,
		scorer: matching.NewScorer(),
		level:  level,
		cfg:    cfg,
	}
}

// Level returns the taxonomy level this resolver serves.
func (r *Resolver[T]) Level() Level {
	return r.level
}

// Resolve finds an existing record for name within the given parent scope.
// Exact case-insensitive matches win; otherwise scoped approximate
// candidates are re-ranked against the configured threshold. A blank name
// never triggers fuzzy search: it either finds the sentinel record (the
// blank sub-appellation) exactly or reports NotFound for the caller to
// create. Creation is always the caller's decision.
func (r *Resolver[T]) Resolve(ctx context.Context, name string, parentID *string) (Resolution[T], error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Resolve")
	defer span.End()

	name = strings.TrimSpace(name)

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"level": string(r.level),
		"name":  name,
	})

	exact, err := r.store.FindExact(ctx, name, parentID)
	if err != nil {
		log.WithError(err).Error("exact lookup failed")
		return Resolution[T]{State: StateFailed}, err
	}
	if exact != nil {
		return Resolution[T]{State: StateFoundExact, Entity: exact}, nil
	}

	if name == "" {
		// Sentinel path: no name to fuzzy-match against.
		return Resolution[T]{State: StateNotFound}, nil
	}

	candidates, err := r.store.SearchApproximate(ctx, name, parentID, r.cfg.SearchLimit)
	if err != nil {
		log.WithError(err).Error("approximate search failed")
		return Resolution[T]{State: StateFailed}, err
	}

	ranked := matching.RankCandidates(r.scorer, candidates, name, nameOf[T], r.cfg.SearchLimit, r.cfg.Threshold)
	if len(ranked) > 0 {
		best := ranked[0]
		log.WithFields(map[string]any{
			"matched":  best.EntityName(),
			"distance": r.scorer.NormalizedDistance(name, best.EntityName()),
		}).Debug("resolved approximate match")
		return Resolution[T]{State: StateFoundApproximate, Entity: &best}, nil
	}

	// Nothing close enough; surface whatever the store returned as
	// disambiguation suggestions.
	nearby := matching.RankCandidates(r.scorer, candidates, name, nameOf[T], r.cfg.SearchLimit, 1.0)
	suggestions := make([]string, 0, len(nearby))
	for _, c := range nearby {
		suggestions = append(suggestions, c.EntityName())
	}

	return Resolution[T]{State: StateNotFound, Suggestions: suggestions}, nil
}

// GetOrCreate creates (or finds, under a concurrent create) the record for
// name within the parent scope.
func (r *Resolver[T]) GetOrCreate(ctx context.Context, name string, parentID *string) (*T, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.GetOrCreate")
	defer span.End()

	entity, err := r.store.GetOrCreate(ctx, strings.TrimSpace(name), parentID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"level": string(r.level),
			"name":  name,
		}).Error("get-or-create failed")
		return nil, err
	}
	return entity, nil
}

func nameOf[T Named](t T) string {
	return t.EntityName()
}
