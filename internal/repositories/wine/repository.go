package wine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// WineRepository defines the interface for wine operations
type WineRepository interface {
	FindByNameAndContext(ctx context.Context, name, subAppellationName, appellationName string) (*models.WineDetail, error)
	FindClosestMatches(ctx context.Context, name string, limit int) ([]models.WineDetail, error)
	GetOrCreate(ctx context.Context, req models.CreateWineRequest) (*models.WineDetail, error)
	Update(ctx context.Context, wine *models.Wine) error
	GetByID(ctx context.Context, id string) (*models.WineDetail, error)
}

// Repository implements WineRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new wine repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "wines"

// detailColumns are the wine columns joined to the full recorded hierarchy.
var detailColumns = []string{
	"w.id", "w.name", "w.color", "w.grape_variety", "w.sub_appellation_id",
	"w.created_at", "w.updated_at",
	"s.name AS sub_appellation_name",
	"a.id AS appellation_id", "a.name AS appellation_name",
	"r.id AS region_id", "r.name AS region_name",
	"c.id AS country_id", "c.name AS country_name",
}

func detailSelect() *database.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select(detailColumns...)
	sb.From(tableName + " w")
	sb.Join("sub_appellations s", "s.id = w.sub_appellation_id")
	sb.Join("appellations a", "a.id = s.appellation_id")
	sb.Join("regions r", "r.id = a.region_id")
	sb.Join("countries c", "c.id = r.country_id")
	return sb
}

// FindByNameAndContext finds a wine by case-insensitive name within the
// named appellation and sub-appellation. A blank appellation widens the
// lookup to any context, for records that name a wine without its
// hierarchy; a blank sub-appellation under a named appellation matches the
// sentinel row.
func (r *Repository) FindByNameAndContext(ctx context.Context, name, subAppellationName, appellationName string) (*models.WineDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "WineRepository.FindByNameAndContext")
	defer span.End()

	sb := detailSelect()
	sb.Where(fmt.Sprintf("lower(w.name) = lower(%s)", sb.Var(name)))
	if appellationName != "" {
		sb.Where(fmt.Sprintf("lower(a.name) = lower(%s)", sb.Var(appellationName)))
		sb.Where(fmt.Sprintf("lower(s.name) = lower(%s)", sb.Var(subAppellationName)))
	}
	sb.Limit(1)

	query, args := sb.Build()

	var detail models.WineDetail
	err := r.db.GetContext(ctx, &detail, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to find wine")
		return nil, fmt.Errorf("failed to find wine: %w", err)
	}

	return &detail, nil
}

// FindClosestMatches returns candidate wines for a noisy name across the
// whole catalog, by substring match or trigram similarity. The resolver
// re-ranks and applies the hierarchy acceptance rules.
func (r *Repository) FindClosestMatches(ctx context.Context, name string, limit int) ([]models.WineDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "WineRepository.FindClosestMatches")
	defer span.End()

	sb := detailSelect()
	sb.Where(sb.Or(
		fmt.Sprintf("w.name ILIKE %s", sb.Var("%"+name+"%")),
		fmt.Sprintf("similarity(w.name, %s) > 0.2", sb.Var(name)),
	))
	sb.OrderBy(fmt.Sprintf("similarity(w.name, %s) DESC", sb.Var(name)))
	sb.Limit(limit)

	query, args := sb.Build()

	var details []models.WineDetail
	err := r.db.SelectContext(ctx, &details, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search wines")
		return nil, fmt.Errorf("failed to search wines: %w", err)
	}

	return details, nil
}

// GetOrCreate inserts the wine under its sub-appellation, returning the
// existing record when the name is already taken in that scope. The
// existing record's attributes win; richer input updates it through Update.
func (r *Repository) GetOrCreate(ctx context.Context, req models.CreateWineRequest) (*models.WineDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "WineRepository.GetOrCreate")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("id", "name", "color", "grape_variety", "sub_appellation_id", "created_at", "updated_at")
	ib.Values(id, req.Name, req.Color, req.GrapeVariety, req.SubAppellationID, now, now)
	ib.SQL(fmt.Sprintf("ON CONFLICT (sub_appellation_id, lower(name)) DO UPDATE SET name = %s.name", tableName))
	ib.Returning("id")

	query, args := ib.Build()

	var wineID string
	err := r.db.GetContext(ctx, &wineID, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get or create wine")
		return nil, fmt.Errorf("failed to get or create wine: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   wineID,
		"name": req.Name,
	}).Info("resolved wine record")

	return r.GetByID(ctx, wineID)
}

// Update persists a wine's mutable attributes.
func (r *Repository) Update(ctx context.Context, wine *models.Wine) error {
	ctx, span := tracing.StartSpan(ctx, "WineRepository.Update")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(
		ub.Assign("color", wine.Color),
		ub.Assign("grape_variety", wine.GrapeVariety),
		ub.Assign("sub_appellation_id", wine.SubAppellationID),
		ub.Assign("updated_at", time.Now()),
	)
	ub.Where(ub.Equal("id", wine.ID))

	query, args := ub.Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update wine")
		return fmt.Errorf("failed to update wine: %w", err)
	}

	return nil
}

// GetByID returns one wine with its full recorded hierarchy.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.WineDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "WineRepository.GetByID")
	defer span.End()

	sb := detailSelect()
	sb.Where(sb.Equal("w.id", id))

	query, args := sb.Build()

	var detail models.WineDetail
	err := r.db.GetContext(ctx, &detail, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get wine")
		return nil, fmt.Errorf("failed to get wine: %w", err)
	}

	return &detail, nil
}
