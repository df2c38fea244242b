package appellation

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

// AppellationRepository defines the interface for appellation operations
type AppellationRepository interface {
	FindExact(ctx context.Context, name string, parentID *string) (*models.Appellation, error)
	SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]models.Appellation, error)
	GetOrCreate(ctx context.Context, name string, parentID *string) (*models.Appellation, error)
	ListByRegion(ctx context.Context, regionID string) ([]models.Appellation, error)
}

// Repository implements AppellationRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new appellation repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "appellations"

var columns = []string{"id", "name", "region_id", "created_at", "updated_at"}

// FindExact finds an appellation by case-insensitive name within a region.
func (r *Repository) FindExact(ctx context.Context, name string, parentID *string) (*models.Appellation, error) {
	ctx, span := tracing.StartSpan(ctx, "AppellationRepository.FindExact")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(fmt.Sprintf("lower(name) = lower(%s)", sb.Var(name)))
	if parentID != nil {
		sb.Where(sb.Equal("region_id", *parentID))
	}
	sb.Limit(1)

	query, args := sb.Build()

	var appellation models.Appellation
	err := r.db.GetContext(ctx, &appellation, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to find appellation")
		return nil, fmt.Errorf("failed to find appellation: %w", err)
	}

	return &appellation, nil
}

// SearchApproximate returns candidate appellations for a noisy name, scoped
// to a region when one is known.
func (r *Repository) SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]models.Appellation, error) {
	ctx, span := tracing.StartSpan(ctx, "AppellationRepository.SearchApproximate")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Or(
		fmt.Sprintf("name ILIKE %s", sb.Var("%"+name+"%")),
		fmt.Sprintf("similarity(name, %s) > 0.2", sb.Var(name)),
	))
	if parentID != nil {
		sb.Where(sb.Equal("region_id", *parentID))
	}
	sb.OrderBy(fmt.Sprintf("similarity(name, %s) DESC", sb.Var(name)))
	sb.Limit(limit)

	query, args := sb.Build()

	var appellations []models.Appellation
	err := r.db.SelectContext(ctx, &appellations, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search appellations")
		return nil, fmt.Errorf("failed to search appellations: %w", err)
	}

	return appellations, nil
}

// GetOrCreate inserts the appellation under its region, returning the
// existing record when the name is already taken within that region.
func (r *Repository) GetOrCreate(ctx context.Context, name string, parentID *string) (*models.Appellation, error) {
	ctx, span := tracing.StartSpan(ctx, "AppellationRepository.GetOrCreate")
	defer span.End()

	if parentID == nil {
		return nil, fmt.Errorf("cannot create appellation %q without a region", name)
	}

	now := time.Now()
	id := uuid.New().String()

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("id", "name", "region_id", "created_at", "updated_at")
	ib.Values(id, name, *parentID, now, now)
	ib.SQL(fmt.Sprintf("ON CONFLICT (region_id, lower(name)) DO UPDATE SET name = %s.name", tableName))
	ib.Returning(columns...)

	query, args := ib.Build()

	var appellation models.Appellation
	err := r.db.GetContext(ctx, &appellation, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get or create appellation")
		return nil, fmt.Errorf("failed to get or create appellation: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        appellation.ID,
		"name":      appellation.Name,
		"region_id": appellation.RegionID,
	}).Debug("resolved appellation record")

	return &appellation, nil
}

// ListByRegion returns a region's appellations ordered by name.
func (r *Repository) ListByRegion(ctx context.Context, regionID string) ([]models.Appellation, error) {
	ctx, span := tracing.StartSpan(ctx, "AppellationRepository.ListByRegion")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("region_id", regionID))
	sb.OrderBy("name ASC")

	query, args := sb.Build()

	var appellations []models.Appellation
	err := r.db.SelectContext(ctx, &appellations, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list appellations")
		return nil, fmt.Errorf("failed to list appellations: %w", err)
	}

	return appellations, nil
}
