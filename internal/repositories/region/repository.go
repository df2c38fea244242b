package region

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

// RegionRepository defines the interface for region operations
type RegionRepository interface {
	FindExact(ctx context.Context, name string, parentID *string) (*models.Region, error)
	SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]models.Region, error)
	GetOrCreate(ctx context.Context, name string, parentID *string) (*models.Region, error)
	ListByCountry(ctx context.Context, countryID string) ([]models.Region, error)
}

// Repository implements RegionRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new region repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "regions"

var columns = []string{"id", "name", "country_id", "created_at", "updated_at"}

// FindExact finds a region by case-insensitive name. A nil parentID widens
// the lookup to all countries, for records that name a region without its
// country.
func (r *Repository) FindExact(ctx context.Context, name string, parentID *string) (*models.Region, error) {
	ctx, span := tracing.StartSpan(ctx, "RegionRepository.FindExact")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(fmt.Sprintf("lower(name) = lower(%s)", sb.Var(name)))
	if parentID != nil {
		sb.Where(sb.Equal("country_id", *parentID))
	}
	sb.Limit(1)

	query, args := sb.Build()

	var region models.Region
	err := r.db.GetContext(ctx, &region, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to find region")
		return nil, fmt.Errorf("failed to find region: %w", err)
	}

	return &region, nil
}

// SearchApproximate returns candidate regions for a noisy name, scoped to a
// country when one is known.
func (r *Repository) SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]models.Region, error) {
	ctx, span := tracing.StartSpan(ctx, "RegionRepository.SearchApproximate")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Or(
		fmt.Sprintf("name ILIKE %s", sb.Var("%"+name+"%")),
		fmt.Sprintf("similarity(name, %s) > 0.2", sb.Var(name)),
	))
	if parentID != nil {
		sb.Where(sb.Equal("country_id", *parentID))
	}
	sb.OrderBy(fmt.Sprintf("similarity(name, %s) DESC", sb.Var(name)))
	sb.Limit(limit)

	query, args := sb.Build()

	var regions []models.Region
	err := r.db.SelectContext(ctx, &regions, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search regions")
		return nil, fmt.Errorf("failed to search regions: %w", err)
	}

	return regions, nil
}

// GetOrCreate inserts the region under its country, returning the existing
// record when the name is already taken within that country.
func (r *Repository) GetOrCreate(ctx context.Context, name string, parentID *string) (*models.Region, error) {
	ctx, span := tracing.StartSpan(ctx, "RegionRepository.GetOrCreate")
	defer span.End()

	if parentID == nil {
		return nil, fmt.Errorf("cannot create region %q without a country", name)
	}

	now := time.Now()
	id := uuid.New().String()

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("id", "name", "country_id", "created_at", "updated_at")
	ib.Values(id, name, *parentID, now, now)
	ib.SQL(fmt.Sprintf("ON CONFLICT (country_id, lower(name)) DO UPDATE SET name = %s.name", tableName))
	ib.Returning(columns...)

	query, args := ib.Build()

	var region models.Region
	err := r.db.GetContext(ctx, &region, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get or create region")
		return nil, fmt.Errorf("failed to get or create region: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         region.ID,
		"name":       region.Name,
		"country_id": region.CountryID,
	}).Debug("resolved region record")

	return &region, nil
}

// ListByCountry returns a country's regions ordered by name.
func (r *Repository) ListByCountry(ctx context.Context, countryID string) ([]models.Region, error) {
	ctx, span := tracing.StartSpan(ctx, "RegionRepository.ListByCountry")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("country_id", countryID))
	sb.OrderBy("name ASC")

	query, args := sb.Build()

	var regions []models.Region
	err := r.db.SelectContext(ctx, &regions, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list regions")
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	return regions, nil
}
