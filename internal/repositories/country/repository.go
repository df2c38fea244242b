package country

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

// CountryRepository defines the interface for country operations
type CountryRepository interface {
	FindExact(ctx context.Context, name string, parentID *string) (*models.Country, error)
	SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]models.Country, error)
	GetOrCreate(ctx context.Context, name string, parentID *string) (*models.Country, error)
	List(ctx context.Context) ([]models.Country, error)
}

// Repository implements CountryRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new country repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "countries"

var columns = []string{"id", "name", "created_at", "updated_at"}

// FindExact finds a country by case-insensitive name. Countries have no
// parent scope; parentID is ignored.
func (r *Repository) FindExact(ctx context.Context, name string, _ *string) (*models.Country, error) {
	ctx, span := tracing.StartSpan(ctx, "CountryRepository.FindExact")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(fmt.Sprintf("lower(name) = lower(%s)", sb.Var(name)))

	query, args := sb.Build()

	var country models.Country
	err := r.db.GetContext(ctx, &country, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to find country")
		return nil, fmt.Errorf("failed to find country: %w", err)
	}

	return &country, nil
}

// SearchApproximate returns candidate countries for a noisy name, by
// substring match or trigram similarity. Ranking happens in-process; this
// only has to cast a wide enough net.
func (r *Repository) SearchApproximate(ctx context.Context, name string, _ *string, limit int) ([]models.Country, error) {
	ctx, span := tracing.StartSpan(ctx, "CountryRepository.SearchApproximate")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Or(
		fmt.Sprintf("name ILIKE %s", sb.Var("%"+name+"%")),
		fmt.Sprintf("similarity(name, %s) > 0.2", sb.Var(name)),
	))
	sb.OrderBy(fmt.Sprintf("similarity(name, %s) DESC", sb.Var(name)))
	sb.Limit(limit)

	query, args := sb.Build()

	var countries []models.Country
	err := r.db.SelectContext(ctx, &countries, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search countries")
		return nil, fmt.Errorf("failed to search countries: %w", err)
	}

	return countries, nil
}

// GetOrCreate inserts the country, returning the existing record when a
// concurrent or earlier insert already claimed the name.
func (r *Repository) GetOrCreate(ctx context.Context, name string, _ *string) (*models.Country, error) {
	ctx, span := tracing.StartSpan(ctx, "CountryRepository.GetOrCreate")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("id", "name", "created_at", "updated_at")
	ib.Values(id, name, now, now)
	ib.SQL(fmt.Sprintf("ON CONFLICT (lower(name)) DO UPDATE SET name = %s.name", tableName))
	ib.Returning(columns...)

	query, args := ib.Build()

	var country models.Country
	err := r.db.GetContext(ctx, &country, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get or create country")
		return nil, fmt.Errorf("failed to get or create country: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   country.ID,
		"name": country.Name,
	}).Debug("resolved country record")

	return &country, nil
}

// List returns all countries ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Country, error) {
	ctx, span := tracing.StartSpan(ctx, "CountryRepository.List")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.OrderBy("name ASC")

	query, args := sb.Build()

	var countries []models.Country
	err := r.db.SelectContext(ctx, &countries, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list countries")
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}

	return countries, nil
}
