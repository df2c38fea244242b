package subappellation

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

// SubAppellationRepository defines the interface for sub-appellation
// operations. The blank-named row under each appellation is the sentinel
// that wines without a sub-appellation attach to; it is created through the
// same GetOrCreate path as any other name.
type SubAppellationRepository interface {
	FindExact(ctx context.Context, name string, parentID *string) (*models.SubAppellation, error)
	SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]models.SubAppellation, error)
	GetOrCreate(ctx context.Context, name string, parentID *string) (*models.SubAppellation, error)
	ListByAppellation(ctx context.Context, appellationID string) ([]models.SubAppellation, error)
}

// Repository implements SubAppellationRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new sub-appellation repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "sub_appellations"

var columns = []string{"id", "name", "appellation_id", "created_at", "updated_at"}

// FindExact finds a sub-appellation by case-insensitive name within an
// appellation. A blank name finds the appellation's sentinel row.
func (r *Repository) FindExact(ctx context.Context, name string, parentID *string) (*models.SubAppellation, error) {
	ctx, span := tracing.StartSpan(ctx, "SubAppellationRepository.FindExact")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(fmt.Sprintf("lower(name) = lower(%s)", sb.Var(name)))
	if parentID != nil {
		sb.Where(sb.Equal("appellation_id", *parentID))
	}
	sb.Limit(1)

	query, args := sb.Build()

	var subAppellation models.SubAppellation
	err := r.db.GetContext(ctx, &subAppellation, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to find sub-appellation")
		return nil, fmt.Errorf("failed to find sub-appellation: %w", err)
	}

	return &subAppellation, nil
}

// SearchApproximate returns candidate sub-appellations for a noisy name,
// scoped to an appellation when one is known. Sentinel rows never match a
// non-blank query.
func (r *Repository) SearchApproximate(ctx context.Context, name string, parentID *string, limit int) ([]models.SubAppellation, error) {
	ctx, span := tracing.StartSpan(ctx, "SubAppellationRepository.SearchApproximate")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Or(
		fmt.Sprintf("name ILIKE %s", sb.Var("%"+name+"%")),
		fmt.Sprintf("similarity(name, %s) > 0.2", sb.Var(name)),
	))
	if parentID != nil {
		sb.Where(sb.Equal("appellation_id", *parentID))
	}
	sb.OrderBy(fmt.Sprintf("similarity(name, %s) DESC", sb.Var(name)))
	sb.Limit(limit)

	query, args := sb.Build()

	var subAppellations []models.SubAppellation
	err := r.db.SelectContext(ctx, &subAppellations, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to search sub-appellations")
		return nil, fmt.Errorf("failed to search sub-appellations: %w", err)
	}

	return subAppellations, nil
}

// GetOrCreate inserts the sub-appellation under its appellation, returning
// the existing record when the name is already taken within that
// appellation. A blank name resolves the sentinel row, creating it on first
// use.
func (r *Repository) GetOrCreate(ctx context.Context, name string, parentID *string) (*models.SubAppellation, error) {
	ctx, span := tracing.StartSpan(ctx, "SubAppellationRepository.GetOrCreate")
	defer span.End()

	if parentID == nil {
		return nil, fmt.Errorf("cannot create sub-appellation %q without an appellation", name)
	}

	now := time.Now()
	id := uuid.New().String()

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName)
	ib.Cols("id", "name", "appellation_id", "created_at", "updated_at")
	ib.Values(id, name, *parentID, now, now)
	ib.SQL(fmt.Sprintf("ON CONFLICT (appellation_id, lower(name)) DO UPDATE SET name = %s.name", tableName))
	ib.Returning(columns...)

	query, args := ib.Build()

	var subAppellation models.SubAppellation
	err := r.db.GetContext(ctx, &subAppellation, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get or create sub-appellation")
		return nil, fmt.Errorf("failed to get or create sub-appellation: %w", err)
	}

	return &subAppellation, nil
}

// ListByAppellation returns an appellation's sub-appellations ordered by
// name, sentinel first.
func (r *Repository) ListByAppellation(ctx context.Context, appellationID string) ([]models.SubAppellation, error) {
	ctx, span := tracing.StartSpan(ctx, "SubAppellationRepository.ListByAppellation")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("appellation_id", appellationID))
	sb.OrderBy("name ASC")

	query, args := sb.Build()

	var subAppellations []models.SubAppellation
	err := r.db.SelectContext(ctx, &subAppellations, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list sub-appellations")
		return nil, fmt.Errorf("failed to list sub-appellations: %w", err)
	}

	return subAppellations, nil
}
