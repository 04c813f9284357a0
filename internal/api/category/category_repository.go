package category

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gocache "github.com/patrickmn/go-cache"

	"github.com/andrecf/recipebox/app/observability/metrics"
	"github.com/andrecf/recipebox/internal/types"
)

// DB is the slice of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Provider is the read-only reference-data source for recipe categories,
// passed explicitly to whatever composes a view that needs them. It replaces
// the legacy pattern of fetching the category collection on every request.
type Provider interface {
	List(ctx context.Context) ([]types.Category, error)
}

var _ Provider = (*RepositoryImpl)(nil)

const cacheKey = "categories"

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
	cache  *gocache.Cache
}

// NewRepository builds the provider with a TTL cache in front of the
// categories table. Categories change rarely, so a short TTL is plenty.
func NewRepository(db DB, ttl time.Duration, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

func (r *RepositoryImpl) List(ctx context.Context) ([]types.Category, error) {
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.([]types.Category), nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to query categories", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []types.Category
	for rows.Next() {
		var c types.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan category row", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating category rows", slog.Any("error", err))
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	r.cache.SetDefault(cacheKey, categories)
	return categories, nil
}
