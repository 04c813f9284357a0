package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andrecf/recipebox/app/observability/metrics"
	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/types"
)

// DB is the slice of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the recipe store: filtered finds with sort/skip/limit plus a
// matching count, and the single-document writes the lifecycle needs.
type Repository interface {
	ListActive(ctx context.Context, page types.Page) ([]types.Recipe, int, error)
	SearchText(ctx context.Context, query string, page types.Page) ([]types.Recipe, int, error)
	ListByCategory(ctx context.Context, category string, page types.Page) ([]types.Recipe, int, error)
	ListByOwner(ctx context.Context, owner string, active bool, page types.Page) ([]types.Recipe, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Recipe, error)
	Insert(ctx context.Context, recipe types.Recipe) error
	Update(ctx context.Context, id uuid.UUID, params types.RecipeParams, updatedAt time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

const recipeColumns = `id, owner, category, name, description, ingredients, steps, required_tools,
               servings, prep_time, cook_time, image_url, created_at, updated_at, active`

func scanRecipe(row pgx.Row, rec *types.Recipe) error {
	return row.Scan(
		&rec.ID, &rec.Owner, &rec.Category, &rec.Name, &rec.Description,
		&rec.Ingredients, &rec.Steps, &rec.RequiredTools,
		&rec.Servings, &rec.PrepTime, &rec.CookTime, &rec.ImageURL,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.Active,
	)
}

func (r *RepositoryImpl) collectRecipes(ctx context.Context, query string, args ...any) ([]types.Recipe, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to query recipes", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []types.Recipe
	for rows.Next() {
		var rec types.Recipe
		if err := scanRecipe(rows, &rec); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan recipe row", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating recipe rows", slog.Any("error", err))
		return nil, fmt.Errorf("error iterating recipe rows: %w", err)
	}
	return recipes, nil
}

func (r *RepositoryImpl) count(ctx context.Context, query string, args ...any) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		r.logger.ErrorContext(ctx, "Failed to count recipes", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return total, nil
}

// ListActive returns one page of active recipes, newest edits first, plus
// the total number of active recipes for pagination controls.
func (r *RepositoryImpl) ListActive(ctx context.Context, page types.Page) ([]types.Recipe, int, error) {
	query := `
        SELECT ` + recipeColumns + `
        FROM recipes
        WHERE active
        ORDER BY updated_at DESC
        LIMIT $1 OFFSET $2
    `
	recipes, err := r.collectRecipes(ctx, query, page.Size, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, `SELECT COUNT(*) FROM recipes WHERE active`)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// SearchText runs a full-text match over name/description/ingredients of
// active recipes. Ordering is relevance-defined by the store.
func (r *RepositoryImpl) SearchText(ctx context.Context, query string, page types.Page) ([]types.Recipe, int, error) {
	listQuery := `
        SELECT ` + recipeColumns + `
        FROM recipes
        WHERE active AND search_vector @@ plainto_tsquery('english', $1)
        ORDER BY ts_rank(search_vector, plainto_tsquery('english', $1)) DESC
        LIMIT $2 OFFSET $3
    `
	recipes, err := r.collectRecipes(ctx, listQuery, query, page.Size, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx,
		`SELECT COUNT(*) FROM recipes WHERE active AND search_vector @@ plainto_tsquery('english', $1)`,
		query)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByCategory returns one page of active recipes in a category.
func (r *RepositoryImpl) ListByCategory(ctx context.Context, category string, page types.Page) ([]types.Recipe, int, error) {
	query := `
        SELECT ` + recipeColumns + `
        FROM recipes
        WHERE active AND category = $1
        ORDER BY updated_at DESC
        LIMIT $2 OFFSET $3
    `
	recipes, err := r.collectRecipes(ctx, query, category, page.Size, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx,
		`SELECT COUNT(*) FROM recipes WHERE active AND category = $1`, category)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListByOwner returns one page of an owner's recipes with the given active
// flag; active=false is the owner's "removed recipes" view.
func (r *RepositoryImpl) ListByOwner(ctx context.Context, owner string, active bool, page types.Page) ([]types.Recipe, int, error) {
	query := `
        SELECT ` + recipeColumns + `
        FROM recipes
        WHERE owner = $1 AND active = $2
        ORDER BY updated_at DESC
        LIMIT $3 OFFSET $4
    `
	recipes, err := r.collectRecipes(ctx, query, owner, active, page.Size, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx,
		`SELECT COUNT(*) FROM recipes WHERE owner = $1 AND active = $2`, owner, active)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Recipe, error) {
	query := `
        SELECT ` + recipeColumns + `
        FROM recipes
        WHERE id = $1
    `
	var rec types.Recipe
	err := scanRecipe(r.db.QueryRow(ctx, query, id), &rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recipe %s: %w", id, api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get recipe", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &rec, nil
}

func (r *RepositoryImpl) Insert(ctx context.Context, recipe types.Recipe) error {
	query := `
        INSERT INTO recipes (
            id, owner, category, name, description, ingredients, steps, required_tools,
            servings, prep_time, cook_time, image_url, created_at, updated_at, active
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
        )
    `
	_, err := r.db.Exec(ctx, query,
		recipe.ID, recipe.Owner, recipe.Category, recipe.Name, recipe.Description,
		recipe.Ingredients, recipe.Steps, recipe.RequiredTools,
		recipe.Servings, recipe.PrepTime, recipe.CookTime, recipe.ImageURL,
		recipe.CreatedAt, recipe.UpdatedAt, recipe.Active,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert recipe", slog.Any("error", err))
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	return nil
}

// Update rewrites the user-editable fields and refreshes updated_at. Owner
// and created_at are deliberately absent from the statement, so they survive
// whatever the caller submits.
func (r *RepositoryImpl) Update(ctx context.Context, id uuid.UUID, params types.RecipeParams, updatedAt time.Time) error {
	query := `
        UPDATE recipes SET
            category = $1, name = $2, description = $3, ingredients = $4, steps = $5,
            required_tools = $6, servings = $7, prep_time = $8, cook_time = $9,
            image_url = $10, updated_at = $11
        WHERE id = $12
    `
	tag, err := r.db.Exec(ctx, query,
		params.Category, params.Name, params.Description, params.Ingredients, params.Steps,
		params.RequiredTools, params.Servings, params.PrepTime, params.CookTime,
		params.ImageURL, updatedAt, id,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update recipe", slog.Any("error", err))
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recipe %s: %w", id, api.ErrNotFound)
	}
	return nil
}

// SetActive flips the soft-delete flag. Idempotent: re-flipping an already
// flipped recipe, or flipping a missing id, is not an error.
func (r *RepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.db.Exec(ctx, `UPDATE recipes SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to set recipe active flag", slog.Any("error", err))
		return fmt.Errorf("failed to set recipe active flag: %w", err)
	}
	return nil
}

// Delete permanently removes the recipe. Deleting a missing id is a no-op.
func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete recipe", slog.Any("error", err))
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}
