package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/andrecf/recipebox/app/observability/metrics"
	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service combines the listing/search operations with the recipe lifecycle.
// Listing operations return the page of recipes plus the total matching
// count so pagination controls can render a page count.
type Service interface {
	ListActive(ctx context.Context, page types.Page) ([]types.Recipe, int, error)
	SearchText(ctx context.Context, query string, page types.Page) ([]types.Recipe, int, error)
	ListByCategory(ctx context.Context, category string, page types.Page) ([]types.Recipe, int, error)
	ListByOwner(ctx context.Context, owner string, active bool, page types.Page) ([]types.Recipe, int, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Recipe, error)

	// Create stamps created_at = updated_at = now, sets active=true and
	// forces the owner to the acting user's lowercase username, never the
	// submitted form value.
	Create(ctx context.Context, actingUser string, params types.RecipeParams) (uuid.UUID, error)

	// Update rewrites content fields and refreshes updated_at; owner and
	// created_at are preserved unconditionally. api.ErrNotFound when the
	// record does not exist.
	Update(ctx context.Context, actingUser string, id uuid.UUID, params types.RecipeParams) error

	// SoftDelete and Restore flip the active flag; both are idempotent.
	SoftDelete(ctx context.Context, actingUser string, id uuid.UUID) error
	Restore(ctx context.Context, actingUser string, id uuid.UUID) error

	// PermanentlyDelete removes the record; deleting a missing id is not
	// an error.
	PermanentlyDelete(ctx context.Context, actingUser string, id uuid.UUID) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository

	// ownerOnlyMutations guards Update/SoftDelete/Restore/PermanentlyDelete
	// with an owner check. The system this replaces never enforced
	// ownership on mutation; turning the flag off reproduces that.
	ownerOnlyMutations bool
}

func NewService(repo Repository, ownerOnlyMutations bool, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:             logger,
		repo:               repo,
		ownerOnlyMutations: ownerOnlyMutations,
	}
}

func (s *ServiceImpl) ListActive(ctx context.Context, page types.Page) ([]types.Recipe, int, error) {
	ctx, span := otel.Tracer("RecipeService").Start(ctx, "ListActive", trace.WithAttributes(
		attribute.Int("page.number", page.Number),
	))
	defer span.End()

	start := time.Now()
	recipes, total, err := s.repo.ListActive(ctx, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list active recipes")
		return nil, 0, fmt.Errorf("error listing recipes: %w", err)
	}
	metrics.Get().RecipeQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	return recipes, total, nil
}

func (s *ServiceImpl) SearchText(ctx context.Context, query string, page types.Page) ([]types.Recipe, int, error) {
	ctx, span := otel.Tracer("RecipeService").Start(ctx, "SearchText", trace.WithAttributes(
		attribute.String("search.query", query),
		attribute.Int("page.number", page.Number),
	))
	defer span.End()

	start := time.Now()
	recipes, total, err := s.repo.SearchText(ctx, query, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search recipes")
		return nil, 0, fmt.Errorf("error searching recipes: %w", err)
	}
	metrics.Get().RecipeQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	return recipes, total, nil
}

func (s *ServiceImpl) ListByCategory(ctx context.Context, category string, page types.Page) ([]types.Recipe, int, error) {
	recipes, total, err := s.repo.ListByCategory(ctx, category, page)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing recipes by category: %w", err)
	}
	return recipes, total, nil
}

func (s *ServiceImpl) ListByOwner(ctx context.Context, owner string, active bool, page types.Page) ([]types.Recipe, int, error) {
	recipes, total, err := s.repo.ListByOwner(ctx, strings.ToLower(owner), active, page)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing recipes by owner: %w", err)
	}
	return recipes, total, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.Recipe, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching recipe: %w", err)
	}
	return rec, nil
}

func (s *ServiceImpl) Create(ctx context.Context, actingUser string, params types.RecipeParams) (uuid.UUID, error) {
	ctx, span := otel.Tracer("RecipeService").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("recipe.owner", actingUser),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"), slog.String("owner", actingUser))

	now := time.Now()
	rec := types.Recipe{
		ID:            uuid.New(),
		Owner:         strings.ToLower(actingUser),
		Category:      params.Category,
		Name:          params.Name,
		Description:   params.Description,
		Ingredients:   params.Ingredients,
		Steps:         params.Steps,
		RequiredTools: params.RequiredTools,
		Servings:      params.Servings,
		PrepTime:      params.PrepTime,
		CookTime:      params.CookTime,
		ImageURL:      params.ImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
		Active:        true,
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create recipe")
		return uuid.Nil, fmt.Errorf("error creating recipe: %w", err)
	}

	metrics.Get().RecipesCreatedTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Recipe created", slog.String("recipe_id", rec.ID.String()))
	return rec.ID, nil
}

// checkOwnership fetches the recipe and verifies the acting user owns it.
// Only called when the policy switch is on.
func (s *ServiceImpl) checkOwnership(ctx context.Context, actingUser string, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Owner != strings.ToLower(actingUser) {
		s.logger.WarnContext(ctx, "Mutation rejected, acting user is not the owner",
			slog.String("recipe_id", id.String()),
			slog.String("owner", rec.Owner),
			slog.String("acting_user", actingUser),
		)
		return fmt.Errorf("recipe %s belongs to %s: %w", id, rec.Owner, api.ErrForbidden)
	}
	return nil
}

func (s *ServiceImpl) Update(ctx context.Context, actingUser string, id uuid.UUID, params types.RecipeParams) error {
	ctx, span := otel.Tracer("RecipeService").Start(ctx, "Update", trace.WithAttributes(
		attribute.String("recipe.id", id.String()),
	))
	defer span.End()

	if s.ownerOnlyMutations {
		if err := s.checkOwnership(ctx, actingUser, id); err != nil {
			span.RecordError(err)
			return err
		}
	}

	if err := s.repo.Update(ctx, id, params, time.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update recipe")
		return fmt.Errorf("error updating recipe: %w", err)
	}
	return nil
}

func (s *ServiceImpl) SoftDelete(ctx context.Context, actingUser string, id uuid.UUID) error {
	return s.setActive(ctx, actingUser, id, false)
}

func (s *ServiceImpl) Restore(ctx context.Context, actingUser string, id uuid.UUID) error {
	return s.setActive(ctx, actingUser, id, true)
}

func (s *ServiceImpl) setActive(ctx context.Context, actingUser string, id uuid.UUID, active bool) error {
	if s.ownerOnlyMutations {
		if err := s.checkOwnership(ctx, actingUser, id); err != nil {
			return err
		}
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("error setting recipe active flag: %w", err)
	}
	return nil
}

func (s *ServiceImpl) PermanentlyDelete(ctx context.Context, actingUser string, id uuid.UUID) error {
	ctx, span := otel.Tracer("RecipeService").Start(ctx, "PermanentlyDelete", trace.WithAttributes(
		attribute.String("recipe.id", id.String()),
	))
	defer span.End()

	if s.ownerOnlyMutations {
		err := s.checkOwnership(ctx, actingUser, id)
		// A missing record is fine here: deleting a non-existent id
		// stays idempotent even with the ownership policy on.
		if err != nil && !errors.Is(err, api.ErrNotFound) {
			span.RecordError(err)
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete recipe")
		return fmt.Errorf("error deleting recipe: %w", err)
	}
	s.logger.InfoContext(ctx, "Recipe permanently deleted", slog.String("recipe_id", id.String()))
	return nil
}
