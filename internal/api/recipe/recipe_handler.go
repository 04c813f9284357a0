package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/api/auth"
	"github.com/andrecf/recipebox/internal/api/category"
	"github.com/andrecf/recipebox/internal/types"
)

// ListResponse is the JSON page rendered by every listing endpoint.
type ListResponse struct {
	Success bool           `json:"success"`
	Header  string         `json:"header"`
	Recipes []types.Recipe `json:"recipes"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
}

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	HomePage(w http.ResponseWriter, r *http.Request)
	SearchText(w http.ResponseWriter, r *http.Request)
	ByCategory(w http.ResponseWriter, r *http.Request)
	OwnerRecipes(w http.ResponseWriter, r *http.Request)
	OwnerRemovedRecipes(w http.ResponseWriter, r *http.Request)
	ViewRecipe(w http.ResponseWriter, r *http.Request)
	GetCreateRecipe(w http.ResponseWriter, r *http.Request)
	PostCreateRecipe(w http.ResponseWriter, r *http.Request)
	GetEditRecipe(w http.ResponseWriter, r *http.Request)
	PostUpdateRecipe(w http.ResponseWriter, r *http.Request)
	RemoveRecipe(w http.ResponseWriter, r *http.Request)
	RepublishRecipe(w http.ResponseWriter, r *http.Request)
	DeleteRecipe(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	recipeService Service
	categories    category.Provider
	logger        *slog.Logger
}

func NewHandlerImpl(recipeService Service, categories category.Provider, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		recipeService: recipeService,
		categories:    categories,
		logger:        logger,
	}
}

// HomePage serves the latest active recipes, one page at a time.
func (h *HandlerImpl) HomePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "HomePage"))

	page := types.ParsePage(r.URL.Query().Get("page"))
	recipes, total, err := h.recipeService.ListActive(ctx, page)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list recipes", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list recipes")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, ListResponse{
		Success: true,
		Header:  "Check out our latest recipes",
		Recipes: recipes,
		Page:    page.Number,
		PerPage: page.Size,
		Total:   total,
	})
}

// SearchText serves the free-text search form submit.
func (h *HandlerImpl) SearchText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SearchText"))

	if err := r.ParseForm(); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	search := api.FormValue(r, "search")

	page := types.ParsePage(r.URL.Query().Get("page"))
	recipes, total, err := h.recipeService.SearchText(ctx, search, page)
	if err != nil {
		l.ErrorContext(ctx, "Recipe search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Recipe search failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, ListResponse{
		Success: true,
		Header:  fmt.Sprintf("Recipes containing %q", search),
		Recipes: recipes,
		Page:    page.Number,
		PerPage: page.Size,
		Total:   total,
	})
}

// ByCategory serves the category drop-down listing.
func (h *HandlerImpl) ByCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ByCategory"))

	cat := chi.URLParam(r, "category")
	page := types.ParsePage(r.URL.Query().Get("page"))
	recipes, total, err := h.recipeService.ListByCategory(ctx, cat, page)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list recipes by category", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list recipes")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, ListResponse{
		Success: true,
		Header:  fmt.Sprintf("All %s recipes", cat),
		Recipes: recipes,
		Page:    page.Number,
		PerPage: page.Size,
		Total:   total,
	})
}

// OwnerRecipes serves the "my recipes" view. The owner URL parameter is
// display-only: the filter always uses the session's username.
func (h *HandlerImpl) OwnerRecipes(w http.ResponseWriter, r *http.Request) {
	h.ownerListing(w, r, true)
}

// OwnerRemovedRecipes serves the owner's soft-deleted recipes.
func (h *HandlerImpl) OwnerRemovedRecipes(w http.ResponseWriter, r *http.Request) {
	h.ownerListing(w, r, false)
}

func (h *HandlerImpl) ownerListing(w http.ResponseWriter, r *http.Request, active bool) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ownerListing"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.RedirectToLogin(w, r)
		return
	}
	displayOwner := chi.URLParam(r, "owner")

	page := types.ParsePage(r.URL.Query().Get("page"))
	recipes, total, err := h.recipeService.ListByOwner(ctx, username, active, page)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list recipes by owner", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list recipes")
		return
	}

	header := fmt.Sprintf("All %s recipes", displayOwner)
	if !active {
		header = fmt.Sprintf("All %s removed recipes", displayOwner)
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ListResponse{
		Success: true,
		Header:  header,
		Recipes: recipes,
		Page:    page.Number,
		PerPage: page.Size,
		Total:   total,
	})
}

// ViewRecipe serves a single recipe.
func (h *HandlerImpl) ViewRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ViewRecipe"))

	id, err := parseRecipeID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	rec, err := h.recipeService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Recipe not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch recipe", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch recipe")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"recipe":  rec,
	})
}

// GetCreateRecipe serves the create form state: the category list for the
// drop-down.
func (h *HandlerImpl) GetCreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cats, err := h.categories.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load categories", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load categories")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"title":      "Create a Recipe",
		"header":     "Create a Recipe",
		"categories": cats,
	})
}

// PostCreateRecipe handles the create-recipe form submit and redirects to
// the owner's listing, as the original flow did.
func (h *HandlerImpl) PostCreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "PostCreateRecipe"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.RedirectToLogin(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	if _, err := h.recipeService.Create(ctx, username, recipeParamsFromForm(r)); err != nil {
		l.ErrorContext(ctx, "Failed to create recipe", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create recipe")
		return
	}

	http.Redirect(w, r, "/recipes/search/user/"+username, http.StatusSeeOther)
}

// GetEditRecipe serves the edit form state: the recipe plus the category
// list.
func (h *HandlerImpl) GetEditRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetEditRecipe"))

	id, err := parseRecipeID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	rec, err := h.recipeService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Recipe not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch recipe", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch recipe")
		return
	}

	cats, err := h.categories.List(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load categories", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load categories")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"title":      "Edit Recipe",
		"header":     "Edit Recipe",
		"recipe":     rec,
		"categories": cats,
	})
}

// PostUpdateRecipe handles the edit form submit and redirects to the recipe
// view. Owner and created_at survive regardless of submitted fields.
func (h *HandlerImpl) PostUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "PostUpdateRecipe"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.RedirectToLogin(w, r)
		return
	}

	id, err := parseRecipeID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	if err := r.ParseForm(); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}

	err = h.recipeService.Update(ctx, username, id, recipeParamsFromForm(r))
	if h.writeMutationError(w, r, l, err) {
		return
	}

	http.Redirect(w, r, "/recipes/view_recipe/"+id.String(), http.StatusSeeOther)
}

// RemoveRecipe soft-deletes: the recipe leaves public view and joins the
// owner's removed listing.
func (h *HandlerImpl) RemoveRecipe(w http.ResponseWriter, r *http.Request) {
	h.mutateAndGoHome(w, r, "RemoveRecipe", h.recipeService.SoftDelete)
}

// RepublishRecipe restores a soft-deleted recipe to public view.
func (h *HandlerImpl) RepublishRecipe(w http.ResponseWriter, r *http.Request) {
	h.mutateAndGoHome(w, r, "RepublishRecipe", h.recipeService.Restore)
}

// DeleteRecipe permanently removes the recipe.
func (h *HandlerImpl) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	h.mutateAndGoHome(w, r, "DeleteRecipe", h.recipeService.PermanentlyDelete)
}

func (h *HandlerImpl) mutateAndGoHome(w http.ResponseWriter, r *http.Request, name string,
	op func(ctx context.Context, actingUser string, id uuid.UUID) error) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", name))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.RedirectToLogin(w, r)
		return
	}

	id, err := parseRecipeID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid recipe id")
		return
	}

	if h.writeMutationError(w, r, l, op(ctx, username, id)) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// writeMutationError maps lifecycle errors to responses. Returns true when a
// response was written.
func (h *HandlerImpl) writeMutationError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, api.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, api.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, "You can only change your own recipes")
	default:
		l.ErrorContext(r.Context(), "Recipe mutation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Recipe mutation failed")
	}
	return true
}

func parseRecipeID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func recipeParamsFromForm(r *http.Request) types.RecipeParams {
	return types.RecipeParams{
		Category:      api.FormValue(r, "category"),
		Name:          api.FormValue(r, "recipe_name"),
		Description:   api.FormValue(r, "description"),
		Ingredients:   api.FormValues(r, "ingredients"),
		Steps:         api.FormValues(r, "method"),
		RequiredTools: api.FormValues(r, "tools"),
		Servings:      api.FormValue(r, "servings"),
		PrepTime:      api.FormValue(r, "preparation_time"),
		CookTime:      api.FormValue(r, "cook_time"),
		ImageURL:      api.FormValue(r, "image_url"),
	}
}
