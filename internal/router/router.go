package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/api/auth"
	"github.com/andrecf/recipebox/internal/api/category"
	"github.com/andrecf/recipebox/internal/api/recipe"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.HandlerImpl
	RecipeHandler          *recipe.HandlerImpl
	CategoryHandler        *category.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires the route table. Server-wide middleware (request ID,
// logger, recoverer) is applied before mounting this router in main.go.
// AuthenticateMiddleware resolves the session for every route; auth.RequireUser
// additionally gates the authoring routes.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(cfg.AuthenticateMiddleware)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// Static kitchen-tools page from the legacy site.
	r.Get("/tools", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
			"title":  "Tools",
			"header": "Tools",
		})
	})

	// Public listings
	r.Get("/", cfg.RecipeHandler.HomePage)
	r.Get("/get_recipes", cfg.RecipeHandler.HomePage)
	r.Post("/recipes/search", cfg.RecipeHandler.SearchText)
	r.Get("/recipes/search/{category}", cfg.RecipeHandler.ByCategory)
	r.Get("/recipes/view_recipe/{id}", cfg.RecipeHandler.ViewRecipe)
	r.Get("/categories", cfg.CategoryHandler.List)

	// Account flows
	r.Get("/user/create_account", cfg.AuthHandler.GetCreateAccount)
	r.Post("/user/create_account/post", cfg.AuthHandler.PostCreateAccount)
	r.Get("/user/login", cfg.AuthHandler.GetLogin)
	r.Post("/user/login/post", cfg.AuthHandler.PostLogin)
	r.Get("/user/logout", cfg.AuthHandler.Logout)

	// Authoring routes, behind a session
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Get("/recipes/search/user/{owner}", cfg.RecipeHandler.OwnerRecipes)
		r.Get("/recipes/search/user/{owner}/removed", cfg.RecipeHandler.OwnerRemovedRecipes)

		r.Get("/recipes/create_recipe", cfg.RecipeHandler.GetCreateRecipe)
		r.Post("/recipes/create_recipe/post", cfg.RecipeHandler.PostCreateRecipe)
		r.Get("/recipes/edit_recipe/{id}", cfg.RecipeHandler.GetEditRecipe)
		r.Post("/recipes/update_recipe/{id}", cfg.RecipeHandler.PostUpdateRecipe)

		// The legacy UI linked these as plain anchors, hence GET as well
		// as POST.
		r.Get("/recipes/remove_recipe/{id}", cfg.RecipeHandler.RemoveRecipe)
		r.Post("/recipes/remove_recipe/{id}", cfg.RecipeHandler.RemoveRecipe)
		r.Get("/recipes/re-publish_recipe/{id}", cfg.RecipeHandler.RepublishRecipe)
		r.Post("/recipes/re-publish_recipe/{id}", cfg.RecipeHandler.RepublishRecipe)
		r.Get("/recipes/delete_recipe/{id}", cfg.RecipeHandler.DeleteRecipe)
		r.Post("/recipes/delete_recipe/{id}", cfg.RecipeHandler.DeleteRecipe)
	})

	return r
}
