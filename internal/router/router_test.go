package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrecf/recipebox/config"
	"github.com/andrecf/recipebox/internal/api/auth"
	"github.com/andrecf/recipebox/internal/api/category"
	"github.com/andrecf/recipebox/internal/api/recipe"
)

func setupTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRouter(&Config{
		AuthHandler:            auth.NewHandlerImpl(nil, logger),
		RecipeHandler:          recipe.NewHandlerImpl(nil, nil, logger),
		CategoryHandler:        category.NewHandlerImpl(nil, logger),
		AuthenticateMiddleware: auth.Authenticate(logger, config.JWTConfig{SecretKey: "test-secret"}),
	})
}

func TestStaticRoutes(t *testing.T) {
	router := setupTestRouter()

	t.Run("ping", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pong", rr.Body.String())
	})

	t.Run("tools page view state", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tools", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Tools")
	})

	t.Run("authoring routes are gated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/recipes/create_recipe", nil))

		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Contains(t, rr.Header().Get("Location"), "/user/login?next=")
	})
}
