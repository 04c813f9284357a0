package category

import (
	"log/slog"
	"net/http"

	"github.com/andrecf/recipebox/internal/api"
)

type HandlerImpl struct {
	provider Provider
	logger   *slog.Logger
}

func NewHandlerImpl(provider Provider, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		provider: provider,
		logger:   logger,
	}
}

// List serves the categories shown in navigation and the recipe forms.
func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.provider.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list categories", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": categories,
	})
}
