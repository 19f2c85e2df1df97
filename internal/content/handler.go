package content

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
)

// Guard is the subset of the authorization guard used by content routes.
type Guard interface {
	RequirePermission(p roles.Permission) func(http.Handler) http.Handler
}

// Finder loads a single record.
type Finder interface {
	FindByID(ctx context.Context, entity Entity, id string) (map[string]any, error)
}

// Handler serves point lookups for one entity.
type Handler struct {
	logger *slog.Logger
	finder Finder
	guard  Guard
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, finder Finder, guard Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, finder: finder, guard: guard}
}

// MountEntityRoutes registers GET /{id} for entity on a router already
// scoped to the entity's path.
func (h *Handler) MountEntityRoutes(r chi.Router, entity Entity) {
	r.With(h.guard.RequirePermission(entity.ViewPermission)).Get("/{id}", h.show(entity))
}

func (h *Handler) show(entity Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := uuid.Parse(id); err != nil {
			httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "invalid identifier")
			return
		}
		record, err := h.finder.FindByID(r.Context(), entity, id)
		if err != nil {
			if !errors.Is(err, httpx.ErrNotFound) {
				h.logger.Error("content lookup", slog.String("entity", entity.Name), slog.Any("error", err))
				err = errors.Join(httpx.ErrPersistence, err)
			}
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"data": record})
	}
}
