package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

// Guard is the subset of the authorization guard the handler needs.
type Guard interface {
	RequirePermission(p Permission) func(http.Handler) http.Handler
}

// Handler exposes the role catalogue.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	guard    Guard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, guard Guard) *Handler {
	return &Handler{logger: logger, registry: registry, guard: guard}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(PermRolesView))
		r.Get("/", h.listRoles)
	})
}

type roleView struct {
	Name        Role         `json:"name"`
	Level       int          `json:"level"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	all := h.registry.AllRoles()
	out := make([]roleView, 0, len(all))
	for _, role := range all {
		def, err := h.registry.Definition(role)
		if err != nil {
			h.logger.Error("describe role", slog.String("role", role.String()), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		out = append(out, roleView{
			Name:        def.Role,
			Level:       def.Level,
			Label:       def.Label,
			Description: def.Description,
			Permissions: def.Permissions.Sorted(),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}
