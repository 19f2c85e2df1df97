package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-ngo/lumen/internal/audit"
	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/bulk"
	"github.com/lumen-ngo/lumen/internal/content"
	"github.com/lumen-ngo/lumen/internal/observability"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
	"github.com/lumen-ngo/lumen/internal/shared"
	"github.com/lumen-ngo/lumen/internal/storage"
	"github.com/lumen-ngo/lumen/internal/users"
	"github.com/lumen-ngo/lumen/jobs"
)

// Pinger checks a backing dependency for the health endpoint.
type Pinger func(ctx context.Context) error

// RouterParams collects dependencies for the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	Catalog        *content.Catalog
	AuthHandler    *auth.Handler
	AuditHandler   *audit.Handler
	RolesHandler   *roles.Handler
	UsersHandler   *users.Handler
	ContentHandler *content.Handler
	BulkHandler    *bulk.Handler
	UploadHandler  *storage.Handler
	JobHandler     *jobs.Handler
	Checks         map[string]Pinger
}

// NewRouter constructs the chi router with all middleware and routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(params.Checks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.AuthHandler != nil {
			api.Route("/auth", params.AuthHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			api.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			api.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.UploadHandler != nil {
			api.Route("/uploads", params.UploadHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
		if params.Catalog == nil {
			return
		}
		for _, name := range params.Catalog.Names() {
			entity, _ := params.Catalog.Entity(name)
			api.Route("/"+entity.Name, func(er chi.Router) {
				if entity.Name == "users" && params.UsersHandler != nil {
					params.UsersHandler.MountRoutes(er)
				}
				if params.BulkHandler != nil {
					params.BulkHandler.MountEntityRoutes(er, entity)
				}
				if params.ContentHandler != nil {
					params.ContentHandler.MountEntityRoutes(er, entity)
				}
			})
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})
	return r
}

func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		body := map[string]any{"status": "ok"}
		details := map[string]string{}
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				details[name] = err.Error()
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				continue
			}
			details[name] = "ok"
		}
		if len(details) > 0 {
			body["checks"] = details
		}
		httpx.JSON(w, status, body)
	}
}
