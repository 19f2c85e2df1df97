package bulk

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/authz"
	"github.com/lumen-ngo/lumen/internal/content"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

const maxBulkBody = 1 << 20

// Handler exposes bulk mutations over HTTP.
type Handler struct {
	logger   *slog.Logger
	executor *Executor
	guard    *authz.Guard
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, executor *Executor, guard *authz.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, executor: executor, guard: guard}
}

// MountEntityRoutes registers the bulk endpoints of entity on a router scoped
// to the entity's path:
//
//	PATCH /bulk/{field}
//	PATCH /bulk-status     (isActive)
//	PATCH /bulk-featured   (isFeatured)
func (h *Handler) MountEntityRoutes(r chi.Router, entity content.Entity) {
	r.Patch("/bulk/{field}", h.apply(entity, ""))
	if _, ok := entity.Field("isActive"); ok {
		r.Patch("/bulk-status", h.apply(entity, "isActive"))
	}
	if _, ok := entity.Field("isFeatured"); ok {
		r.Patch("/bulk-featured", h.apply(entity, "isFeatured"))
	}
}

type payload struct {
	IDs   []string
	Value any
}

func (h *Handler) apply(entity content.Entity, fixedField string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldName := fixedField
		if fieldName == "" {
			fieldName = chi.URLParam(r, "field")
		}

		// Unknown fields still need an authenticated caller; the executor then
		// reports them as a validation failure.
		req := authz.Authenticated()
		if field, ok := entity.Field(fieldName); ok {
			req = authz.Permission(field.Permission)
		}

		run := authz.Protect(h.guard, req, func(r *http.Request, identity auth.Identity) (Result, error) {
			body, err := decode(w, r, fieldName)
			if err != nil {
				return Result{}, err
			}
			return h.executor.Apply(r.Context(), Request{
				Entity:  entity.Name,
				IDs:     body.IDs,
				Field:   fieldName,
				Value:   body.Value,
				ActorID: identity.UserID,
			})
		})

		res, err := run(r)
		if err != nil {
			if errors.Is(err, httpx.ErrPersistence) || errors.Is(err, httpx.ErrSessionStore) {
				h.logger.Error("bulk mutation", slog.String("entity", entity.Name), slog.String("field", fieldName), slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, res)
	}
}

// decode reads {"ids": [...], "<field>": value}. A missing ids key is left
// empty so the executor reports it.
func decode(w http.ResponseWriter, r *http.Request, field string) (payload, error) {
	var raw map[string]json.RawMessage
	if err := httpx.DecodeJSON(w, r, maxBulkBody, &raw); err != nil {
		return payload{}, &ValidationError{Reason: "invalid request body"}
	}
	var out payload
	if ids, ok := raw["ids"]; ok {
		if err := json.Unmarshal(ids, &out.IDs); err != nil {
			return payload{}, invalid(reasonInvalidIdentifier, "ids")
		}
	}
	if value, ok := raw[field]; ok {
		if err := json.Unmarshal(value, &out.Value); err != nil {
			return payload{}, invalid(reasonInvalidValueType, field)
		}
	}
	return out, nil
}
