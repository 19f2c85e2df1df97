// Package bulk applies one field change across a set of records.
package bulk

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lumen-ngo/lumen/internal/content"
	"github.com/lumen-ngo/lumen/internal/shared"
)

// Request is a single bulk mutation.
type Request struct {
	Entity  string
	IDs     []string
	Field   string
	Value   any
	ActorID string
}

// Result is what a bulk mutation reports back. It is never stored.
type Result struct {
	MatchedCount int64  `json:"count"`
	Message      string `json:"message"`
}

// Store applies a set-based update and reports the number of matched rows.
type Store interface {
	UpdateMany(ctx context.Context, table, column string, value any, ids []string) (int64, error)
}

// Auditor records completed mutations.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Recorder observes executor outcomes.
type Recorder interface {
	ObserveBulkMutation(entity, field string, matched int64, err error)
}

// Hook runs after a successful mutation. Hooks are best-effort: a failing hook
// is logged and never changes the result.
type Hook func(ctx context.Context, req Request, res Result) error

// Executor validates and applies bulk mutations.
type Executor struct {
	catalog  *content.Catalog
	store    Store
	logger   *slog.Logger
	auditor  Auditor
	recorder Recorder
	hooks    map[string][]Hook
}

// Option configures an Executor.
type Option func(*Executor)

// WithAuditor records every successful mutation in the audit log.
func WithAuditor(a Auditor) Option { return func(e *Executor) { e.auditor = a } }

// WithRecorder reports outcomes to metrics.
func WithRecorder(r Recorder) Option { return func(e *Executor) { e.recorder = r } }

// WithHook registers h for mutations of entity.
func WithHook(entity string, h Hook) Option {
	return func(e *Executor) { e.hooks[entity] = append(e.hooks[entity], h) }
}

// NewExecutor constructs an Executor.
func NewExecutor(catalog *content.Catalog, store Store, logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		catalog:  catalog,
		store:    store,
		logger:   logger,
		hooks:    make(map[string][]Hook),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply validates req and issues one update for every identifier. Unknown
// identifiers are skipped; a zero count is a success.
func (e *Executor) Apply(ctx context.Context, req Request) (Result, error) {
	entity, field, ids, err := e.check(req)
	if err != nil {
		return Result{}, err
	}
	req.IDs = ids

	matched, err := e.store.UpdateMany(ctx, entity.Table, field.Column, req.Value, req.IDs)
	if e.recorder != nil {
		e.recorder.ObserveBulkMutation(req.Entity, req.Field, matched, err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: update %s.%s: %w", ErrPersistence, req.Entity, req.Field, err)
	}

	res := Result{
		MatchedCount: matched,
		Message:      fmt.Sprintf("%d %s updated", matched, req.Entity),
	}
	e.after(ctx, req, res)
	return res, nil
}

// check runs every precondition; the first failure wins. Identifiers come
// back in canonical lowercase form.
func (e *Executor) check(req Request) (content.Entity, content.Field, []string, error) {
	if len(req.IDs) == 0 {
		return content.Entity{}, content.Field{}, nil, invalid(reasonIdentifiersRequired, "")
	}
	ids := make([]string, len(req.IDs))
	for i, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return content.Entity{}, content.Field{}, nil, invalid(reasonInvalidIdentifier, raw)
		}
		ids[i] = id.String()
	}
	entity, field, ok := e.catalog.Lookup(req.Entity, req.Field)
	if !ok {
		return content.Entity{}, content.Field{}, nil, invalid(reasonUnknownField, req.Field)
	}
	if !field.Accepts(req.Value) {
		return content.Entity{}, content.Field{}, nil, invalid(reasonInvalidValueType, req.Field)
	}
	return entity, field, ids, nil
}

func (e *Executor) after(ctx context.Context, req Request, res Result) {
	if e.auditor != nil {
		err := e.auditor.Record(ctx, shared.AuditLog{
			ActorID:  req.ActorID,
			Action:   "bulk." + req.Field,
			Entity:   req.Entity,
			EntityID: "bulk",
			Meta: map[string]any{
				"ids":   req.IDs,
				"value": req.Value,
				"count": res.MatchedCount,
			},
		})
		if err != nil {
			e.logger.Warn("bulk audit failed", slog.String("entity", req.Entity), slog.Any("error", err))
		}
	}
	for _, hook := range e.hooks[req.Entity] {
		if err := hook(ctx, req, res); err != nil {
			e.logger.Warn("bulk hook failed", slog.String("entity", req.Entity), slog.String("field", req.Field), slog.Any("error", err))
		}
	}
}
