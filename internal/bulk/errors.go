package bulk

import (
	"fmt"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

// ErrPersistence wraps store failures during a bulk update.
var ErrPersistence = fmt.Errorf("bulk: %w", httpx.ErrPersistence)

// ValidationError reports malformed bulk input. It is always detected before
// the store is touched.
type ValidationError struct {
	Reason string
	Field  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Field)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

const (
	reasonIdentifiersRequired = "identifiers required"
	reasonInvalidIdentifier   = "invalid identifier"
	reasonUnknownField        = "unknown field"
	reasonInvalidValueType    = "invalid value type"
)

func invalid(reason, field string) error {
	return &ValidationError{Reason: reason, Field: field}
}
