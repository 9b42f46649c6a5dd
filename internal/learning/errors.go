package learning

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-supplied value that fails a structural
// precondition. It is never retried.
type ValidationError struct {
	Field   string
	Message string

	// Index tags the offending element for per-item checks (e.g. a quiz
	// question). -1 when not applicable.
	Index int
}

// Invalid builds a ValidationError for a field with no element index.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Index: -1}
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s[%d]: %s", e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GenerationError reports a failed or unusable prompt execution. The module
// and question indexes attribute the failure; -1 means not applicable.
type GenerationError struct {
	Flow          string
	ModuleIndex   int
	QuestionIndex int
	Timeout       bool
	Message       string
	Err           error
}

// NewGenerationError builds a GenerationError with no index attribution.
func NewGenerationError(flow, message string, err error) *GenerationError {
	return &GenerationError{Flow: flow, ModuleIndex: -1, QuestionIndex: -1, Message: message, Err: err}
}

func (e *GenerationError) Error() string {
	var where string
	switch {
	case e.ModuleIndex >= 0 && e.QuestionIndex >= 0:
		where = fmt.Sprintf(" (module %d, question %d)", e.ModuleIndex, e.QuestionIndex)
	case e.ModuleIndex >= 0:
		where = fmt.Sprintf(" (module %d)", e.ModuleIndex)
	case e.QuestionIndex >= 0:
		where = fmt.Sprintf(" (question %d)", e.QuestionIndex)
	}
	msg := e.Message
	if e.Timeout {
		msg = "timed out: " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s generation failed%s: %s: %v", e.Flow, where, msg, e.Err)
	}
	return fmt.Sprintf("%s generation failed%s: %s", e.Flow, where, msg)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistenceError reports a failed document store operation.
type PersistenceError struct {
	Op          string
	PathID      string
	ModuleIndex int
	Err         error
}

func (e *PersistenceError) Error() string {
	target := e.PathID
	if e.ModuleIndex >= 0 {
		target = fmt.Sprintf("%s module %d", e.PathID, e.ModuleIndex)
	}
	if target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotFoundError reports a path id or module index that does not exist among
// the caller's records.
type NotFoundError struct {
	Kind string // "path" or "module"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsGeneration reports whether err carries a GenerationError.
func IsGeneration(err error) bool {
	var g *GenerationError
	return errors.As(err, &g)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
