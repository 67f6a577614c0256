// Package errs defines the error taxonomy shared by the reconciliation jobs.
//
// ValidationError marks a single batch item as failed while the batch
// continues; PreconditionError aborts a job before any writes happen;
// duplicate-key violations from racing identity inserts are detected with
// IsConstraintViolation and recovered by re-fetching the winning row. Anything
// else is wrapped and propagated.
package errs

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError reports that one batch item cannot be reconciled, e.g. a
// required reference could not be resolved. The batch records it and moves on.
type ValidationError struct {
	Item   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Item, e.Reason)
}

// NewValidation builds a ValidationError for the given item.
func NewValidation(item, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Item: item, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError or a
// MissingDefaultError; both mark a single item as failed without stopping the
// batch.
func IsValidation(err error) bool {
	var ve *ValidationError
	var mde *MissingDefaultError
	return errors.As(err, &ve) || errors.As(err, &mde)
}

// PreconditionError reports that a job-level prerequisite entity is absent.
// Fatal: the job must abort before performing any writes.
type PreconditionError struct {
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s not found", e.Missing)
}

// NewPrecondition builds a PreconditionError naming the missing prerequisite.
func NewPrecondition(missing string) *PreconditionError {
	return &PreconditionError{Missing: missing}
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// MissingDefaultError reports that no warehouse or unit could be resolved for
// a stock sync item. It is a ValidationError subtype: recoverable per item.
type MissingDefaultError struct {
	Kind string // "warehouse" or "unit"
}

func (e *MissingDefaultError) Error() string {
	return fmt.Sprintf("no default %s configured and none available", e.Kind)
}

// IsConstraintViolation reports whether err is a unique-constraint violation.
// Requires the gorm connection to be opened with TranslateError enabled so
// driver-specific duplicate-key errors surface as gorm.ErrDuplicatedKey.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
