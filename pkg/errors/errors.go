// Package errors defines the error taxonomy shared by every tsreg package.
//
// Construction and wrapping are backed by github.com/cockroachdb/errors, so
// every error created here carries a stack trace that is printed with %+v
// while %v stays a short, user-facing message. The package re-exports the
// common helpers (New, Newf, Wrap, Wrapf, Is, As) so callers need a single
// import for both the typed errors and the wrapping utilities.
//
// Typed errors:
//
//   - DimensionError, NotFittedError, ValueError, ModelError: estimator misuse
//   - DecodeError: malformed transport bytes
//   - ValidationError: dataset rejected before modeling, with every violation
//   - ModelNotFoundError: no persisted model where one is required
//   - StorageError: object store get/put/exists failures
package errors

import (
	"fmt"
	"strings"

	cerrors "github.com/cockroachdb/errors"
)

const prefix = "tsreg"

// Sentinel errors. Compare with Is.
var (
	ErrEmptyData         = cerrors.New("empty data")
	ErrDimensionMismatch = cerrors.New("dimension mismatch")
	ErrSingularMatrix    = cerrors.New("singular matrix")
	ErrNotImplemented    = cerrors.New("not implemented")
	ErrNotFitted         = cerrors.New("not fitted")
	ErrBlobNotFound      = cerrors.New("blob not found")
	ErrModelNotFound     = cerrors.New("model not found")
)

// New returns an error with a stack trace.
func New(msg string) error { return cerrors.New(msg) }

// Newf returns a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error { return cerrors.Newf(format, args...) }

// Wrap annotates err with msg. Returns nil if err is nil.
func Wrap(err error, msg string) error { return cerrors.Wrap(err, msg) }

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	return cerrors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return cerrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return cerrors.As(err, target) }

// DimensionError reports a shape mismatch along Axis (0 rows, 1 columns).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return cerrors.WithStackDepth(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}, 1)
}

func (e *DimensionError) Error() string {
	axis := "rows"
	if e.Axis == 1 {
		axis = "columns"
	}
	return fmt.Sprintf("%s: %s: dimension mismatch in %s: expected %d, got %d", prefix, e.Op, axis, e.Expected, e.Got)
}

// Is makes DimensionError match ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }

// NotFittedError is returned when an estimator is used before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError.
func NewNotFittedError(modelName, method string) error {
	return cerrors.WithStackDepth(&NotFittedError{ModelName: modelName, Method: method}, 1)
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s: this instance is not fitted yet, call Fit before %s", prefix, e.ModelName, e.Method)
}

// Is makes NotFittedError match ErrNotFitted.
func (e *NotFittedError) Is(target error) bool { return target == ErrNotFitted }

// ValueError reports an invalid argument value.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return cerrors.WithStackDepth(&ValueError{Op: op, Message: message}, 1)
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// ModelError wraps an underlying cause with the operation that failed.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError.
func NewModelError(op, message string, err error) error {
	return cerrors.WithStackDepth(&ModelError{Op: op, Message: message, Err: err}, 1)
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// DecodeError is returned when transport bytes do not parse as a table.
type DecodeError struct {
	Op  string
	Err error
}

// NewDecodeError creates a DecodeError.
func NewDecodeError(op string, err error) error {
	return cerrors.WithStackDepth(&DecodeError{Op: op, Err: err}, 1)
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: malformed table data: %v", prefix, e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Validation rules reported in a Violation.
const (
	RuleInsufficientRows  = "insufficient_rows"
	RuleNonNumericColumns = "non_numeric_columns"
	RuleNonNumericTarget  = "non_numeric_target"
	RuleMissingColumns    = "missing_columns"
)

// Violation is one failed validation rule.
type Violation struct {
	Rule    string
	Message string
	// Rows is the observed row count for RuleInsufficientRows.
	Rows int
	// Columns names the offending columns.
	Columns []string
}

// ValidationError carries every violated rule, not just the first.
type ValidationError struct {
	Op         string
	Violations []Violation
}

// NewValidationError creates a ValidationError from collected violations.
func NewValidationError(op string, violations ...Violation) error {
	return cerrors.WithStackDepth(&ValidationError{Op: op, Violations: violations}, 1)
}

// Messages returns the violation messages in the order they were found.
func (e *ValidationError) Messages() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Message
	}
	return out
}

// Has reports whether rule is among the violations.
func (e *ValidationError) Has(rule string) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: validation failed: %s", prefix, e.Op, strings.Join(e.Messages(), "; "))
}

// ModelNotFoundError is returned when no persisted model exists.
type ModelNotFoundError struct {
	Container string
	Key       string
}

// NewModelNotFoundError creates a ModelNotFoundError.
func NewModelNotFoundError(container, key string) error {
	return cerrors.WithStackDepth(&ModelNotFoundError{Container: container, Key: key}, 1)
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("%s: no trained model at %s/%s, train a model first", prefix, e.Container, e.Key)
}

// Is makes ModelNotFoundError match ErrModelNotFound.
func (e *ModelNotFoundError) Is(target error) bool { return target == ErrModelNotFound }

// StorageError wraps an object store failure.
type StorageError struct {
	Op        string
	Container string
	Key       string
	Err       error
}

// NewStorageError creates a StorageError.
func NewStorageError(op, container, key string, err error) error {
	return cerrors.WithStackDepth(&StorageError{Op: op, Container: container, Key: key, Err: err}, 1)
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage %s %s/%s: %v", prefix, e.Op, e.Container, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Recover converts a panic into an error assigned to *errp.
// Use as: defer errors.Recover(&err, "Op").
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		var err error
		switch v := r.(type) {
		case error:
			err = cerrors.Wrapf(v, "%s: panic", op)
		default:
			err = cerrors.Newf("%s: panic: %v", op, v)
		}
		if errp != nil {
			*errp = err
		}
	}
}
