package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ValidationError means caller-supplied data violates a precondition.
// The caller must correct the input; it is never retried automatically.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError means the request's assumption about current state no
// longer holds (an active match already exists, the match already ended).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// PersistenceError wraps a store failure. No partial state is left behind
// and retrying the identical operation is safe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func conflict(message string) error {
	return &ConflictError{Message: message}
}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// persistence wraps err unless it already belongs to the taxonomy, so that
// domain errors returned from inside a transaction callback pass through.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var ce *ConflictError
	var ne *NotFoundError
	var pe *PersistenceError
	if errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &ne) || errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// lookup maps gorm.ErrRecordNotFound to a NotFoundError for resource.
func lookup(op, resource string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource)
	}
	return persistence(op, err)
}

// isUniqueViolation recognises duplicate key errors from both PostgreSQL
// (translated by gorm) and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
