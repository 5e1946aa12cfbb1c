package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found (or is hidden from the caller)
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is implementations so typed errors match their sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrVersionConflict = errors.New("version conflict")
	ErrSlugExhausted   = errors.New("slug candidates exhausted")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (portfolio, slug, collaborator)
	ResourceID   string // ID (or slug) of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// IsSlugConflict reports whether err is a unique-index rejection on the slug field.
// Returns the colliding slug when it is.
func IsSlugConflict(err error) (string, bool) {
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ResourceType == "slug" {
		return conflictErr.ResourceID, true
	}
	return "", false
}

// InvalidTitleError indicates a title that normalizes to an empty slug.
// Not retryable without the caller changing the input.
type InvalidTitleError struct {
	Title string
}

func (e *InvalidTitleError) Error() string {
	return fmt.Sprintf("title %q does not produce a usable slug", e.Title)
}

func (e *InvalidTitleError) StatusCode() int { return http.StatusBadRequest }

func (e *InvalidTitleError) Is(target error) bool { return target == ErrValidation }

// SlugExhaustedError indicates that every suffix up to the attempt cap was taken.
// Retryable after a delay.
type SlugExhaustedError struct {
	Base     string
	Attempts int
}

func (e *SlugExhaustedError) Error() string {
	return fmt.Sprintf("no free slug for %q after %d attempts", e.Base, e.Attempts)
}

func (e *SlugExhaustedError) StatusCode() int { return http.StatusServiceUnavailable }

func (e *SlugExhaustedError) Is(target error) bool { return target == ErrSlugExhausted }

// VersionConflictError indicates an optimistic-concurrency collision: the stored
// version no longer matches the version the write was computed from.
type VersionConflictError struct {
	ResourceID      string
	ExpectedVersion int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("portfolio %s changed since version %d", e.ResourceID, e.ExpectedVersion)
}

func (e *VersionConflictError) StatusCode() int { return http.StatusConflict }

func (e *VersionConflictError) Is(target error) bool { return target == ErrVersionConflict }
