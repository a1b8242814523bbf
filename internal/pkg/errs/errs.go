// Package errs defines the error taxonomy shared by services and handlers.
// Handlers never inspect error strings; they map these types to HTTP statuses.
package errs

import "fmt"

// ValidationError reports input that fails a domain validation rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// NotFound builds a NotFoundError for an entity kind.
func NotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// DuplicateError reports a uniqueness violation (slug, sku, review).
type DuplicateError struct {
	Entity string
	Reason string
}

func (e *DuplicateError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Entity + " already exists"
}

// Duplicate builds a DuplicateError.
func Duplicate(entity, reason string) *DuplicateError {
	return &DuplicateError{Entity: entity, Reason: reason}
}

// ForbiddenError reports an authorization failure on an existing entity.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return e.Reason
}

// Forbidden builds a ForbiddenError.
func Forbidden(reason string) *ForbiddenError {
	return &ForbiddenError{Reason: reason}
}

// UploadError reports a rejected or failed object upload.
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload failed: %s: %v", e.Reason, e.Err)
	}
	return "upload failed: " + e.Reason
}

func (e *UploadError) Unwrap() error { return e.Err }

// Upload builds an UploadError.
func Upload(reason string, err error) *UploadError {
	return &UploadError{Reason: reason, Err: err}
}
