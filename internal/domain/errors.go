package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
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
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMoveCycle         = errors.New("folder move would create a cycle")
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrExtraction        = errors.New("archive extraction failed")
	ErrDeserialization   = errors.New("deserialization failed")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder, chain, template
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// MoveCycleError is returned when a folder would become a child of itself or of
// one of its descendants.
type MoveCycleError struct {
	FolderName       string
	TargetFolderName string
}

func (e *MoveCycleError) Error() string {
	return fmt.Sprintf("cannot move folder %q into folder %q: target is the folder itself or one of its descendants",
		e.FolderName, e.TargetFolderName)
}

func (e *MoveCycleError) StatusCode() int { return http.StatusConflict }

func (e *MoveCycleError) Is(target error) bool { return target == ErrMoveCycle }

// UnsupportedFormatError is returned before any extraction when the uploaded
// archive does not carry a recognized extension.
type UnsupportedFormatError struct {
	FileName  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file extension %q (file %s)", e.Extension, e.FileName)
}

func (e *UnsupportedFormatError) StatusCode() int { return http.StatusUnsupportedMediaType }

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// ExtractionError wraps malformed-archive and I/O failures during unpacking.
type ExtractionError struct {
	Member string // archive member being processed, empty when the archive itself is unreadable
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("unexpected error while archive unpacking (%s): %v", e.Member, e.Err)
	}
	return fmt.Sprintf("unexpected error while archive unpacking: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) StatusCode() int { return http.StatusBadRequest }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// DeserializationError names the archive file whose document could not be
// turned into an entity.
type DeserializationError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *DeserializationError) Error() string {
	msg := fmt.Sprintf("an error occurred while deserializing %s: %s", e.FileName, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func (e *DeserializationError) StatusCode() int { return http.StatusBadRequest }

func (e *DeserializationError) Is(target error) bool { return target == ErrDeserialization }

// TemplateNotFoundError is raised while inlining a template reference that
// points to a template which does not exist.
type TemplateNotFoundError struct {
	TemplateID string
	ElementID  string
	ChainID    string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("unable to find a template (id=%s) for element (id=%s) of chain (id=%s)",
		e.TemplateID, e.ElementID, e.ChainID)
}

func (e *TemplateNotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *TemplateNotFoundError) Is(target error) bool { return target == ErrNotFound }
