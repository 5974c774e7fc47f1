// Package errors defines the sentinel error taxonomy and HTTP status
// mapping shared by every service in the search engine. It implements the
// error taxonomy of spec.md §7 as typed sentinels.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfig marks a fatal configuration error (spec.md §7.1).
	ErrConfig = errors.New("configuration error")
	// ErrIndexArtifactMissing marks a required on-disk index artifact that
	// is absent (spec.md §7.2).
	ErrIndexArtifactMissing = errors.New("index artifact missing")
	// ErrCodecCorrupt marks a binary block that failed its self-consistency
	// check (spec.md §7.3); the affected lemma is skipped, not the query.
	ErrCodecCorrupt = errors.New("barrel codec corruption")
	// ErrBarrelUnavailable marks a barrel file absent at serving time; the
	// barrel is treated as empty rather than failing the query.
	ErrBarrelUnavailable = errors.New("barrel unavailable")
	// ErrLemmaUnknown marks a term absent from the lexicon (spec.md §7.4).
	ErrLemmaUnknown = errors.New("lemma not in lexicon")
	// ErrQueryTimeout marks a query that exceeded its deadline (spec.md §7.5).
	ErrQueryTimeout = errors.New("query deadline exceeded")
	// ErrIncrementalWriteFailed marks a failed incremental document insert
	// (spec.md §7.6); no partial state is left observable to readers.
	ErrIncrementalWriteFailed = errors.New("incremental write failed")
	ErrDocumentNotFound       = errors.New("document not found")
	ErrDocumentExists         = errors.New("document already exists")
	ErrInvalidInput           = errors.New("invalid input")
	ErrIdempotencyConflict    = errors.New("idempotency key already used")
	ErrRateLimited            = errors.New("rate limit exceeded")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInternal               = errors.New("internal error")
)

// AppError wraps a sentinel error with a caller-facing message and HTTP
// status code.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status code the gateway should
// return for it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDocumentExists), errors.Is(err, ErrIdempotencyConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrLemmaUnknown):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrQueryTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrIndexArtifactMissing), errors.Is(err, ErrIncrementalWriteFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
