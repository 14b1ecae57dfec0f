package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
)

// Client-specific errors.
var (
	// ErrMissingDocument indicates a write response without a document record.
	ErrMissingDocument = errors.New("httpapi: response did not include a document")

	// ErrInvalidBaseURL indicates the configured base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("httpapi: invalid base URL")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error returns the server's message verbatim so it can be shown to users.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Unwrap maps well-known statuses onto domain errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	default:
		return nil
	}
}

// RateLimitError is a 429 response.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return statusIs(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool {
	return statusIs(err, http.StatusForbidden)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

func statusIs(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}
