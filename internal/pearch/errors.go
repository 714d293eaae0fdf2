package pearch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTimeout is returned when every attempt exceeded the per-attempt timeout.
	ErrTimeout = errors.New("pearch request timed out")
	// ErrRateLimited is returned when the vendor keeps answering 429.
	ErrRateLimited = errors.New("pearch rate limit exceeded")
	// ErrUnauthorized is returned when the vendor rejects the API key.
	ErrUnauthorized = errors.New("pearch rejected credentials")
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("pearch api key not configured")
)

// APIError carries a non-2xx vendor response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pearch api error: %d - %s", e.StatusCode, e.Body)
}

// Unwrap maps the status code onto the error class sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return nil
	}
}

func (e *APIError) transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
