package reportapi

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchError represents a failed backend request: network failure, 5xx, or
// not-found. StatusCode is 0 when the request never reached the backend.
type FetchError struct {
	StatusCode int
	URL        string
	Message    string
}

// Error returns the error message
func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
	}
	return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.StatusCode, e.Message)
}

// IsFetchError checks if an error is a FetchError
func IsFetchError(err error) bool {
	var e *FetchError
	return errors.As(err, &e)
}

// IsNotFound checks if an error is a FetchError for a missing record
func IsNotFound(err error) bool {
	var e *FetchError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}
