package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable wraps transport-level failures: the request never got
	// an HTTP answer.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches 401 and 403 answers.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches 404 answers.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer from the backend. Message holds the
// server-provided text when there was one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the server-provided message carried by err, or err's own
// text.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
