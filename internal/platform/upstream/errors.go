// Package upstream wraps the LIMS REST backend. Every data operation in the
// application goes through this client; the backend owns all business rules.
package upstream

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for any 401 response. Callers tear down the
// session and redirect to the login page regardless of which call tripped it.
var ErrUnauthorized = errors.New("upstream: unauthorized")

// APIError carries the backend's status code and message field so handlers
// can surface the backend's specific text to the user.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream: status %d", e.Status)
}

// SchemaError indicates the backend response did not match the expected
// envelope or payload shape. Responses are validated at the boundary rather
// than assumed.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("upstream: decode %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// UserMessage extracts a message suitable for display: the backend's own
// message when present, otherwise a generic fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
