package api

import (
	"errors"
	"fmt"
)

// Error is a non-2xx response from the service.
type Error struct {
	StatusCode int
	Method     string
	Path       string

	// Detail is the service's error message, or the raw body when the
	// body carried no detail field.
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error (%d) on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Detail)
}

// AuthError indicates the service rejected the configured token.
type AuthError struct {
	BaseURL string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (401): check the API token for %s", e.BaseURL)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNotFound reports whether err is a 404 from the service. The service
// answers 404 when it has no extracted text for a transcript id.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
