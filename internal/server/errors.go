package server

import (
	"fmt"
	"net/http"
)

// ErrNotFound indicates the requested tender or resource does not exist
type ErrNotFound struct {
	Resource string
	Key      string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrRateLimited indicates the client exhausted its budget for a route
type ErrRateLimited struct {
	Path string
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Path)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
