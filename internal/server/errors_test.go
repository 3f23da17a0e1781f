package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrNotFound(t *testing.T) {
	err := &ErrNotFound{Resource: "tender", Key: "T-404"}
	assert.Equal(t, "tender not found: T-404", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "month", Message: "expected YYYY-MM"}
	assert.Equal(t, "validation error: month - expected YYYY-MM", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestErrRateLimited(t *testing.T) {
	err := &ErrRateLimited{Path: "/api/refresh"}
	assert.Equal(t, "rate limit exceeded for /api/refresh", err.Error())
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(err))
}

func TestHTTPStatus_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
