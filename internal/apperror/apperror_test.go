package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden(nil), http.StatusForbidden},
		{NotFound("doctor"), http.StatusNotFound},
		{Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Status(), tc.err.Message)
	}
}

func TestFrom(t *testing.T) {
	cause := errors.New("connection reset")

	wrapped := fmt.Errorf("list users: %w", Forbidden(cause))
	got := From(wrapped)
	assert.Equal(t, KindForbidden, got.Kind)
	assert.ErrorIs(t, got, cause)

	plain := From(cause)
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, "internal server error: connection reset", plain.Error())
}
