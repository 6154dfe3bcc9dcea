package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation(), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Auth("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), "status for %v", tt.err)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := From(cause)

	assert.Equal(t, KindInternal, err.Kind)
	assert.Equal(t, "Server error", err.Message)
	assert.ErrorIs(t, err, cause)
}

type signup struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Kind     string  `json:"kind" validate:"required,oneof=lost found"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Title    *string `json:"title" validate:"omitnil,min=1"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(signup{Email: "a@b.edu", Password: "secret", Kind: "lost", Date: "2024-12-01"}))

	empty := ""
	err := Validate(signup{Email: "nope", Password: "abc", Kind: "stolen", Date: "01/12/2024", Title: &empty})
	require.Error(t, err)

	verr := From(err)
	assert.Equal(t, KindValidation, verr.Kind)
	assert.Equal(t, []FieldError{
		{Field: "email", Message: "Valid email is required"},
		{Field: "password", Message: "password must be at least 6 characters"},
		{Field: "kind", Message: "kind must be one of: lost, found"},
		{Field: "date", Message: "date must be a date in YYYY-MM-DD format"},
		{Field: "title", Message: "title must not be empty"},
	}, verr.Fields)
}

func TestValidateRequired(t *testing.T) {
	err := Validate(signup{})
	require.Error(t, err)

	fields := From(err).Fields
	require.Len(t, fields, 4)
	assert.Equal(t, "email is required", fields[0].Message)
}
