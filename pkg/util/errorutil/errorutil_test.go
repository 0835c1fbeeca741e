package errorutil

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	orig := NewConflict("username already exists", map[string]any{"field": "username"})
	mapped := ToDomainError(orig)
	require.NotNil(t, mapped)
	assert.Equal(t, CodeConflict, mapped.Code)
	assert.Equal(t, http.StatusConflict, mapped.HTTPStatus)
}

func TestToDomainError_NoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, mapped)
	assert.Equal(t, CodeNotFound, mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainError_Timeout(t *testing.T) {
	mapped := ToDomainError(context.DeadlineExceeded)
	require.NotNil(t, mapped)
	assert.Equal(t, CodeUnavailable, mapped.Code)
	assert.Equal(t, http.StatusServiceUnavailable, mapped.HTTPStatus)
	assert.True(t, mapped.Retryable())
}

func TestToDomainError_UniqueViolation(t *testing.T) {
	mapped := ToDomainError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_active_idx"})
	require.NotNil(t, mapped)
	assert.Equal(t, CodeConflict, mapped.Code)
}

func TestToDomainError_ConnectionFailure(t *testing.T) {
	mapped := ToDomainError(&pgconn.PgError{Code: "08006"})
	require.NotNil(t, mapped)
	assert.Equal(t, CodeUnavailable, mapped.Code)
}

func TestToDomainError_UnknownBecomesInternal(t *testing.T) {
	mapped := ToDomainError(errors.New("driver exploded"))
	require.NotNil(t, mapped)
	assert.Equal(t, CodeInternal, mapped.Code)
	// Client-facing message must not leak internal error text.
	assert.Equal(t, "internal server error", mapped.Message)
}

func TestIsCode(t *testing.T) {
	err := NewAlreadyDeleted("user", "abc")
	assert.True(t, IsCode(err, CodeAlreadyDeleted))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
}

func TestValidationErrorCarriesFieldDetails(t *testing.T) {
	err := NewValidationError("validation failed", map[string]any{"email": "email is not a valid address"})
	mapped := ToDomainError(err)
	require.NotNil(t, mapped)
	assert.Equal(t, http.StatusUnprocessableEntity, mapped.HTTPStatus)
	assert.Contains(t, mapped.Details, "email")
}
