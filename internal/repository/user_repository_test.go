package repository

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/pkg/util/errorutil"
)

func TestMapStoreError_NoRows(t *testing.T) {
	err := mapStoreError(pgx.ErrNoRows, "abc")
	assert.True(t, errorutil.IsCode(err, errorutil.CodeNotFound))
}

func TestMapStoreError_UniqueViolationNamesField(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		field      string
	}{
		{"username index", "users_username_active_idx", "username"},
		{"email index", "users_email_active_idx", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapStoreError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint}, "")
			require.True(t, errorutil.IsCode(err, errorutil.CodeConflict))
			domainErr := errorutil.ToDomainError(err)
			assert.Equal(t, tt.field, domainErr.Details["field"])
		})
	}
}

func TestMapStoreError_UnknownUniqueViolation(t *testing.T) {
	// A violation on any other constraint, such as the primary key, must not
	// be attributed to the username field.
	err := mapStoreError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}, "")
	require.True(t, errorutil.IsCode(err, errorutil.CodeConflict))
	domainErr := errorutil.ToDomainError(err)
	assert.NotContains(t, domainErr.Details, "field")
	assert.Equal(t, "users_pkey", domainErr.Details["constraint"])
}
