package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/duvethq/duvet-api/internal/store"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil stays nil",
			err:  nil,
			want: nil,
		},
		{
			name: "no rows becomes not found",
			err:  pgx.ErrNoRows,
			want: store.ErrNotFound,
		},
		{
			name: "wrapped no rows becomes not found",
			err:  fmt.Errorf("scan: %w", pgx.ErrNoRows),
			want: store.ErrNotFound,
		},
		{
			name: "unique violation on email",
			err:  pgError(uniqueViolationCode, "app_users_email_key"),
			want: store.ErrEmailExists,
		},
		{
			name: "unique violation on external subject",
			err:  pgError(uniqueViolationCode, "app_users_external_subject_key"),
			want: store.ErrSubjectExists,
		},
		{
			name: "unique violation on unknown constraint",
			err:  pgError(uniqueViolationCode, "tasks_pkey"),
			want: store.ErrDuplicate,
		},
		{
			name: "foreign key violation",
			err:  pgError(foreignKeyViolationCode, "tasks_creator_id_fkey"),
			want: store.ErrInvalidEntity,
		},
		{
			name: "check violation",
			err:  pgError(checkViolationCode, "tasks_status_check"),
			want: store.ErrInvalidEntity,
		},
		{
			name: "not null violation",
			err:  pgError(notNullViolationCode, ""),
			want: store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapError_UnknownErrorPassesThrough(t *testing.T) {
	unknown := errors.New("network hiccup")
	assert.Same(t, unknown, MapError(unknown))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode, "x")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", pgError(uniqueViolationCode, "x"))))
	assert.False(t, IsUniqueViolation(pgError(foreignKeyViolationCode, "x")))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}
