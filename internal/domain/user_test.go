package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvethq/duvet-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	user, err := domain.NewUser("alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Nil(t, user.ExternalSubject)
	assert.False(t, user.Linked())
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name    string
		user    domain.User
		wantErr error
	}{
		{
			name:    "empty email",
			user:    domain.User{},
			wantErr: domain.ErrEmptyEmail,
		},
		{
			name:    "missing at sign",
			user:    domain.User{Email: "alice.example.com"},
			wantErr: domain.ErrInvalidEmail,
		},
		{
			name:    "missing domain dot",
			user:    domain.User{Email: "alice@localhost"},
			wantErr: domain.ErrInvalidEmail,
		},
		{
			name:    "trailing dot in domain",
			user:    domain.User{Email: "alice@example."},
			wantErr: domain.ErrInvalidEmail,
		},
		{
			name: "empty linked subject",
			user: domain.User{
				Email:           "alice@example.com",
				ExternalSubject: ptr(""),
			},
			wantErr: domain.ErrEmptySubject,
		},
		{
			name: "valid linked user",
			user: domain.User{
				Email:           "alice@example.com",
				ExternalSubject: ptr("auth0|abc123"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.user.Validate()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserLinked(t *testing.T) {
	unlinked := domain.User{Email: "a@example.com"}
	assert.False(t, unlinked.Linked())

	linked := domain.User{Email: "a@example.com", ExternalSubject: ptr("auth0|x")}
	assert.True(t, linked.Linked())
}

func ptr(s string) *string { return &s }
