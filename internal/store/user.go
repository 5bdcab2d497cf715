package store

import (
	"context"

	"github.com/duvethq/duvet-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new pre-provisioned user to the store.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetBySubject retrieves the user linked to the given identity-provider
	// subject. Returns ErrUserNotFound if no user has been linked to it.
	GetBySubject(ctx context.Context, subject string) (*domain.User, error)

	// GetUnlinkedByEmail retrieves a pre-provisioned user by email whose
	// external subject has not been set yet.
	// Returns ErrUserNotFound if there is no such unlinked user.
	GetUnlinkedByEmail(ctx context.Context, email string) (*domain.User, error)

	// LinkSubject sets the external subject on the user with the given ID
	// and returns the updated user. The update only applies to a still
	// unlinked row; linking an already-linked user returns ErrUserNotFound.
	// Returns ErrSubjectExists if the subject is already linked to another
	// user.
	LinkSubject(ctx context.Context, id int64, subject string) (*domain.User, error)
}
