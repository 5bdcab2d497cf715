package postgres

import (
	"context"
	"fmt"

	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/platform/logger"
	"github.com/duvethq/duvet-api/internal/store"
)

// UserStore implements the store.UserStore interface using PostgreSQL.
type UserStore struct {
	q store.Querier
}

// NewUserStore creates a PostgreSQL implementation of store.UserStore
// bound to the given querier (typically the current database session).
func NewUserStore(q store.Querier) *UserStore {
	return &UserStore{q: q}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

const userColumns = "id, email, external_subject, created_at, updated_at"

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO app_users (email, external_subject, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := s.q.QueryRow(ctx, query,
		user.Email,
		user.ExternalSubject,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to create user",
			"email", user.Email,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM app_users WHERE id = $1"
	user, err := s.scanUser(ctx, query, id)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

// GetBySubject implements store.UserStore.GetBySubject
func (s *UserStore) GetBySubject(ctx context.Context, subject string) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM app_users WHERE external_subject = $1"
	user, err := s.scanUser(ctx, query, subject)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

// GetUnlinkedByEmail implements store.UserStore.GetUnlinkedByEmail
func (s *UserStore) GetUnlinkedByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT " + userColumns +
		" FROM app_users WHERE email = $1 AND external_subject IS NULL"
	user, err := s.scanUser(ctx, query, email)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

// LinkSubject implements store.UserStore.LinkSubject.
// The WHERE clause only matches a still-unlinked row, so a lost race
// with a concurrent link surfaces as ErrUserNotFound rather than
// silently overwriting the winner's subject.
func (s *UserStore) LinkSubject(ctx context.Context, id int64, subject string) (*domain.User, error) {
	query := `
		UPDATE app_users
		SET external_subject = $2, updated_at = now()
		WHERE id = $1 AND external_subject IS NULL
		RETURNING ` + userColumns

	user, err := s.scanUser(ctx, query, id, subject)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to link user to external subject",
			"user_id", id,
			"error", err)
		return nil, userError(err)
	}

	logger.FromContext(ctx).Info("linked pre-provisioned user to external subject",
		"user_id", id)
	return user, nil
}

// scanUser runs a query expected to return a single user row.
func (s *UserStore) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	err := s.q.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.ExternalSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// userError maps a raw database error, narrowing generic not-found to
// the user-specific sentinel.
func userError(err error) error {
	mapped := MapError(err)
	if store.IsNotFoundError(mapped) {
		return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
	}
	return mapped
}
