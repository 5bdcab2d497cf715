package identity

import (
	"context"

	"github.com/duvethq/duvet-api/internal/dbaccess"
	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/store"
)

// Sessions is the slice of the database access service the identity
// service needs. Resolution runs on an unstamped session: at this point
// there is no tenant identity yet, and the user lookups must not be
// subject to any tenant's row visibility.
type Sessions interface {
	WithUnauthenticatedSession(ctx context.Context, fn dbaccess.SessionFn) error
}

// UserStoreFactory binds a user store to a database session.
type UserStoreFactory func(q store.Querier) store.UserStore

// Service is the identity resolution entry point handed to the HTTP
// layer: it owns the session plumbing around the Resolver state machine.
type Service struct {
	sessions Sessions
	resolver *Resolver
	users    UserStoreFactory
}

// NewService composes a resolution service from the database access
// service, a profile fetcher and a user store factory.
func NewService(sessions Sessions, profile ProfileFetcher, users UserStoreFactory) *Service {
	return &Service{
		sessions: sessions,
		resolver: NewResolver(profile),
		users:    users,
	}
}

// ResolveIdentity resolves the given principal on a fresh
// unauthenticated session. See Resolver.Resolve for the semantics.
func (s *Service) ResolveIdentity(ctx context.Context, subject, token string) (*domain.User, error) {
	var user *domain.User
	err := s.sessions.WithUnauthenticatedSession(ctx, func(ctx context.Context, sess *dbaccess.Session) error {
		resolved, err := s.resolver.Resolve(ctx, s.users(sess), subject, token)
		if err != nil {
			return err
		}
		user = resolved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
