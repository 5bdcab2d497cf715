package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/platform/logger"
	"github.com/duvethq/duvet-api/internal/store"
)

// Resolver maps an identity-provider principal to a local user. It is
// stateless; the user store it operates on is supplied per call so that
// resolution runs on whatever database session the caller holds.
type Resolver struct {
	profile ProfileFetcher
}

// NewResolver creates a Resolver that fetches profile emails through the
// given fetcher.
func NewResolver(profile ProfileFetcher) *Resolver {
	return &Resolver{profile: profile}
}

// Resolve finds the local user for the given external subject.
//
// The fast path, a subject that has logged in before, is a single
// lookup with no network traffic. Otherwise the verified email is
// fetched from the identity provider and used to claim a matching
// pre-provisioned (unlinked) account: a one-time link that makes every
// later call take the fast path.
//
// Returns store.ErrUserNotFound when no linkable account exists;
// accounts must be pre-provisioned, self-service signup is not
// supported. Profile fetch failures surface as ErrUpstreamIdentity.
func (r *Resolver) Resolve(ctx context.Context, users store.UserStore, subject, token string) (*domain.User, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", store.ErrUserNotFound)
	}

	user, err := users.GetBySubject(ctx, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user by subject: %w", err)
	}

	email, err := r.profile.Email(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err = users.GetUnlinkedByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			logger.FromContext(ctx).Warn("no linkable account for principal",
				"subject", subject)
			return nil, fmt.Errorf("%w: no pre-provisioned account for this principal", store.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	linked, err := users.LinkSubject(ctx, user.ID, subject)
	if err == nil {
		return linked, nil
	}

	// Two first logins for the same principal can race on the link. The
	// unique constraints guarantee exactly one winner; the loser sees a
	// conflict (or finds the row already linked) and re-reads by subject.
	if errors.Is(err, store.ErrSubjectExists) || errors.Is(err, store.ErrUserNotFound) {
		user, retryErr := users.GetBySubject(ctx, subject)
		if retryErr == nil {
			return user, nil
		}
	}

	return nil, fmt.Errorf("failed to link account: %w", err)
}
