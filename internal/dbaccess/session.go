package dbaccess

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duvethq/duvet-api/internal/domain"
	"github.com/duvethq/duvet-api/internal/platform/logger"
)

// Session is one leased database session, scoped to a single logical
// operation. It implements store.Querier, so stores can be bound
// directly to it. The underlying connection goes back to the pool when
// the WithSession block exits, on every exit path.
type Session struct {
	conn    Conn
	role    Role
	stamped bool
	userID  int64
}

// Exec implements store.Querier.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.conn.Exec(ctx, sql, args...)
}

// Query implements store.Querier.
func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.conn.Query(ctx, sql, args...)
}

// QueryRow implements store.Querier.
func (s *Session) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.conn.QueryRow(ctx, sql, args...)
}

// Role returns the database role the session authenticates as.
func (s *Session) Role() Role { return s.role }

// StampedFor returns the user ID the session is stamped with, if any.
func (s *Session) StampedFor() (int64, bool) {
	return s.userID, s.stamped
}

// Stamp records the caller's identity on the session by invoking the
// set_current_user stored procedure, which row-level security policies
// read back via get_current_user(). The setting is session-scoped and
// dies with the lease.
//
// Stamp must run before any tenant-scoped query. A session stamps at
// most one user: re-stamping the same user is a no-op, re-stamping a
// different user returns ErrSessionStamped.
func (s *Session) Stamp(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == 0 {
		return errors.New("cannot stamp session without a user identity")
	}
	if s.stamped {
		if s.userID == user.ID {
			return nil
		}
		return ErrSessionStamped
	}

	if _, err := s.conn.Exec(ctx, "SELECT set_current_user($1)", user.ID); err != nil {
		return fmt.Errorf("failed to stamp session for user %d: %w", user.ID, err)
	}

	s.stamped = true
	s.userID = user.ID
	return nil
}

// SessionFn is the body of a scoped session. The session is only valid
// for the duration of the call.
type SessionFn func(ctx context.Context, s *Session) error

// WithSession leases a connection for the given role in the context's
// execution domain, runs fn with it, and returns the connection to the
// pool on every exit path: normal return, error, panic, cancellation.
//
// Waiting for a free connection is bounded by AcquireTimeout; hitting
// the bound returns ErrPoolExhausted. A caller-canceled context returns
// the context's error instead.
func (m *Manager) WithSession(ctx context.Context, role Role, fn SessionFn) error {
	handle, err := m.Acquire(ctx, role)
	if err != nil {
		return err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, AcquireTimeout)
	defer cancel()

	conn, err := handle.pool.Acquire(acquireCtx)
	if err != nil {
		// Distinguish caller cancellation from pool exhaustion: only a
		// deadline that we imposed is an exhausted pool.
		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("session acquisition deadline exceeded: %w", ctx.Err())
			}
			return fmt.Errorf("session acquisition canceled: %w", ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: no connection within %s for role %q",
				ErrPoolExhausted, AcquireTimeout, role)
		}
		return fmt.Errorf("failed to acquire connection for role %q: %w", role, err)
	}

	// The deferred release is the one guarantee this layer makes
	// unconditionally: the connection goes back even if fn panics.
	defer conn.Release()

	return fn(ctx, &Session{conn: conn, role: role})
}

// WithUnauthenticatedSession runs fn with an unstamped API-role session.
// Row-level security policies see no identity on such a session, so it
// only suits operations that are legitimately tenant-less (identity
// resolution, health checks). No default identity is ever inferred.
func (m *Manager) WithUnauthenticatedSession(ctx context.Context, fn SessionFn) error {
	return m.WithSession(ctx, RoleAPI, fn)
}

// WithTenantSession runs fn with an API-role session stamped for the
// given user before fn observes it. Every query fn issues is subject to
// the row-level security predicate for that user.
func (m *Manager) WithTenantSession(ctx context.Context, user *domain.User, fn SessionFn) error {
	return m.WithSession(ctx, RoleAPI, func(ctx context.Context, s *Session) error {
		if err := s.Stamp(ctx, user); err != nil {
			return err
		}
		logger.FromContext(ctx).Debug("session stamped",
			"user_id", user.ID,
			"role", string(s.role))
		return fn(ctx, s)
	})
}
