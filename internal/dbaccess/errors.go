package dbaccess

import "errors"

// Errors returned by the database access layer.
var (
	// ErrMissingCredentials indicates an incomplete credentials bundle for
	// a role. This is a deployment defect: it is reported at the first
	// acquire for the role, is never retried, and leaves nothing cached.
	ErrMissingCredentials = errors.New("missing database credentials")

	// ErrUnknownRole indicates a role the manager has no credentials for.
	ErrUnknownRole = errors.New("unknown database role")

	// ErrNoDomain indicates that the context does not carry an execution
	// domain key. Domains are installed at startup via WithDomain; a
	// missing key is a wiring bug, not a runtime condition to retry.
	ErrNoDomain = errors.New("context carries no execution domain")

	// ErrDomainClosed indicates an acquire that lost a race with
	// CloseDomain: the domain was discarded while the pool open was in
	// flight. The freshly opened pool is closed rather than handed out.
	ErrDomainClosed = errors.New("execution domain closed")

	// ErrPoolExhausted indicates that no connection could be leased within
	// the acquisition timeout. Callers may retry with backoff; this layer
	// does not retry internally.
	ErrPoolExhausted = errors.New("database connection pool exhausted")

	// ErrSessionStamped indicates an attempt to stamp a session that is
	// already stamped for a different user. Sessions are never reused
	// across users; take a fresh session instead.
	ErrSessionStamped = errors.New("session already stamped for another user")
)
