package dbaccess

import (
	"context"
	"log/slog"
	"sync"

	"github.com/duvethq/duvet-api/internal/config"
)

// DomainKey identifies one execution domain. Keys are opaque; callers
// choose them when they install a domain on a context at startup.
type DomainKey string

// domainContextKey is the private context key for the current domain.
type domainContextKey struct{}

// WithDomain returns a copy of ctx bound to the given execution domain.
// Every piece of work that touches the database runs under a context
// descended from one WithDomain call.
func WithDomain(ctx context.Context, key DomainKey) context.Context {
	return context.WithValue(ctx, domainContextKey{}, key)
}

// DomainFromContext returns the execution domain ctx is bound to.
func DomainFromContext(ctx context.Context) (DomainKey, bool) {
	key, ok := ctx.Value(domainContextKey{}).(DomainKey)
	return key, ok
}

// Manager is the composed database access service. It is constructed
// once at process start and passed by dependency injection to everything
// that needs the database; it is the only component that opens physical
// connections.
//
// Pools are created lazily per (role, domain) on first acquire. Within a
// domain, concurrent first acquires race safely: the first caller opens
// the pool and all callers observe the same handle.
type Manager struct {
	cfg      config.DatabaseConfig
	log      *slog.Logger
	openPool PoolOpener

	mu      sync.Mutex
	domains map[DomainKey]map[Role]*poolEntry
}

// poolEntry guards a single lazily-opened pool.
type poolEntry struct {
	once   sync.Once
	handle *PoolHandle
	err    error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithPoolOpener replaces the production pgx pool opener. Used by tests
// to run the manager against in-memory pools.
func WithPoolOpener(open PoolOpener) Option {
	return func(m *Manager) {
		m.openPool = open
	}
}

// NewManager creates the database access service for the given database
// configuration. No connections are opened until the first acquire.
func NewManager(cfg config.DatabaseConfig, log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		log:      log,
		openPool: openPGXPool,
		domains:  make(map[DomainKey]map[Role]*poolEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the pool handle for the given role in the context's
// execution domain, opening it on first use. Repeated acquires in the
// same domain return the identical handle; acquires from different
// domains never observe each other's handles.
//
// Returns ErrMissingCredentials if the role's bundle is incomplete. The
// check runs eagerly on every call until a pool exists, and a failed
// open caches nothing. An acquire whose open loses a race with a
// concurrent CloseDomain returns ErrDomainClosed.
func (m *Manager) Acquire(ctx context.Context, role Role) (*PoolHandle, error) {
	key, ok := DomainFromContext(ctx)
	if !ok {
		return nil, ErrNoDomain
	}

	creds, err := CredentialsFromConfig(m.cfg, role)
	if err != nil {
		return nil, err
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	pools, ok := m.domains[key]
	if !ok {
		pools = make(map[Role]*poolEntry)
		m.domains[key] = pools
	}
	entry, ok := pools[role]
	if !ok {
		entry = &poolEntry{}
		pools[role] = entry
	}
	m.mu.Unlock()

	// First caller opens the pool; everyone else waits and observes the
	// same result. The open happens outside the manager lock so other
	// domains are not blocked behind it.
	entry.once.Do(func() {
		pool, err := m.openPool(ctx, creds)
		if err != nil {
			entry.err = err
			return
		}
		entry.handle = &PoolHandle{role: role, domain: key, pool: pool}
		m.log.Info("opened connection pool",
			"role", string(role),
			"domain", string(key),
			"host", creds.Host,
			"database", creds.Database)
	})

	if entry.err != nil {
		// Do not cache failed opens: drop the entry so a later acquire
		// re-attempts from scratch.
		m.mu.Lock()
		if pools[role] == entry {
			delete(pools, role)
		}
		m.mu.Unlock()
		return nil, entry.err
	}

	// The open runs unlocked, so a concurrent CloseDomain may have
	// snapshotted the domain while this entry's handle was still nil.
	// Such a pool is untracked: close it here instead of leaking it.
	m.mu.Lock()
	registered := m.domains[key][role] == entry
	m.mu.Unlock()
	if !registered {
		entry.handle.pool.Close()
		return nil, ErrDomainClosed
	}

	return entry.handle, nil
}

// CloseDomain closes and forgets every pool owned by the given domain.
// Called when a domain's scheduler shuts down; handles from the domain
// must not be used afterwards.
func (m *Manager) CloseDomain(key DomainKey) {
	m.mu.Lock()
	pools := m.domains[key]
	delete(m.domains, key)
	m.mu.Unlock()

	for role, entry := range pools {
		if entry.handle != nil {
			entry.handle.pool.Close()
			m.log.Info("closed connection pool",
				"role", string(role),
				"domain", string(key))
		}
	}
}

// Close closes every pool in every domain. Called once at process
// shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	domains := m.domains
	m.domains = make(map[DomainKey]map[Role]*poolEntry)
	m.mu.Unlock()

	for _, pools := range domains {
		for _, entry := range pools {
			if entry.handle != nil {
				entry.handle.pool.Close()
			}
		}
	}
}
