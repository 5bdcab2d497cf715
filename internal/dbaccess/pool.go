package dbaccess

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duvethq/duvet-api/internal/store"
)

// Fixed pool policy. Deliberately not tunable per call: every (role,
// domain) pool in the process behaves identically.
const (
	// basePoolSize is the number of connections the pool is sized for.
	basePoolSize = 5

	// overflowAllowance is how many connections beyond the base size may
	// be opened under burst load.
	overflowAllowance = 10

	// AcquireTimeout bounds how long a session lease may wait for a free
	// connection before failing with ErrPoolExhausted.
	AcquireTimeout = 30 * time.Second
)

// Conn is one leased database connection. Release returns it to its pool.
type Conn interface {
	store.Querier
	Release()
}

// Pool is the subset of a connection pool the manager depends on.
// Production pools are pgx pools; tests substitute in-memory fakes.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Close()
}

// PoolHandle binds a pool to the (role, domain) pair that owns it.
// Handles are cached by the Manager; two acquires for the same pair
// observe the identical handle.
type PoolHandle struct {
	role   Role
	domain DomainKey
	pool   Pool
}

// Role returns the database role the handle's connections authenticate as.
func (h *PoolHandle) Role() Role { return h.role }

// Domain returns the execution domain the handle belongs to.
func (h *PoolHandle) Domain() DomainKey { return h.domain }

// PoolOpener opens a connection pool for a validated credentials bundle.
// The manager's default opener builds a pgx pool; tests inject fakes.
type PoolOpener func(ctx context.Context, creds Credentials) (Pool, error)

// pgxPool adapts *pgxpool.Pool to the Pool interface.
type pgxPool struct {
	pool *pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (p pgxPool) Close() {
	p.pool.Close()
}

// openPGXPool is the production PoolOpener. The returned pool pings each
// connection before handing it out, so a connection the server dropped
// while idle is discarded and replaced without the caller ever seeing it.
func openPGXPool(ctx context.Context, creds Credentials) (Pool, error) {
	cfg, err := pgxpool.ParseConfig(creds.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	cfg.MaxConns = basePoolSize + overflowAllowance
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		return conn.Ping(ctx) == nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return pgxPool{pool: pool}, nil
}
