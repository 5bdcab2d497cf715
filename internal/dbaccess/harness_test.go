package dbaccess_test

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duvethq/duvet-api/internal/dbaccess"
)

// execRecord captures one statement issued through a fake connection.
type execRecord struct {
	sql  string
	args []any
}

// fakeConn is an in-memory Conn that records statements and releases.
type fakeConn struct {
	pool     *fakePool
	mu       sync.Mutex
	execs    []execRecord
	released int
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, execRecord{sql: sql, args: args})
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, execRecord{sql: sql, args: args})
	return nil, pgx.ErrNoRows
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, execRecord{sql: sql, args: args})
	return errRow{err: pgx.ErrNoRows}
}

func (c *fakeConn) Release() {
	c.mu.Lock()
	c.released++
	c.mu.Unlock()
	c.pool.release()
}

func (c *fakeConn) execSQL() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.execs))
	for i, e := range c.execs {
		out[i] = e.sql
	}
	return out
}

// errRow is a pgx.Row that always fails with a fixed error.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }

// fakePool is an in-memory Pool tracking outstanding leases.
type fakePool struct {
	mu          sync.Mutex
	acquires    int
	outstanding int
	closed      bool
	conns       []*fakeConn

	// exhausted makes Acquire behave like a pool that cannot produce a
	// connection before the acquisition deadline.
	exhausted bool
}

func (p *fakePool) Acquire(ctx context.Context) (dbaccess.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exhausted {
		return nil, context.DeadlineExceeded
	}
	p.acquires++
	p.outstanding++
	conn := &fakeConn{pool: p}
	p.conns = append(p.conns, conn)
	return conn, nil
}

func (p *fakePool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePool) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outstanding--
}

// leased reports how many connections are currently out of the pool.
// The pool's available count is restored exactly when this is zero.
func (p *fakePool) leased() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// fakeOpener builds fakePools and counts opens per credentials bundle.
type fakeOpener struct {
	mu    sync.Mutex
	opens int
	pools []*fakePool

	// failures makes the next N opens fail with the given error.
	failures int
	failErr  error
}

func (o *fakeOpener) open(ctx context.Context, creds dbaccess.Credentials) (dbaccess.Pool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failures > 0 {
		o.failures--
		return nil, o.failErr
	}
	o.opens++
	pool := &fakePool{}
	o.pools = append(o.pools, pool)
	return pool, nil
}

func (o *fakeOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

func (o *fakeOpener) lastPool() *fakePool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pools) == 0 {
		return nil
	}
	return o.pools[len(o.pools)-1]
}
