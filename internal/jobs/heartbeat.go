// Package jobs hosts the background workers of the service. They run in
// their own execution domain, so their database pools are disjoint from
// the ones serving HTTP requests.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/duvethq/duvet-api/internal/dbaccess"
)

// HeartbeatConfig holds configuration for the heartbeat runner
type HeartbeatConfig struct {
	// Interval between beats. If zero, defaults to 30 seconds.
	Interval time.Duration

	// Key is the Redis key the liveness timestamp is written to.
	// If empty, defaults to "duvet:heartbeat".
	Key string

	// TTL bounds how long a beat stays fresh. A stale or missing key
	// means the service stopped beating. If zero, defaults to three
	// intervals.
	TTL time.Duration
}

// AdminSessions is the slice of the database access service the
// heartbeat needs: a maintenance-role session that bypasses tenant
// row visibility.
type AdminSessions interface {
	WithSession(ctx context.Context, role dbaccess.Role, fn dbaccess.SessionFn) error
}

// Heartbeat periodically proves the service can reach its dependencies:
// one trivial query on an admin session and one Redis write per beat.
type Heartbeat struct {
	sessions AdminSessions
	redis    *redis.Client
	config   HeartbeatConfig
	logger   *slog.Logger

	// instanceID distinguishes processes sharing one Redis: the beat
	// value records which instance wrote it last.
	instanceID string

	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewHeartbeat creates a heartbeat runner. The Redis client may be nil,
// in which case only database liveness is checked.
func NewHeartbeat(sessions AdminSessions, rdb *redis.Client, config HeartbeatConfig, logger *slog.Logger) *Heartbeat {
	if config.Interval == 0 {
		config.Interval = 30 * time.Second
	}
	if config.Key == "" {
		config.Key = "duvet:heartbeat"
	}
	if config.TTL == 0 {
		config.TTL = 3 * config.Interval
	}

	return &Heartbeat{
		sessions:   sessions,
		redis:      rdb,
		config:     config,
		logger:     logger,
		instanceID: uuid.New().String(),
	}
}

// Start launches the heartbeat loop. The loop runs until Stop is called
// or the given context is canceled.
func (h *Heartbeat) Start(ctx context.Context) {
	ctx, h.cancelFunc = context.WithCancel(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(h.config.Interval)
		defer ticker.Stop()

		// First beat immediately, so a broken dependency surfaces at
		// startup instead of one interval later.
		h.beat(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.beat(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight beat to finish.
func (h *Heartbeat) Stop() {
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
	h.wg.Wait()
}

// beat performs one liveness round. Failures are logged, never fatal:
// the next tick retries.
func (h *Heartbeat) beat(ctx context.Context) {
	err := h.sessions.WithSession(ctx, dbaccess.RoleAdmin, func(ctx context.Context, s *dbaccess.Session) error {
		_, err := s.Exec(ctx, "SELECT 1")
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.logger.Warn("heartbeat database check failed", "error", err)
		return
	}

	if h.redis != nil {
		value := h.instanceID + " " + time.Now().UTC().Format(time.RFC3339)
		if err := h.redis.Set(ctx, h.config.Key, value, h.config.TTL).Err(); err != nil {
			if ctx.Err() != nil {
				return
			}
			h.logger.Warn("heartbeat redis write failed", "error", err)
			return
		}
	}

	h.logger.Debug("heartbeat ok")
}
