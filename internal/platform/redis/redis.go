// Package redis builds the Redis client used for liveness reporting.
// It mirrors the database credential policy: configuration is validated
// when a client is requested, never at load time, so deployments that
// run without Redis pay nothing for it.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/duvethq/duvet-api/internal/config"
)

// Validate checks that the Redis settings are complete.
func Validate(cfg config.RedisConfig) error {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "host")
	}
	if cfg.Port == "" {
		missing = append(missing, "port")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete redis configuration: missing %v", missing)
	}
	return nil
}

// NewClient creates a Redis client and verifies connectivity with a ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(cfg.Host, cfg.Port),
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		closeErr := client.Close()
		return nil, errors.Join(fmt.Errorf("redis ping failed: %w", err), closeErr)
	}

	return client, nil
}
