// Package cache holds the Redis-backed read models that sit in front of the
// relational store. Every cache is optional: callers treat a nil cache as a
// permanent miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/ghuser/invoiceledger/pkg/config"
	"github.com/ghuser/invoiceledger/pkg/telemetry"
)

const pingTimeout = 2 * time.Second

// RedisClient is the shared connection pool behind every cache.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to cfg.RedisURL, instruments every command and
// verifies connectivity before returning.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*RedisClient, error) {
	opts, err := redisOptions(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	rdb.AddHook(newMetricsHook(telemetry.Meter("github.com/ghuser/invoiceledger/pkg/cache")))

	rc := &RedisClient{client: rdb}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rc, nil
}

// redisOptions parses url and applies pool sizing for a read-through cache:
// short timeouts, since a slow cache is treated as a miss.
func redisOptions(url string) (*redis.Options, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 2
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.PoolTimeout = 2 * time.Second
	return opts, nil
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the pool. Safe on a nil client.
func (r *RedisClient) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// metricsHook counts commands and failures per command name. redis.Nil is a
// miss, not a failure.
type metricsHook struct {
	commands metric.Int64Counter
	failures metric.Int64Counter
}

func newMetricsHook(m metric.Meter) *metricsHook {
	fallback := noop.NewMeterProvider().Meter("cache")
	commands, err := m.Int64Counter("cache.redis.commands",
		metric.WithDescription("Redis commands issued by the invoice cache"))
	if err != nil {
		commands, _ = fallback.Int64Counter("cache.redis.commands")
	}
	failures, err := m.Int64Counter("cache.redis.failures",
		metric.WithDescription("Redis commands that failed for reasons other than a miss"))
	if err != nil {
		failures, _ = fallback.Int64Counter("cache.redis.failures")
	}
	return &metricsHook{commands: commands, failures: failures}
}

func (h *metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.record(ctx, cmd.Name(), err)
		return err
	}
}

func (h *metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		for _, cmd := range cmds {
			h.record(ctx, cmd.Name(), cmd.Err())
		}
		return err
	}
}

func (h *metricsHook) record(ctx context.Context, name string, err error) {
	attrs := metric.WithAttributes(attribute.String("command", name))
	h.commands.Add(ctx, 1, attrs)
	if err != nil && !errors.Is(err, redis.Nil) {
		h.failures.Add(ctx, 1, attrs)
	}
}
