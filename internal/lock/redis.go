// Package lock provides Redis backed advisory locks that serialize the
// check-then-write sequence of reservations sharing a room or teacher
// across scheduler instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockTimeout is returned when a key stays held past the wait budget.
var ErrLockTimeout = errors.New("lock: timed out waiting for lock")

const (
	defaultTTL       = 10 * time.Second
	defaultWait      = 5 * time.Second
	defaultRetryStep = 25 * time.Millisecond
)

// releaseScript deletes a key only while it still holds the caller's token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Options tune lock acquisition.
type Options struct {
	// TTL bounds how long a crashed holder can block others.
	TTL time.Duration
	// Wait bounds how long Acquire retries a held key.
	Wait time.Duration
	// RetryStep is the pause between attempts.
	RetryStep time.Duration
}

// RedisLocker acquires SET NX PX locks with a random token per acquisition.
type RedisLocker struct {
	client goredis.Cmdable
	opts   Options
	logger *zap.Logger
}

// NewRedisLocker wraps a connected client.
func NewRedisLocker(client goredis.Cmdable, opts Options, logger *zap.Logger) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Wait <= 0 {
		opts.Wait = defaultWait
	}
	if opts.RetryStep <= 0 {
		opts.RetryStep = defaultRetryStep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, opts: opts, logger: logger.With(zap.String("component", "redis_lock"))}
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Acquire takes every key or none. Keys are taken in sorted order so two
// callers sharing keys cannot deadlock.
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	if len(keys) == 0 {
		return func() {}, nil
	}

	token := uuid.NewString()
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquireOne(ctx, key, token); err != nil {
			l.release(held, token)
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		held = append(held, key)
	}

	return func() { l.release(held, token) }, nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.opts.Wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		timer := time.NewTimer(l.opts.RetryStep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// release runs on a fresh context so a canceled request still frees its keys.
func (l *RedisLocker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", zap.String("key", keys[i]), zap.Error(err))
		}
	}
}

func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
