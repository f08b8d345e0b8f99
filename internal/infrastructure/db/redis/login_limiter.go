package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 5
	defaultWindow      = 15 * time.Minute
)

// LoginLimiter counts failed logins per (username, client address) in Redis.
// Key format: login:fail:<username>:<sha256(client ip)>
type LoginLimiter struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// NewLoginLimiter creates a limiter that refuses further attempts after
// maxFailures failures inside window. Non-positive values use the defaults.
func NewLoginLimiter(client *redis.Client, maxFailures int, window time.Duration) *LoginLimiter {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginLimiter{client: client, maxFailures: int64(maxFailures), window: window}
}

// Allow reports whether another attempt is permitted.
func (l *LoginLimiter) Allow(ctx context.Context, username, clientIP string) (bool, error) {
	n, err := l.client.Get(ctx, failureKey(username, clientIP)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("login limiter get: %w", err)
	}
	return n < l.maxFailures, nil
}

// Failure records a failed attempt. The window starts at the first failure.
func (l *LoginLimiter) Failure(ctx context.Context, username, clientIP string) error {
	key := failureKey(username, clientIP)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter incr: %w", err)
	}
	return nil
}

// Success clears the failure counter.
func (l *LoginLimiter) Success(ctx context.Context, username, clientIP string) error {
	if err := l.client.Del(ctx, failureKey(username, clientIP)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}

func failureKey(username, clientIP string) string {
	sum := sha256.Sum256([]byte(clientIP))
	return fmt.Sprintf("login:fail:%s:%s", strings.ToLower(username), hex.EncodeToString(sum[:]))
}
