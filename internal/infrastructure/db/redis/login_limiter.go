package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LoginLimiter counts failed logins per email and per client IP in fixed
// windows. Keys: login:email:<email>, login:ip:<ip>.
type LoginLimiter struct {
	client      redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter allows maxAttempts failures per window before rejecting.
func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow returns domain.ErrRateLimited once either counter has reached the limit.
func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) error {
	for _, key := range l.keys(email, ip) {
		count, err := l.client.Get(ctx, key).Int64()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("login limiter get: %w", err)
		}
		if count >= int64(l.maxAttempts) {
			return domain.ErrRateLimited
		}
	}
	return nil
}

// RecordFailure increments both counters. The window starts at the first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email, ip string) error {
	for _, key := range l.keys(email, ip) {
		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("login limiter incr: %w", err)
		}
		if count == 1 {
			if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
				return fmt.Errorf("login limiter expire: %w", err)
			}
		}
	}
	return nil
}

// Reset clears the email counter after a successful login. The IP counter is
// left to expire.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, emailKey(email)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}

func (l *LoginLimiter) keys(email, ip string) []string {
	keys := []string{emailKey(email)}
	if ip != "" {
		keys = append(keys, "login:ip:"+ip)
	}
	return keys
}

func emailKey(email string) string { return "login:email:" + email }
