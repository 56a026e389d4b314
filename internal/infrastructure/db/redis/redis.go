package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// commandTimeout bounds dialing and every command. A login request waits on
// at most two throttle commands, so this is kept well under the HTTP timeout.
const commandTimeout = 2 * time.Second

// Config locates the Redis instance holding login-failure counters.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

func clientOptions(cfg Config) *redis.Options {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = commandTimeout
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   1,
	}
}

// Connect opens the throttle store and checks it answers. Callers treat an
// error as "throttling off" and keep serving logins without it.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := clientOptions(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("login throttle store %s: %w", cfg.Addr, err)
	}
	return client, nil
}
