package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles login attempts per email and client address,
// backed by a Redis counter with a sliding expiry window.
// Key format: login_attempts:<email>:<ip>
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow counts the attempt and reports whether it is within the budget.
// The counter is incremented even for attempts that will go on to fail
// credential verification; that is the point of the guard.
func (l *LoginLimiter) Allow(ctx context.Context, email, clientIP string) (bool, error) {
	key := l.key(email, clientIP)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("login limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("login limit expire: %w", err)
		}
	}
	return n <= int64(l.maxAttempts), nil
}

func (l *LoginLimiter) key(email, clientIP string) string {
	return fmt.Sprintf("login_attempts:%s:%s", strings.ToLower(email), clientIP)
}
