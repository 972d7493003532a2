// Package ratelimit throttles failed logins per client and email using
// Redis counters.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed login attempts in a fixed window. A nil
// *LoginLimiter allows everything, which is how the server runs without
// Redis.
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if rdb == nil {
		return nil
	}
	return &LoginLimiter{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

func loginKey(clientIP, email string) string {
	return fmt.Sprintf("rate:login:%s:%s", clientIP, email)
}

// Allow reports whether another attempt is permitted.
func (l *LoginLimiter) Allow(ctx context.Context, clientIP, email string) (bool, error) {
	if l == nil {
		return true, nil
	}

	count, err := l.rdb.Get(ctx, loginKey(clientIP, email)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return count < l.maxAttempts, nil
}

// RecordFailure counts a failed attempt; the window starts at the first one.
func (l *LoginLimiter) RecordFailure(ctx context.Context, clientIP, email string) error {
	if l == nil {
		return nil
	}

	key := loginKey(clientIP, email)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, clientIP, email string) error {
	if l == nil {
		return nil
	}
	return l.rdb.Del(ctx, loginKey(clientIP, email)).Err()
}
