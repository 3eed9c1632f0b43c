package auth

import (
	"context"
	"strings"
	"time"

	"pinvent/internal/cache"
)

// Limit is a fixed-window request budget.
type Limit struct {
	Max    int64
	Window time.Duration
}

var (
	// LoginLimit bounds login attempts per client IP.
	LoginLimit = Limit{Max: 10, Window: 10 * time.Minute}
	// ForgotPasswordLimit bounds reset emails per address.
	ForgotPasswordLimit = Limit{Max: 3, Window: 15 * time.Minute}
)

// RateLimiter counts attempts in redis. It fails open when redis is down.
type RateLimiter struct {
	cache *cache.Client
}

// NewRateLimiter creates a limiter on top of the cache client.
func NewRateLimiter(cache *cache.Client) *RateLimiter {
	return &RateLimiter{cache: cache}
}

// AllowLogin registers a login attempt from ip.
func (r *RateLimiter) AllowLogin(ctx context.Context, ip string) (bool, time.Duration) {
	return r.allow(ctx, "login_attempts:"+ip, LoginLimit)
}

// AllowForgotPassword registers a reset request for email.
func (r *RateLimiter) AllowForgotPassword(ctx context.Context, email string) (bool, time.Duration) {
	return r.allow(ctx, "reset_attempts:"+strings.ToLower(strings.TrimSpace(email)), ForgotPasswordLimit)
}

func (r *RateLimiter) allow(ctx context.Context, key string, limit Limit) (bool, time.Duration) {
	if r == nil {
		return true, 0
	}
	count, ttl := r.cache.IncrWindow(ctx, key, limit.Window)
	if count > limit.Max {
		return false, ttl
	}
	return true, 0
}
