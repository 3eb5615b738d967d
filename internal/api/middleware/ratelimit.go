package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
	"github.com/welldanyogia/elite-estate/internal/logger"
	"golang.org/x/time/rate"
)

// Cleanup defaults for RunCleanup
const (
	DefaultCleanupInterval = 10 * time.Minute
	DefaultMaxIdle         = 30 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages rate limiters per IP address
type IPRateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	retry    time.Duration
	now      func() time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	retry := time.Minute
	if r > 0 && r != rate.Inf {
		retry = time.Duration(float64(time.Second) / float64(r))
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		retry:    retry,
		now:      time.Now,
	}
}

// NewPerMinuteLimiter allows perMinute requests per IP per minute, all of
// which may arrive at once
func NewPerMinuteLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return NewIPRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// GetLimiter returns the rate limiter for the given IP
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.visitors[ip] = v
	}
	v.lastSeen = i.now()

	return v.limiter
}

// CleanupOldEntries forgets IPs not seen for maxIdle
func (i *IPRateLimiter) CleanupOldEntries(maxIdle time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := i.now().Add(-maxIdle)
	for ip, v := range i.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(i.visitors, ip)
		}
	}
}

// Len returns the number of tracked IPs
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.visitors)
}

// RunCleanup prunes idle entries every interval until ctx is done
func (i *IPRateLimiter) RunCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.CleanupOldEntries(maxIdle)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429
func RateLimit(limiter *IPRateLimiter, secLog *logger.SecurityLogger) echo.MiddlewareFunc {
	retryAfter := strconv.Itoa(int(limiter.retry.Round(time.Second).Seconds()))
	if retryAfter == "0" {
		retryAfter = "1"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !limiter.GetLimiter(ip).Allow() {
				secLog.RateLimitExceeded(ip, c.Path())

				c.Response().Header().Set("Retry-After", retryAfter)
				return echo.NewHTTPError(http.StatusTooManyRequests, map[string]string{
					"error":       "rate limit exceeded",
					"code":        apperrors.CodeRateLimited,
					"retry_after": retryAfter,
				})
			}

			return next(c)
		}
	}
}
