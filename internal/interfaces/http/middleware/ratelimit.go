package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cyclome/pkg/errors"
)

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo contains current rate limit state for a given key.
type RateLimitInfo struct {
	// Limit is the bucket size.
	Limit int
	// Remaining is the number of whole tokens left after this request.
	Remaining int
	// ResetAt is when the next token becomes available.
	ResetAt time.Time
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int

	// KeyFunc extracts the rate limit key.  Defaults to the client IP.
	KeyFunc func(c *gin.Context) string

	// SkipPaths bypass rate limiting.
	SkipPaths []string

	// IdleTTL drops limiters not used for this long.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns a sensible default rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		SkipPaths:         []string{"/api/health", "/healthz", "/readyz", "/metrics"},
		IdleTTL:           10 * time.Minute,
	}
}

func defaultKeyFunc(c *gin.Context) string {
	return c.ClientIP()
}

// ─────────────────────────────────────────────────────────────────────────────
// Per-client token buckets
// ─────────────────────────────────────────────────────────────────────────────

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one rate.Limiter per key.  Idle entries are swept
// during Allow at most once per IdleTTL, so no background goroutine is needed.
type ClientLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewClientLimiter creates a per-client token bucket limiter.
func NewClientLimiter(requestsPerSecond float64, burst int, idleTTL time.Duration) *ClientLimiter {
	if burst <= 0 {
		burst = int(math.Ceil(requestsPerSecond))
		if burst < 1 {
			burst = 1
		}
	}
	return &ClientLimiter{
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		idleTTL: idleTTL,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow consumes one token for key if available.
func (l *ClientLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.Lock()
	l.sweepLocked(now)
	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	l.mu.Unlock()

	allowed := cl.limiter.AllowN(now, 1)
	tokens := cl.limiter.TokensAt(now)

	info := RateLimitInfo{
		Limit:     l.burst,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetAt:   now,
	}
	if tokens < 1 && l.limit > 0 {
		wait := time.Duration((1 - tokens) / float64(l.limit) * float64(time.Second))
		info.ResetAt = now.Add(wait)
	}
	return allowed, info
}

func (l *ClientLimiter) sweepLocked(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) >= l.idleTTL {
			delete(l.clients, key)
		}
	}
}

// ClientCount returns the number of tracked clients.
func (l *ClientLimiter) ClientCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// RateLimit rejects requests over the per-client budget with 429 and a
// Retry-After header.  Every response carries the X-RateLimit-* headers.
func RateLimit(limiter RateLimiter, config RateLimitConfig, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = defaultKeyFunc
	}
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}

	return func(c *gin.Context) {
		if skipSet[c.Request.URL.Path] {
			c.Next()
			return
		}

		allowed, info := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(math.Ceil(time.Until(info.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			path := c.FullPath()
			if path == "" {
				path = "unmatched"
			}
			prometheus.RecordRateLimited(metrics, path)

			err := errors.RateLimit("rate limit exceeded, please retry later")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": err.Message,
				"code":  err.Code.String(),
			})
			return
		}
		c.Next()
	}
}

//Personal.AI order the ending
