package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/merraine/merraine-api/internal/config"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

// RateLimit applies a per-client token bucket allowing cfg.Requests per
// cfg.Interval. A zero config is a passthrough.
func RateLimit(cfg config.RateLimitConfig, message string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return newClientLimiter(cfg, time.Now).middleware(message)
}

// clientLimiter keeps one bucket per client key. Buckets idle for longer than
// a full refill are dropped, since a fresh bucket is equivalent.
type clientLimiter struct {
	requests  int
	every     rate.Limit
	idle      time.Duration
	now       func() time.Time
	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(cfg config.RateLimitConfig, now func() time.Time) *clientLimiter {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	return &clientLimiter{
		requests:  cfg.Requests,
		every:     rate.Every(perRequest),
		idle:      cfg.Interval,
		now:       now,
		clients:   map[string]*clientBucket{},
		lastSweep: now(),
	}
}

// allow consumes a token for key and returns the remaining tokens and, when
// rejected, how long until the next token.
func (l *clientLimiter) allow(key string) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, b := range l.clients {
			if now.Sub(b.lastSeen) >= l.idle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	bucket, ok := l.clients[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.every, l.requests)}
		l.clients[key] = bucket
	}
	bucket.lastSeen = now

	allowed := bucket.limiter.AllowN(now, 1)
	tokens := bucket.limiter.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))
	if allowed {
		return true, remaining, 0
	}
	wait := time.Duration((1 - tokens) / float64(l.every) * float64(time.Second))
	return false, remaining, wait
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *clientLimiter) middleware(message string) echo.MiddlewareFunc {
	limit := strconv.Itoa(l.requests)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, remaining, wait := l.allow(ClientKey(c))

			header := c.Response().Header()
			header.Set(HeaderRateLimitLimit, limit)
			header.Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))

			if !allowed {
				retryAfter := int(math.Ceil(wait.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				header.Set(HeaderRetryAfter, strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"status":      "error",
					"message":     message,
					"retry_after": retryAfter,
				})
			}

			return next(c)
		}
	}
}

// ClientKey identifies the caller: the first X-Forwarded-For hop, then
// X-Real-IP, then the connection address.
func ClientKey(c echo.Context) string {
	req := c.Request()
	if forwarded := req.Header.Get(echo.HeaderXForwardedFor); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(req.Header.Get(echo.HeaderXRealIP)); realIP != "" {
		return realIP
	}
	return c.RealIP()
}
