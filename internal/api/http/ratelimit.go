package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/config"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

const (
	visitorIdleTTL = 10 * time.Minute
	sweepThreshold = 1024
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// BookingRateLimiter throttles booking submissions per tenant user.
type BookingRateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

// NewBookingRateLimiter returns nil when throttling is disabled.
func NewBookingRateLimiter(cfg config.RateLimitConfig) *BookingRateLimiter {
	if cfg.BookingsPerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &BookingRateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(cfg.BookingsPerMinute)),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (l *BookingRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.visitors) >= sweepThreshold {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorIdleTTL {
				delete(l.visitors, k)
			}
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler keys on the authenticated principal, or the client IP when the
// route is public.
func (l *BookingRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil {
			return c.Next()
		}
		key := "ip:" + c.IP()
		if principal, ok := auth.PrincipalFromContext(c); ok {
			key = string(principal.TenantID) + ":" + principal.UserID
		}
		if !l.Allow(key) {
			return apperrors.NewTooManyRequests("too many booking attempts; slow down")
		}
		return c.Next()
	}
}
