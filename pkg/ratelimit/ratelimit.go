// Package ratelimit enforces the per-tenant request budgets of the
// domain boundary.
package ratelimit

import (
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apierr "github.com/aiverse/datafabric/pkg/api/types/errors"
	"github.com/aiverse/datafabric/pkg/auth"
	"github.com/aiverse/datafabric/pkg/domain"
)

// Class partitions requests into separately budgeted groups.
type Class string

const (
	Read    Class = "read"
	Write   Class = "write"
	Compute Class = "compute"
)

// Limits are requests per minute per class.
type Limits struct {
	ReadsPerMinute   int
	WritesPerMinute  int
	ComputePerMinute int
}

// DefaultLimits are the platform budgets for this domain.
var DefaultLimits = Limits{
	ReadsPerMinute:   1000,
	WritesPerMinute:  100,
	ComputePerMinute: 50,
}

func (l Limits) perMinute(class Class) int {
	switch class {
	case Write:
		return l.WritesPerMinute
	case Compute:
		return l.ComputePerMinute
	}
	return l.ReadsPerMinute
}

type bucketKey struct {
	tenant domain.TenantContext
	class  Class
}

// Limiter holds one token bucket per (tenant, class).
type Limiter struct {
	limits Limits

	mu      sync.Mutex
	buckets map[bucketKey]*rate.Limiter
}

func NewLimiter(limits Limits) *Limiter {
	return &Limiter{limits: limits, buckets: map[bucketKey]*rate.Limiter{}}
}

// Allow reports whether the tenant has budget left in the class and
// consumes one token if so.
func (l *Limiter) Allow(tenant domain.TenantContext, class Class) bool {
	perMinute := l.limits.perMinute(class)
	if perMinute <= 0 {
		return true
	}

	key := bucketKey{tenant: tenant, class: class}
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		// burst equals the full minute budget, refilled continuously
		bucket = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	return bucket.Allow()
}

// Middleware enforces the class budget on a route. It must run after
// auth.Middleware.
func (l *Limiter) Middleware(class Class) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant, ok := auth.Tenant(c)
			if !ok {
				return apierr.Unauthorized("bearer token is required")
			}
			if !l.Allow(tenant, class) {
				return apierr.TooManyRequests(string(class))
			}
			return next(c)
		}
	}
}
