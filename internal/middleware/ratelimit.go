package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
)

// limiterRegistry is the teacher's single package-level
// `rate.NewLimiter` generalized into one limiter per client IP, since a
// single shared limiter throttles every caller together regardless of
// spec §5's per-client budget.
type limiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLimiterRegistry(window time.Duration, max int) *limiterRegistry {
	return &limiterRegistry{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(window / time.Duration(max)),
		burst:    max,
	}
}

func (r *limiterRegistry) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(r.rate, r.burst)
		r.limiters[key] = l
	}
	return l
}

// RateLimit builds the two-tier limiter of spec §5: a tight evaluation
// tier for POST /api/evaluate and a looser general tier for everything
// else, keyed by client IP.
func RateLimit(generalWindow time.Duration, generalMax int, evalWindow time.Duration, evalMax int) gin.HandlerFunc {
	general := newLimiterRegistry(generalWindow, generalMax)
	eval := newLimiterRegistry(evalWindow, evalMax)

	return func(c *gin.Context) {
		registry := general
		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/evaluate" {
			registry = eval
		}

		limiter := registry.get(c.ClientIP())
		if !limiter.Allow() {
			appErr := apperr.RateLimited("rate limit exceeded", int(generalWindow.Seconds()))
			c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
			c.JSON(appErr.Status(), gin.H{"error": "rate_limited", "message": appErr.Message})
			c.Abort()
			return
		}
		c.Next()
	}
}
