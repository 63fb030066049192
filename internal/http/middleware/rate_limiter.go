package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"

	msgRateLimited = "rate limit exceeded"
)

// RateLimiter applies a token bucket per client IP. The proxy sits in
// front of everything, so the remote address is the only stable key
// available before classification.
type RateLimiter struct {
	limiters sync.Map // ip -> *rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, exists := rl.limiters.Load(key)
	if !exists {
		limiter, _ = rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	}
	return limiter.(*rate.Limiter)
}

// Allow reports whether a request for the given key fits in its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				c.Response().Header().Set(headerRateLimitLimit, strconv.Itoa(rl.burst))
				c.Response().Header().Set(headerRateLimitRemaining, "0")
				c.Response().Header().Set(headerRetryAfter, "1")

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": msgRateLimited,
				})
			}

			return next(c)
		}
	}
}
