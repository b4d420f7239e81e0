package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL — how long an IP may stay quiet before its limiter is
// evicted. A limiter idle this long has fully refilled its burst, so
// dropping and recreating it loses nothing, and the map stays bounded
// under client-IP churn.
const limiterIdleTTL = time.Hour

type ipLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ForgotPasswordRateLimit allows 3 forgot-password requests per hour per
// client IP.
func ForgotPasswordRateLimit() gin.HandlerFunc {
	return forgotPasswordRateLimit(time.Now)
}

func forgotPasswordRateLimit(now func() time.Time) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		limiters  = map[string]*ipLimiter{}
		lastPrune = now()
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		t := now()
		if t.Sub(lastPrune) >= limiterIdleTTL {
			for k, v := range limiters {
				if t.Sub(v.lastSeen) >= limiterIdleTTL {
					delete(limiters, k)
				}
			}
			lastPrune = t
		}
		l, ok := limiters[ip]
		if !ok {
			l = &ipLimiter{lim: rate.NewLimiter(rate.Limit(3.0/3600.0), 3)}
			limiters[ip] = l
		}
		l.lastSeen = t
		return l.lim
	}

	return func(c *gin.Context) {
		if !limiterFor(clientIP(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" && !strings.EqualFold(fwd, "unknown") {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := c.GetHeader("X-Real-IP"); real != "" && !strings.EqualFold(real, "unknown") {
		return real
	}
	return c.ClientIP()
}
