package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestForgotPasswordRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/forgot-password", ForgotPasswordRateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", nil)
		req.Header.Set("X-Forwarded-For", ip)
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if code := hit("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: %d", i+1, code)
		}
	}
	if code := hit("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("burst exhausted, expected 429, got %d", code)
	}

	// Another client is unaffected.
	if code := hit("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("separate ip should pass, got %d", code)
	}
}

func TestForgotPasswordRateLimitEvictsIdleClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clock := time.Now()
	r := gin.New()
	r.POST("/api/auth/forgot-password", forgotPasswordRateLimit(func() time.Time { return clock }), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", nil)
		req.Header.Set("X-Forwarded-For", ip)
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if code := hit("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: %d", i+1, code)
		}
	}
	if code := hit("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("burst exhausted, expected 429, got %d", code)
	}

	// After a full idle window any request prunes stale entries; the
	// exhausted client comes back with a fresh limiter instead of a map
	// entry kept for the life of the process.
	clock = clock.Add(limiterIdleTTL + time.Minute)
	if code := hit("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("prune trigger should pass, got %d", code)
	}
	if code := hit("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("evicted client should start over, got %d", code)
	}
}
