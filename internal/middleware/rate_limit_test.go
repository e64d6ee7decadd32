package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow("ws:1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow("ws:1") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentClients(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("ws:1") {
			t.Errorf("Client 1 request %d should be allowed", i+1)
		}
	}

	if rl.Allow("ws:1") {
		t.Error("Client 1 should be rate limited")
	}

	// Client 2 still has its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("ws:2") {
			t.Errorf("Client 2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiterWithConfig(0, 0)
	defer rl.Stop()

	if rl.requestsPerMinute != DefaultRateLimit {
		t.Errorf("Expected default rate %d, got %d", DefaultRateLimit, rl.requestsPerMinute)
	}
	if rl.burstSize != DefaultBurstSize {
		t.Errorf("Expected default burst %d, got %d", DefaultBurstSize, rl.burstSize)
	}

	// Stop is idempotent
	rl.Stop()
}

func TestRateLimiter_EvictStale(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	rl.Allow("ip:10.0.0.1")
	rl.evictStale(time.Now())
	if rl.Size() != 1 {
		t.Fatalf("Expected fresh limiter to be kept, got %d", rl.Size())
	}

	rl.evictStale(time.Now().Add(LimiterTTL + time.Second))
	if rl.Size() != 0 {
		t.Errorf("Expected stale limiter to be evicted, got %d", rl.Size())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(60, 2)
	defer rl.Stop()

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/kpis", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		last = httptest.NewRecorder()
		c := e.NewContext(req, last)
		c.Set(string(WorkspaceIDKey), int32(1))

		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if i < 2 && last.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, last.Code)
		}
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if last.Header().Get("X-RateLimit-Limit") != "60" {
		t.Errorf("Expected X-RateLimit-Limit 60, got %s", last.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitMiddleware_KeysByIPWithoutWorkspace(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for _, addr := range []string{"192.0.2.1:1000", "192.0.2.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		_ = handler(e.NewContext(req, rec))
		codes = append(codes, rec.Code)
	}

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("Client %d: expected 200, got %d", i+1, code)
		}
	}
}
