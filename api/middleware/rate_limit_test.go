package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2, nil)
	rl.now = func() time.Time { return now }
	handler := rl.Middleware(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/inventory/snapshot", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected burst to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/snapshot", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("other clients keep their own bucket, got %d", resp.Code)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") {
		t.Fatal("first request should pass")
	}
	if rl.allow("a") {
		t.Fatal("second request should be throttled")
	}
	now = now.Add(time.Second)
	if !rl.allow("a") {
		t.Fatal("bucket should refill after a second")
	}
}

func TestRateLimiterDisabledWithZeroRate(t *testing.T) {
	rl := NewRateLimiter(0, 0, nil)
	for i := 0; i < 50; i++ {
		if !rl.allow("a") {
			t.Fatalf("request %d throttled with limit disabled", i)
		}
	}
}

func TestPruneJobRemovesIdleVisitors(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 5, nil)
	rl.now = func() time.Time { return now }

	rl.allow("stale")
	now = now.Add(defaultVisitorIdle + time.Minute)
	rl.allow("fresh")

	job := NewPruneJob(rl)
	if job.Name() != "rate_limit_prune" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run prune: %v", err)
	}
	if rl.Len() != 1 {
		t.Fatalf("expected one visitor left, got %d", rl.Len())
	}
}

func TestClientIPIgnoresForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	req.Header.Set("X-Real-IP", "10.1.1.1")
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := clientIP(req); got != "192.168.1.5" {
		t.Fatalf("unexpected client ip %q", got)
	}

	req.RemoteAddr = "bare-addr"
	if got := clientIP(req); got != "bare-addr" {
		t.Fatalf("expected raw remote addr fallback, got %q", got)
	}
}

func TestRateLimiterRotatingForwardedForSharesBucket(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }
	handler := rl.Middleware(okHandler())

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/inventory/snapshot", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code == http.StatusOK {
			allowed++
		}
	}
	if allowed != 1 {
		t.Fatalf("expected a single request through, got %d", allowed)
	}
	if rl.Len() != 1 {
		t.Fatalf("expected one visitor, got %d", rl.Len())
	}
}

func TestRateLimiterBehindRealIPUsesForwardedClient(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, nil)
	rl.now = func() time.Time { return now }
	handler := chimiddleware.RealIP(rl.Middleware(okHandler()))

	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/inventory/snapshot", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("client %s should have its own bucket, got %d", forwarded, resp.Code)
		}
	}
	if rl.Len() != 2 {
		t.Fatalf("expected two visitors, got %d", rl.Len())
	}
}
