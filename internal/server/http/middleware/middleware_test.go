package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/polkiloo/withdrawal/internal/server/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.POST("/api/bank/withdraw", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/bank/withdraw?accountId=1", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q", buf.String())
	}
	if entry["msg"] != "http request" || entry["method"] != "POST" || entry["path"] != "/api/bank/withdraw" {
		t.Fatalf("unexpected log entry %v", entry)
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status to be logged, got %v", entry["status"])
	}
	if entry["level"] != "WARN" {
		t.Fatalf("expected client errors at warn level, got %v", entry["level"])
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		router := gin.New()
		router.Use(RequestLogger(logger))
		router.GET("/", func(c *gin.Context) { c.Status(tc.status) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Idempotency-Key", "k-1")
		router.ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON log line, got %q", buf.String())
		}
		if entry["level"] != tc.level {
			t.Errorf("status %d: expected level %s, got %v", tc.status, tc.level, entry["level"])
		}
		if entry["idempotency_key"] != "k-1" {
			t.Errorf("expected idempotency key to be logged, got %v", entry["idempotency_key"])
		}
	}
}

func newLimitedRouter(store *LimiterStore) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(store))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func get(router *gin.Engine, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitRejectsAboveBurst(t *testing.T) {
	clk := clockwork.NewFakeClock()
	router := newLimitedRouter(NewLimiterStore(1, 2, clk))

	for i := 0; i < 2; i++ {
		if resp := get(router, "10.0.0.1:1000"); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.Code)
		}
	}

	resp := get(router, "10.0.0.1:1000")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp.Header().Get("Retry-After"))
	}
	var problem dto.ProblemResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil || problem.Code != "Request.RateLimited" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}

	if resp := get(router, "10.0.0.2:1000"); resp.Code != http.StatusOK {
		t.Fatalf("other clients must have their own budget, got %d", resp.Code)
	}

	clk.Advance(time.Second)
	if resp := get(router, "10.0.0.1:1000"); resp.Code != http.StatusOK {
		t.Fatalf("expected budget to refill, got %d", resp.Code)
	}
}

func TestRateLimitZeroBurstRejects(t *testing.T) {
	router := newLimitedRouter(NewLimiterStore(1, 0, clockwork.NewFakeClock()))
	if resp := get(router, "10.0.0.1:1000"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
}

func TestLimiterStoreCleanup(t *testing.T) {
	clk := clockwork.NewFakeClock()
	store := NewLimiterStore(1, 1, clk)

	first := store.Get("a")
	if store.Get("a") != first {
		t.Fatal("expected the same limiter for a known key")
	}
	store.Get("b")

	clk.Advance(defaultIdleTTL / 2)
	store.Get("b")
	clk.Advance(defaultIdleTTL/2 + time.Second)
	store.Cleanup()

	if store.Len() != 1 {
		t.Fatalf("expected idle limiter to be dropped, got %d entries", store.Len())
	}
	if store.Get("a") == first {
		t.Fatal("expected a fresh limiter after cleanup")
	}
}

func TestLimiterStoreJanitor(t *testing.T) {
	clk := clockwork.NewFakeClock()
	store := NewLimiterStore(1, 1, clk)
	store.Get("a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.RunJanitor(ctx)
	}()

	if err := clk.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("janitor did not start: %v", err)
	}
	clk.Advance(defaultIdleTTL + defaultCleanupEvery)

	deadline := time.After(time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("expected janitor to drop idle limiter")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected janitor to stop")
	}
}
