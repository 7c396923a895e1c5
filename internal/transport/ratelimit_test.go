package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anime-shed/ratemylooks/internal/config"
)

func TestIPLimiter_Allow(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	l := newIPLimiter(rateRule{name: "test", limit: 2, window: time.Hour}, now)

	for i := 0; i < 2; i++ {
		if _, ok := l.allow("1.2.3.4"); !ok {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	wait, ok := l.allow("1.2.3.4")
	if ok {
		t.Fatal("Third request should be limited")
	}
	if wait != 30*time.Minute {
		t.Errorf("Expected 30m until the next token, got %s", wait)
	}

	if _, ok := l.allow("5.6.7.8"); !ok {
		t.Error("Other clients must have their own bucket")
	}

	clock = clock.Add(30 * time.Minute)
	if _, ok := l.allow("1.2.3.4"); !ok {
		t.Error("Expected a refilled token after half the window")
	}
}

func TestIPLimiter_SweepsIdleClients(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	l := newIPLimiter(rateRule{name: "test", limit: 5, window: time.Minute}, now)

	l.allow("a")
	l.allow("b")
	if l.size() != 2 {
		t.Fatalf("Expected 2 buckets, got %d", l.size())
	}

	clock = clock.Add(2 * time.Minute)
	l.allow("c")
	if l.size() != 1 {
		t.Errorf("Expected idle buckets to be dropped, got %d", l.size())
	}
}

func TestRateLimit_GeneralLimit(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cfg := testConfig("http://127.0.0.1:1", "secret")
	cfg.RateLimitGeneral = 2
	stack := newTestStack(t, cfg, WithClock(func() time.Time { return clock }))

	for i := 0; i < 2; i++ {
		rec, _ := serve(stack.handler, httptest.NewRequest(http.MethodGet, "/api/analyze/formats", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec, out := serve(stack.handler, httptest.NewRequest(http.MethodGet, "/api/analyze/formats", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1800" {
		t.Errorf("Expected Retry-After 1800, got %q", rec.Header().Get("Retry-After"))
	}
	if out["code"] != "RATE_LIMIT_EXCEEDED" || out["retryAfter"] != "1800 seconds" || out["success"] != false {
		t.Errorf("Unexpected payload %v", out)
	}
	if !strings.Contains(out["error"].(string), "2 requests per hour") {
		t.Errorf("Unexpected message %v", out["error"])
	}
}

func TestRateLimit_BurstOnAnalyzeRoutes(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cfg := testConfig("http://127.0.0.1:1", "secret")
	cfg.RateLimitBurst = 1
	stack := newTestStack(t, cfg, WithClock(func() time.Time { return clock }))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze/base64", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec, _ := serve(stack.handler, req)
		return rec
	}

	if rec := post(); rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected first request to reach the handler, got %d", rec.Code)
	}
	if rec := post(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected burst limit, got %d", rec.Code)
	}

	// info routes sit outside the analysis limits
	rec, _ := serve(stack.handler, httptest.NewRequest(http.MethodGet, "/api/analyze/limits", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected limits route to stay available, got %d", rec.Code)
	}
}

func TestNewRateLimits_Development(t *testing.T) {
	cfg := testConfig("", "")
	cfg.Environment = config.EnvDevelopment

	limits := newRateLimits(cfg, time.Now)
	if limits.general.rule.limit != devRequestsPerMinute || limits.general.rule.window != time.Minute {
		t.Errorf("Expected relaxed development limit, got %+v", limits.general.rule)
	}
	if limits.analysis.rule.limit != cfg.RateLimitAnalysis {
		t.Errorf("Analysis limit must still apply, got %+v", limits.analysis.rule)
	}
}
