package container

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anime-shed/ratemylooks/internal/config"
	"github.com/anime-shed/ratemylooks/internal/llm"
)

const gradedText = "📊 OVERALL ATTRACTIVENESS SCORE: 7/10\nBalanced features.\n\n" +
	"🌟 TOP 5 BEST FEATURES:\n1. Warm genuine smile\n2. Clear skin\n\n" +
	"📋 ACTION PLAN:\n1. IMMEDIATE: Tidy the hairline"

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1, 1, 0}

// chatServer answers chat completions after the first failures calls return status
func chatServer(t *testing.T, failures int32, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= failures {
			http.Error(w, `{"error":"transient"}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "grok-2-vision-1212",
			"choices": []map[string]any{{"message": map[string]any{"content": gradedText}}},
			"usage":   map[string]any{"total_tokens": 100},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", "me.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(jpegBytes)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Host:              "127.0.0.1",
		Port:              "3000",
		Environment:       config.EnvProduction,
		LogLevel:          "error",
		AIProvider:        config.ProviderGrok,
		AIModel:           "grok-2-vision-1212",
		AITestModel:       "grok-4-latest",
		AIBaseURL:         "http://127.0.0.1:1",
		AIMaxTokens:       2000,
		AIRetryAttempts:   3,
		AIRetryBaseDelay:  time.Second,
		AITimeout:         time.Second,
		RequestTimeout:    time.Second,
		ImageFetchTimeout: time.Second,
		MaxUploadSize:     10 * 1024 * 1024,
		RateLimitGeneral:  100,
		RateLimitAnalysis: 50,
		RateLimitBurst:    10,
	}
}

func TestNewContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", rec.Code)
	}
	if c.AnalysisService().Provider() != config.ProviderGrok {
		t.Errorf("Unexpected provider %s", c.AnalysisService().Provider())
	}
	if c.Metrics().TotalAnalyses != 0 {
		t.Errorf("Expected empty metrics, got %+v", c.Metrics())
	}
}

func TestNewContainer_UnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.AIProvider = "claude"

	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected error for an unknown provider")
	}
}

func TestContainer_AnalyzeUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		failures     int32
		status       int
		wantCalls    int32
		wantAttempts float64
	}{
		{"first attempt", 0, 0, 1, 1},
		{"transient 404 is retried", 1, http.StatusNotFound, 2, 2},
		{"transient 503 is retried", 2, http.StatusServiceUnavailable, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := chatServer(t, tt.failures, tt.status)
			cfg := testConfig()
			cfg.AIBaseURL = srv.URL
			cfg.AIAPIKey = "secret"

			c, err := NewContainer(cfg, WithClientOptions(llm.WithSleep(noSleep)))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			rec := httptest.NewRecorder()
			c.Handler().ServeHTTP(rec, uploadRequest(t))
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var out struct {
				Success bool `json:"success"`
				Data    struct {
					Rating   map[string]float64 `json:"rating"`
					Metadata struct {
						Attempts float64 `json:"attempts"`
					} `json:"metadata"`
				} `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if !out.Success || out.Data.Rating["overall"] != 7 {
				t.Errorf("Unexpected result %s", rec.Body.String())
			}
			if out.Data.Metadata.Attempts != tt.wantAttempts {
				t.Errorf("Expected %v attempts, got %v", tt.wantAttempts, out.Data.Metadata.Attempts)
			}
			if got := atomic.LoadInt32(calls); got != tt.wantCalls {
				t.Errorf("Expected %d provider calls, got %d", tt.wantCalls, got)
			}
		})
	}
}

func TestContainer_FormatsListsAllowedFormats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze/formats", nil))

	var out struct {
		SupportedFormats []string `json:"supportedFormats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(out.SupportedFormats) != 4 {
		t.Errorf("Expected 4 supported formats, got %v", out.SupportedFormats)
	}
}
