package factory

import (
	"testing"
	"time"

	"github.com/anime-shed/ratemylooks/internal/config"
)

func testConfig(provider string) *config.Config {
	return &config.Config{
		AIProvider:        provider,
		AIAPIKey:          "key",
		AIModel:           "model",
		AIBaseURL:         "http://localhost:1234/v1",
		AIMaxTokens:       100,
		AIRetryAttempts:   2,
		AIRetryBaseDelay:  time.Millisecond,
		AITimeout:         time.Second,
		ImageFetchTimeout: time.Second,
		MaxUploadSize:     1024,
	}
}

func TestProviderFactory_CreateTransport(t *testing.T) {
	f := NewProviderFactory(nil)

	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{config.ProviderGrok, "grok", false},
		{config.ProviderOpenAI, "openai", false},
		{config.ProviderGemini, "gemini", false},
		{"anthropic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			transport, err := f.CreateTransport(testConfig(tt.provider))
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateTransport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && transport.Name() != tt.wantName {
				t.Errorf("Expected transport %s, got %s", tt.wantName, transport.Name())
			}
		})
	}
}

func TestProviderFactory_CreateClient(t *testing.T) {
	client, err := NewProviderFactory(nil).CreateClient(testConfig(config.ProviderOpenAI))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client.Provider() != "openai" || client.Model() != "model" || !client.Configured() {
		t.Errorf("Unexpected client provider=%s model=%s", client.Provider(), client.Model())
	}
}

func TestStorageFactory(t *testing.T) {
	f := NewStorageFactory()
	cfg := testConfig(config.ProviderGrok)

	if f.CreateFetcher(cfg) == nil {
		t.Error("Expected fetcher")
	}

	blobs, err := f.CreateBlobStorage(cfg)
	if err != nil || blobs != nil {
		t.Errorf("Expected no blob storage without credentials, got %v, %v", blobs, err)
	}
}
