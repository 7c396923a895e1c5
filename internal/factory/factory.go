package factory

import (
	"fmt"

	"google.golang.org/api/option"

	"github.com/anime-shed/ratemylooks/internal/config"
	"github.com/anime-shed/ratemylooks/internal/llm"
	"github.com/anime-shed/ratemylooks/internal/prompt"
	"github.com/anime-shed/ratemylooks/internal/storage"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// ProviderFactory creates AI clients
type ProviderFactory interface {
	CreateTransport(cfg *config.Config) (llm.Transport, error)
	CreateClient(cfg *config.Config, opts ...llm.ClientOption) (*llm.Client, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateFetcher(cfg *config.Config) storage.ImageFetcher
	CreateBlobStorage(cfg *config.Config) (storage.BlobStorage, error)
}

// providerFactory implements ProviderFactory
type providerFactory struct {
	builder *prompt.Builder
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(builder *prompt.Builder) ProviderFactory {
	if builder == nil {
		builder = prompt.NewBuilder()
	}
	return &providerFactory{builder: builder}
}

// CreateTransport maps the configured provider to its wire transport
func (f *providerFactory) CreateTransport(cfg *config.Config) (llm.Transport, error) {
	switch cfg.AIProvider {
	case config.ProviderGrok, config.ProviderOpenAI:
		return llm.NewChatCompletions(cfg.AIProvider, cfg.AIBaseURL, cfg.AIAPIKey, cfg.AITimeout), nil
	case config.ProviderGemini:
		var opts []option.ClientOption
		if cfg.AIBaseURL != "" {
			opts = append(opts, option.WithEndpoint(cfg.AIBaseURL))
		}
		return llm.NewGemini(cfg.AIAPIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AIProvider)
	}
}

// CreateClient wraps the provider transport in the retrying client
func (f *providerFactory) CreateClient(cfg *config.Config, opts ...llm.ClientOption) (*llm.Client, error) {
	transport, err := f.CreateTransport(cfg)
	if err != nil {
		return nil, err
	}

	return llm.NewClient(transport, llm.ClientConfig{
		Provider:         cfg.AIProvider,
		APIKey:           cfg.AIAPIKey,
		Model:            cfg.AIModel,
		TestModel:        cfg.AITestModel,
		MaxTokens:        cfg.AIMaxTokens,
		Temperature:      cfg.AITemperature,
		StructuredOutput: cfg.AIStructuredOutput,
		Retry: llm.RetryPolicy{
			MaxAttempts: cfg.AIRetryAttempts,
			BaseDelay:   cfg.AIRetryBaseDelay,
		},
	}, f.builder, opts...), nil
}

// storageFactory implements StorageFactory
type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateFetcher creates the HTTP fetcher bounded by the upload cap
func (f *storageFactory) CreateFetcher(cfg *config.Config) storage.ImageFetcher {
	return storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxUploadSize)
}

// CreateBlobStorage returns nil without error when Azure is not configured
func (f *storageFactory) CreateBlobStorage(cfg *config.Config) (storage.BlobStorage, error) {
	if !cfg.AzureEnabled() {
		return nil, nil
	}
	blobs, err := storage.NewAzureStorage(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", AzureStorage, err)
	}
	return blobs, nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ProviderFactory ProviderFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		ProviderFactory: NewProviderFactory(nil),
		StorageFactory:  NewStorageFactory(),
	}
}
