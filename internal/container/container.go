package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/ratemylooks/internal/analyzer"
	"github.com/anime-shed/ratemylooks/internal/config"
	"github.com/anime-shed/ratemylooks/internal/factory"
	"github.com/anime-shed/ratemylooks/internal/llm"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/observer"
	"github.com/anime-shed/ratemylooks/internal/parser"
	"github.com/anime-shed/ratemylooks/internal/repository"
	"github.com/anime-shed/ratemylooks/internal/service"
	"github.com/anime-shed/ratemylooks/internal/transport"
	"github.com/anime-shed/ratemylooks/pkg/services"
	"github.com/anime-shed/ratemylooks/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	aiClient        *llm.Client
	validator       *validation.ImageValidator
	imageRepository repository.ImageRepository
	metrics         *observer.MetricsObserver
	analysisService service.AnalysisService
	handler         http.Handler
}

// Option customizes the dependency graph, mostly for tests and adapters
type Option func(*options)

type options struct {
	clientOpts []llm.ClientOption
	factories  *factory.ComponentFactory
}

// WithClientOptions passes options through to the AI client
func WithClientOptions(opts ...llm.ClientOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithFactories replaces the component factories
func WithFactories(f *factory.ComponentFactory) Option {
	return func(o *options) { o.factories = f }
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	o := options{factories: factory.NewComponentFactory()}
	for _, opt := range opts {
		opt(&o)
	}

	logger.SetLevel(cfg.LogLevel)

	aiClient, err := o.factories.ProviderFactory.CreateClient(cfg, o.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	if !aiClient.Configured() {
		logger.WithField("provider", cfg.AIProvider).Warn("AI API key not configured, analysis requests will fail")
	}

	blobs, err := o.factories.StorageFactory.CreateBlobStorage(cfg)
	if err != nil {
		return nil, err
	}
	imageRepository := repository.NewRemoteImageRepository(o.factories.StorageFactory.CreateFetcher(cfg), blobs)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	validator := validation.NewImageValidatorWithOptions(cfg.MaxUploadSize, validation.AllowedFormats)
	analysisService := service.NewAnalysisService(service.Dependencies{
		Validator: validator,
		AI:        aiClient,
		Parser:    parser.New(),
		Enricher:  services.NewRatingService(),
		Inspector: analyzer.NewPhotoInspector(),
		Images:    imageRepository,
		Events:    events,
	})

	return &Container{
		config:          cfg,
		aiClient:        aiClient,
		validator:       validator,
		imageRepository: imageRepository,
		metrics:         metrics,
		analysisService: analysisService,
		handler:         transport.NewHandler(analysisService, validator, metrics, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// AnalysisService returns the pipeline shared by every adapter
func (c *Container) AnalysisService() service.AnalysisService {
	return c.analysisService
}

// Metrics returns the in-memory analysis counters
func (c *Container) Metrics() observer.Stats {
	return c.metrics.GetMetrics()
}
