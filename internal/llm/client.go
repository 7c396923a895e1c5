package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/internal/logger"
	"github.com/anime-shed/ratemylooks/internal/prompt"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

const (
	testSystemPrompt = "You are a test assistant."
	testUserPrompt   = "Testing. Just say hi and hello world and nothing else."
)

// ClientConfig carries provider settings resolved from configuration
type ClientConfig struct {
	Provider         string
	APIKey           string
	Model            string
	TestModel        string
	MaxTokens        int
	Temperature      float64
	StructuredOutput bool
	Retry            RetryPolicy
}

// Client sends analysis prompts through a Transport with retry and error mapping
type Client struct {
	transport Transport
	cfg       ClientConfig
	builder   *prompt.Builder
	sleep     SleepFunc
	now       func() time.Time
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithSleep replaces the backoff wait, used by tests to record delays
func WithSleep(fn SleepFunc) ClientOption {
	return func(c *Client) { c.sleep = fn }
}

// NewClient creates a retrying client
func NewClient(t Transport, cfg ClientConfig, builder *prompt.Builder, opts ...ClientOption) *Client {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if builder == nil {
		builder = prompt.NewBuilder()
	}
	c := &Client{
		transport: t,
		cfg:       cfg,
		builder:   builder,
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the configured provider name
func (c *Client) Provider() string { return c.cfg.Provider }

// Model returns the vision model name
func (c *Client) Model() string { return c.cfg.Model }

// Configured reports whether an API key is present
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// OutputFormat is the response shape requested from the model
func (c *Client) OutputFormat() prompt.OutputFormat {
	if c.cfg.StructuredOutput {
		return prompt.FormatJSON
	}
	return prompt.FormatText
}

// Analyze sends the image with the analysis prompt. Auth and bad-request failures are returned
// immediately; other failures are retried with backoff until attempts run out.
func (c *Client) Analyze(ctx context.Context, imageDataURL string, opts models.AnalysisOptions) (*models.RawModelResponse, error) {
	if !c.Configured() {
		return nil, apperrors.NewConfigurationError(apperrors.CodeAINotConfigured, "API key not configured", nil)
	}

	format := c.OutputFormat()
	req := Request{
		Model:        c.cfg.Model,
		Prompt:       c.builder.Build(opts, format),
		ImageDataURL: imageDataURL,
		MaxTokens:    c.cfg.MaxTokens,
		Temperature:  c.cfg.Temperature,
		JSONMode:     format == prompt.FormatJSON,
	}

	maxAttempts := c.cfg.Retry.MaxAttempts
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fields := logrus.Fields{
			"provider":     c.cfg.Provider,
			"model":        c.cfg.Model,
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		}
		logger.WithFields(fields).Debug("Sending analysis request to AI provider")

		resp, err := c.transport.Complete(ctx, req)
		if err == nil {
			logger.WithFields(fields).WithField("tokens_used", resp.TokensUsed).Info("AI analysis response received")
			return &models.RawModelResponse{
				Text:       resp.Text,
				TokensUsed: resp.TokensUsed,
				Model:      resp.Model,
				Provider:   c.cfg.Provider,
				Attempts:   attempt,
			}, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) {
			fields["status_code"] = se.StatusCode
		}

		switch classifyFailure(ctx, err) {
		case failureCanceled:
			logger.WithError(err).WithFields(fields).Warn("AI request canceled")
			return nil, apperrors.NewTimeoutError("AI analysis canceled or timed out", err)
		case failureUnauthorized:
			logger.WithError(err).WithFields(fields).Error("AI provider rejected credentials")
			return nil, apperrors.NewUnauthorizedError(apperrors.CodeAIAuthFailed, "AI provider authentication failed", err)
		case failureBadRequest:
			logger.WithError(err).WithFields(fields).Error("AI provider rejected request")
			return nil, apperrors.NewBadRequestError(apperrors.CodeAIBadRequest, "AI provider rejected the request", err)
		}

		if attempt == maxAttempts {
			break
		}
		delay := c.cfg.Retry.Delay(attempt)
		fields["delay_ms"] = delay.Milliseconds()
		logger.WithError(err).WithFields(fields).Warn("AI request failed, retrying")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, apperrors.NewTimeoutError("AI analysis canceled or timed out", err)
		}
	}

	logger.WithError(lastErr).WithFields(logrus.Fields{
		"provider": c.cfg.Provider,
		"attempts": maxAttempts,
	}).Error("AI service unavailable")
	return nil, apperrors.NewServiceUnavailableError(
		apperrors.CodeAIServiceUnavailable,
		fmt.Sprintf("AI service unavailable after %d attempts: %v", maxAttempts, lastErr),
		lastErr,
	)
}

// TestConnection performs one trivial call without retry; it never returns an error
func (c *Client) TestConnection(ctx context.Context) models.ConnectionResult {
	result := models.ConnectionResult{Model: c.cfg.TestModel}
	if !c.Configured() {
		result.Error = "API key not configured"
		result.Timestamp = c.now().UTC().Format(time.RFC3339)
		return result
	}

	resp, err := c.transport.Complete(ctx, Request{
		Model:        c.cfg.TestModel,
		SystemPrompt: testSystemPrompt,
		Prompt:       testUserPrompt,
		Temperature:  0,
	})
	result.Timestamp = c.now().UTC().Format(time.RFC3339)

	switch {
	case err == nil:
		result.Connected = true
		result.Response = resp.Text
	case errors.Is(err, ErrEmptyResponse):
		result.Connected = true
		result.Response = "Test successful"
	default:
		result.Error = err.Error()
		logger.WithError(err).WithField("provider", c.cfg.Provider).Warn("AI connectivity test failed")
	}
	return result
}
