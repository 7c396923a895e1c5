// Package llm talks to vision-capable chat models.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a provider answers without usable text
var ErrEmptyResponse = errors.New("empty response from AI provider")

// Request is a single provider call
type Request struct {
	Model        string
	SystemPrompt string
	Prompt       string
	// ImageDataURL is empty for text-only calls
	ImageDataURL string
	MaxTokens    int
	Temperature  float64
	JSONMode     bool
}

// Response is the provider's answer
type Response struct {
	Text       string
	TokensUsed int
	Model      string
}

// Transport performs one provider call without retrying
type Transport interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// StatusError is a non-success HTTP status returned by a provider
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}
