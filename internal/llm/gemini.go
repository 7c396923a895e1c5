package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/anime-shed/ratemylooks/pkg/dataurl"
)

// Gemini calls Google's Gemini models through the generative-ai-go SDK
type Gemini struct {
	apiKey string
	opts   []option.ClientOption
}

// NewGemini creates a Gemini transport; extra options are appended after the API key
func NewGemini(apiKey string, opts ...option.ClientOption) *Gemini {
	return &Gemini{apiKey: strings.TrimSpace(apiKey), opts: opts}
}

func (g *Gemini) Name() string { return "gemini" }

// Complete performs one GenerateContent call
func (g *Gemini) Complete(ctx context.Context, req Request) (*Response, error) {
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(req.Model))
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		m.GenerationConfig.MaxOutputTokens = ptrInt32(int32(req.MaxTokens))
	}
	if req.JSONMode {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.ImageDataURL != "" {
		data, mime, err := dataurl.Decode(req.ImageDataURL)
		if err != nil {
			return nil, &StatusError{Provider: g.Name(), StatusCode: http.StatusBadRequest, Body: err.Error()}
		}
		if mime == "" {
			mime = dataurl.Sniff(data)
		}
		parts = append(parts, &genai.Blob{MIMEType: mime, Data: data})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, g.classify(err)
	}

	text := firstText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	out := &Response{Text: text, Model: req.Model}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// classify maps SDK errors onto StatusError so one retry policy serves every provider
func (g *Gemini) classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &StatusError{Provider: g.Name(), StatusCode: gerr.Code, Body: gerr.Message}
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &StatusError{Provider: g.Name(), StatusCode: http.StatusBadRequest, Body: blocked.Error()}
	}
	return err
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
