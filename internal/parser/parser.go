// Package parser turns free-form model output into a ParsedAnalysis.
package parser

import (
	"encoding/json"
	"strings"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

// Section caps
const (
	maxFeatures = 5
	maxStyle    = 5
	maxActions  = 8
)

// Confidence assigned per decoding outcome
const (
	confidenceFull     = 0.9
	confidenceFallback = 0.6
)

// Parser decodes model output. Strict JSON is tried first, then the sectioned text decoder,
// then a fallback that never fails.
type Parser struct{}

// New creates a Parser
func New() *Parser {
	return &Parser{}
}

// Parse never fails; degraded input yields a fallback analysis with lower confidence.
// The result depends only on raw.
func (p *Parser) Parse(raw string) models.ParsedAnalysis {
	if parsed, ok := decodeStructured(raw); ok {
		return parsed
	}
	return decodeText(raw)
}

type structuredPayload struct {
	OverallScore         *float64           `json:"overallScore"`
	CategoryScores       map[string]float64 `json:"categoryScores"`
	BestFeatures         []string           `json:"bestFeatures"`
	StyleRecommendations []string           `json:"styleRecommendations"`
	ActionPlan           []string           `json:"actionPlan"`
	DetailedAnalysis     string             `json:"detailedAnalysis"`
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeStructured accepts only an object with an overall score and at least one section
func decodeStructured(raw string) (models.ParsedAnalysis, bool) {
	s := stripCodeFences(raw)
	if !strings.HasPrefix(s, "{") {
		return models.ParsedAnalysis{}, false
	}

	var payload structuredPayload
	if err := json.Unmarshal([]byte(s), &payload); err != nil || payload.OverallScore == nil {
		return models.ParsedAnalysis{}, false
	}

	features := cleanItems(payload.BestFeatures, maxFeatures)
	style := cleanItems(payload.StyleRecommendations, maxStyle)
	actions := cleanItems(payload.ActionPlan, maxActions)
	detailed := strings.TrimSpace(payload.DetailedAnalysis)
	if len(features) == 0 && len(style) == 0 && len(actions) == 0 && detailed == "" {
		return models.ParsedAnalysis{}, false
	}

	overall := clampScore(*payload.OverallScore)
	known := make(map[string]float64, len(payload.CategoryScores))
	for _, cat := range models.Categories {
		if v, ok := payload.CategoryScores[cat]; ok && v > 0 {
			known[cat] = clampScore(v)
		}
	}
	rating, synthesized := buildRating(overall, known, raw)

	parsed := assemble(raw, rating, features, style, actions, detailed)
	parsed.SynthesizedCategories = synthesized
	parsed.ParseMode = models.ParseModeJSON
	return parsed, true
}

func cleanItems(items []string, max int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
		if len(out) == max {
			break
		}
	}
	return out
}

// assemble applies the section defaults shared by the JSON and text decoders
func assemble(raw string, rating models.Rating, features, style, actions []string, detailed string) models.ParsedAnalysis {
	overallText := detailed
	if overallText == "" {
		overallText = strings.TrimSpace(raw)
	}

	immediate := []string{"Follow skincare routine", "Maintain good grooming", "Focus on posture"}
	if len(actions) > 0 {
		immediate = actions[:min(3, len(actions))]
	}
	longTerm := []string{"Consider professional styling", "Develop personal style", "Build confidence"}
	if len(actions) > 3 {
		longTerm = actions[3:min(6, len(actions))]
	}
	styling := []string{"Experiment with different looks", "Find styles that suit you"}
	if len(style) > 0 {
		styling = style
	}

	return models.ParsedAnalysis{
		Rating: rating,
		Analysis: models.TextAnalysis{
			Strengths:    orDefault(features, "Natural appeal and attractive features"),
			Improvements: orDefault(actions, "Focus on enhancing your strongest features"),
			Overall:      overallText,
		},
		Suggestions: models.Suggestions{
			Immediate: immediate,
			LongTerm:  longTerm,
			Styling:   styling,
		},
		BestFeatures:         orDefault(features, "Attractive natural features", "Good bone structure", "Appealing expression"),
		StyleRecommendations: orDefault(style, "Classic styling works well", "Consider modern accessories", "Focus on fit and quality"),
		ActionPlan: orDefault(actions, "Maintain good skincare", "Style hair regularly", "Choose flattering colors",
			"Focus on fitness", "Develop confidence"),
		Confidence:  confidenceFull,
		RawResponse: raw,
	}
}

func orDefault(items []string, defaults ...string) []string {
	if len(items) > 0 {
		return items
	}
	return defaults
}
