// Package prompt renders the instruction text sent to the vision model.
package prompt

import (
	"strings"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

// OutputFormat selects the response shape requested from the model
type OutputFormat string

const (
	// FormatText asks for the sectioned, emoji-headed text layout
	FormatText OutputFormat = "text"
	// FormatJSON asks for a single JSON object
	FormatJSON OutputFormat = "json"
)

// Section headers shared with the response parser
const (
	HeaderScore    = "OVERALL ATTRACTIVENESS SCORE"
	HeaderMetrics  = "FACIAL ANALYSIS METRICS"
	HeaderFeatures = "TOP 5 BEST FEATURES"
	HeaderDetailed = "DETAILED ANALYSIS"
	HeaderStyle    = "STYLE & FASHION RECOMMENDATIONS"
	HeaderActions  = "ACTION PLAN"
)

// Strategy renders the base prompt for one output format
type Strategy interface {
	Render() string
	GetStrategyName() string
}

// Builder picks a strategy by output format and appends focus-area guidance
type Builder struct {
	strategies map[OutputFormat]Strategy
}

// NewBuilder creates a builder with the text and JSON strategies registered
func NewBuilder() *Builder {
	return &Builder{
		strategies: map[OutputFormat]Strategy{
			FormatText: &TextStrategy{},
			FormatJSON: &JSONStrategy{},
		},
	}
}

// Build returns the full prompt. Identical options always yield identical output.
func (b *Builder) Build(opts models.AnalysisOptions, format OutputFormat) string {
	strategy, ok := b.strategies[format]
	if !ok {
		strategy = b.strategies[FormatText]
	}

	prompt := strategy.Render()
	areas := make([]string, 0, len(opts.FocusAreas))
	for _, a := range opts.FocusAreas {
		if a = strings.TrimSpace(a); a != "" {
			areas = append(areas, a)
		}
	}
	if len(areas) > 0 {
		prompt += "\n\nPay special attention to: " + strings.Join(areas, ", ") + " and provide extra detail in these areas."
	}
	return prompt
}

// StrategyName reports which strategy serves a format
func (b *Builder) StrategyName(format OutputFormat) string {
	if s, ok := b.strategies[format]; ok {
		return s.GetStrategyName()
	}
	return b.strategies[FormatText].GetStrategyName()
}

const framework = `You are an expert attractiveness analyst. Assess the face in the photo using objective aesthetic principles: facial symmetry, proportions (facial thirds and fifths, the golden ratio of 1.618), bone structure, eye area, skin quality, grooming, hair and expression. Be honest but encouraging and keep every recommendation practical.

Score each category on a 1-10 scale:
- Facial Symmetry: left-right balance and feature alignment
- Skin Clarity: texture, clarity and evenness
- Grooming: hair, brows, facial hair and overall care
- Expression: confidence, warmth and approachability
- Eye Appeal: shape, spacing and expressiveness
- Facial Structure: jawline, cheekbones and definition
- Hair Style: suitability of the cut for the face shape
- Skin Tone: evenness and healthy coloring`

// TextStrategy requests the sectioned plain text layout
type TextStrategy struct{}

// Render returns the sectioned text prompt
func (s *TextStrategy) Render() string {
	return framework + `

REQUIRED OUTPUT FORMAT. Follow this structure exactly:

📊 ` + HeaderScore + `: [1-10]/10
[One sentence explaining the score]

🎯 ` + HeaderMetrics + `:
• Facial Symmetry: [score]/10 - [observation]
• Skin Clarity: [score]/10 - [observation]
• Grooming: [score]/10 - [observation]
• Expression: [score]/10 - [observation]
• Eye Appeal: [score]/10 - [observation]
• Facial Structure: [score]/10 - [observation]
• Hair Style: [score]/10 - [observation]
• Skin Tone: [score]/10 - [observation]

🌟 ` + HeaderFeatures + `:
1. [Feature] - [why it works]
2. [Feature] - [why it works]
3. [Feature] - [why it works]
4. [Feature] - [why it works]
5. [Feature] - [why it works]

💎 ` + HeaderDetailed + `:
[Two or three paragraphs covering overall harmony, individual features, skin, hair and presentation]

👔 ` + HeaderStyle + `:
1. [Hairstyle suggestion for the face shape]
2. [Clothing style that complements the features]
3. [Color palette for the skin tone]
4. [Accessories such as glasses or jewelry]
5. [Grooming tip for brows, facial hair or skincare]

📋 ` + HeaderActions + `:
1. IMMEDIATE: [highest impact quick win]
2. IMMEDIATE: [second quick win]
3. IMMEDIATE: [third quick win]
4. SHORT-TERM: [grooming or style change]
5. SHORT-TERM: [skincare or health routine]
6. LONG-TERM: [fitness or body improvement]
7. LONG-TERM: [wardrobe or style overhaul]
8. LONG-TERM: [lifestyle habit]

Start with the overall score and use numbered lists exactly as shown.`
}

// GetStrategyName returns the strategy name
func (s *TextStrategy) GetStrategyName() string {
	return "sectioned_text"
}

// JSONStrategy requests a single JSON object matching the strict decoder
type JSONStrategy struct{}

// Render returns the JSON prompt
func (s *JSONStrategy) Render() string {
	return framework + `

Respond with a single JSON object and nothing else. Use exactly this shape:
{
  "overallScore": <number 1-10>,
  "categoryScores": {
    "facialSymmetry": <number>, "skinClarity": <number>, "grooming": <number>, "expression": <number>,
    "eyeAppeal": <number>, "facialStructure": <number>, "hairStyle": <number>, "skinTone": <number>
  },
  "bestFeatures": [<up to 5 strings>],
  "detailedAnalysis": "<two or three paragraphs>",
  "styleRecommendations": [<up to 5 strings>],
  "actionPlan": [<up to 8 strings, quick wins first>]
}`
}

// GetStrategyName returns the strategy name
func (s *JSONStrategy) GetStrategyName() string {
	return "strict_json"
}
