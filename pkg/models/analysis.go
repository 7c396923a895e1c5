package models

import (
	"path/filepath"
	"strings"
)

// Analysis types accepted from clients. They are echoed in metadata only.
const (
	AnalysisTypeComprehensive = "comprehensive"
	AnalysisTypeQuick         = "quick"
	AnalysisTypeDetailed      = "detailed"
)

// Rating categories
const (
	CategoryOverall         = "overall"
	CategoryFacialSymmetry  = "facialSymmetry"
	CategorySkinClarity     = "skinClarity"
	CategoryGrooming        = "grooming"
	CategoryExpression      = "expression"
	CategoryEyeAppeal       = "eyeAppeal"
	CategoryFacialStructure = "facialStructure"
	CategoryHairStyle       = "hairStyle"
	CategorySkinTone        = "skinTone"
)

// Categories lists the per-feature scores in their canonical order, excluding overall
var Categories = []string{
	CategoryFacialSymmetry,
	CategorySkinClarity,
	CategoryGrooming,
	CategoryExpression,
	CategoryEyeAppeal,
	CategoryFacialStructure,
	CategoryHairStyle,
	CategorySkinTone,
}

// UploadedImage is an image received from any source, prior to validation
type UploadedImage struct {
	Data        []byte `json:"-"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Extension returns the lowercased filename extension without the dot
func (i *UploadedImage) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(i.Filename)), ".")
}

// AnalysisOptions are passed through unmodified into prompt construction
type AnalysisOptions struct {
	FocusAreas    []string `json:"focusAreas,omitempty"`
	AnalysisType  string   `json:"analysisType,omitempty"`
	IncludeAdvice *bool    `json:"includeAdvice,omitempty"`
}

// DefaultAnalysisOptions returns the options used when a client sends none
func DefaultAnalysisOptions() AnalysisOptions {
	advice := true
	return AnalysisOptions{AnalysisType: AnalysisTypeComprehensive, IncludeAdvice: &advice}
}

// Normalize fills unset fields with defaults and trims focus areas
func (o AnalysisOptions) Normalize() AnalysisOptions {
	if strings.TrimSpace(o.AnalysisType) == "" {
		o.AnalysisType = AnalysisTypeComprehensive
	}
	if o.IncludeAdvice == nil {
		advice := true
		o.IncludeAdvice = &advice
	}
	areas := make([]string, 0, len(o.FocusAreas))
	for _, a := range o.FocusAreas {
		if a = strings.TrimSpace(a); a != "" {
			areas = append(areas, a)
		}
	}
	o.FocusAreas = areas
	return o
}

// RawModelResponse is the text returned by the vision model plus usage data
type RawModelResponse struct {
	Text       string
	TokensUsed int
	Model      string
	Provider   string
	Attempts   int
}

// Rating maps a category name to a score in [1, 10]
type Rating map[string]float64

// Overall returns the overall score if present
func (r Rating) Overall() (float64, bool) {
	v, ok := r[CategoryOverall]
	return v, ok
}

// ParseMode records which decoder produced a ParsedAnalysis
type ParseMode string

const (
	ParseModeJSON     ParseMode = "json"
	ParseModeText     ParseMode = "text"
	ParseModeFallback ParseMode = "fallback"
)

// TextAnalysis holds the prose parts of a parsed response
type TextAnalysis struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Overall      string   `json:"overall"`
}

// Suggestions groups advice by horizon
type Suggestions struct {
	Immediate []string `json:"immediate"`
	LongTerm  []string `json:"longTerm"`
	Styling   []string `json:"styling"`
}

// ParsedAnalysis is the structured form of a model response
type ParsedAnalysis struct {
	Rating                Rating       `json:"rating"`
	Analysis              TextAnalysis `json:"analysis"`
	Suggestions           Suggestions  `json:"suggestions"`
	BestFeatures          []string     `json:"bestFeatures,omitempty"`
	StyleRecommendations  []string     `json:"styleAndFashion,omitempty"`
	ActionPlan            []string     `json:"actionPlan,omitempty"`
	SynthesizedCategories []string     `json:"synthesizedCategories,omitempty"`
	Confidence            float64      `json:"confidence"`
	ParseMode             ParseMode    `json:"parseMode"`
	RawResponse           string       `json:"rawResponse,omitempty"`
}

// PhotoQuality is an informational assessment of the uploaded photo itself
type PhotoQuality struct {
	Width             int      `json:"width"`
	Height            int      `json:"height"`
	AvgLuminance      float64  `json:"averageLuminance"`
	LaplacianVariance float64  `json:"laplacianVariance"`
	LowResolution     bool     `json:"lowResolution"`
	TooDark           bool     `json:"tooDark"`
	Overexposed       bool     `json:"overexposed"`
	Blurry            bool     `json:"blurry"`
	Warnings          []string `json:"warnings,omitempty"`
}
