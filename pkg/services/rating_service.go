package services

import (
	"math"
	"strings"
	"time"

	"github.com/codycollier/wer"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

// Improvement plan horizons
const (
	TimeframeImmediate = "1-7 days"
	TimeframeShortTerm = "1-4 weeks"
	TimeframeLongTerm  = "1-6 months"
)

const (
	defaultConfidence     = 0.8
	varianceThreshold     = 4.0
	variancePenalty       = 0.9
	duplicateWERThreshold = 0.25
	fallbackWeightedScore = 5.0
)

// categoryWeights drive the composite score; unscored categories are left out of both sums
var categoryWeights = map[string]float64{
	models.CategoryFacialSymmetry:  0.25,
	models.CategorySkinClarity:     0.20,
	models.CategoryGrooming:        0.20,
	models.CategoryExpression:      0.15,
	models.CategoryEyeAppeal:       0.10,
	models.CategoryFacialStructure: 0.10,
}

var categoryNames = map[string]string{
	models.CategoryOverall:         "Overall",
	models.CategoryFacialSymmetry:  "Facial Symmetry",
	models.CategorySkinClarity:     "Skin Clarity",
	models.CategoryGrooming:        "Grooming",
	models.CategoryExpression:      "Expression",
	models.CategoryEyeAppeal:       "Eye Appeal",
	models.CategoryFacialStructure: "Facial Structure",
	models.CategoryHairStyle:       "Hair Style",
	models.CategorySkinTone:        "Skin Tone",
}

type bandedText struct {
	high, medium, low string
}

var categoryDescriptions = map[string]bandedText{
	models.CategoryOverall: {
		high:   "Strong overall attractiveness with well-balanced features",
		medium: "Good overall appearance with room for enhancement",
		low:    "Several areas could benefit from attention and improvement",
	},
	models.CategoryFacialSymmetry: {
		high:   "Well-balanced facial proportions and symmetry",
		medium: "Generally balanced features with minor asymmetries",
		low:    "Some facial asymmetry that could be addressed through styling",
	},
	models.CategorySkinClarity: {
		high:   "Clear, healthy-looking skin with good complexion",
		medium: "Generally good skin with minor blemishes or concerns",
		low:    "Skin could benefit from improved skincare routine",
	},
	models.CategoryGrooming: {
		high:   "Excellent grooming and personal care habits evident",
		medium: "Well-groomed with some areas for refinement",
		low:    "Basic grooming improvements would make a significant difference",
	},
	models.CategoryExpression: {
		high:   "Engaging, positive expression that enhances attractiveness",
		medium: "Pleasant expression with natural appeal",
		low:    "Expression could be more engaging or confident",
	},
	models.CategoryEyeAppeal: {
		high:   "Attractive, expressive eyes that draw positive attention",
		medium: "Nice eyes that could be enhanced with better grooming",
		low:    "Eye area could benefit from targeted improvements",
	},
	models.CategoryFacialStructure: {
		high:   "Strong, well-defined facial structure",
		medium: "Good bone structure with attractive features",
		low:    "Facial structure could be enhanced through styling techniques",
	},
}

const noFeedback = "No specific feedback available"

// RatingService derives composite scores, qualitative labels and an improvement plan
// from a parsed analysis. It is stateless apart from the clock.
type RatingService struct {
	now func() time.Time
}

// NewRatingService creates a rating service using the wall clock
func NewRatingService() *RatingService {
	return &RatingService{now: time.Now}
}

// NewRatingServiceWithClock creates a rating service with a fixed time source
func NewRatingServiceWithClock(now func() time.Time) *RatingService {
	return &RatingService{now: now}
}

// Enrich fails only when the analysis carries no rating at all
func (s *RatingService) Enrich(parsed models.ParsedAnalysis) (*models.EnrichedAnalysis, error) {
	if len(parsed.Rating) == 0 {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidAnalysis, "Invalid analysis data", nil)
	}

	weighted := WeightedScore(parsed.Rating)
	enriched := &models.EnrichedAnalysis{
		ParsedAnalysis:    parsed,
		WeightedScore:     weighted,
		CategoryBreakdown: CategoryBreakdown(parsed.Rating),
		ImprovementPlan:   ImprovementPlan(parsed),
		EnhancedInsights:  EnhancedInsights(parsed.Rating, weighted),
		Timestamp:         s.now().UTC().Format(time.RFC3339),
	}
	enriched.Confidence = AdjustConfidence(parsed.Confidence, parsed.Rating)
	return enriched, nil
}

// WeightedScore is the weighted mean of the scored categories, rounded to one decimal.
// Without any weighted category it falls back to overall, then to 5.
func WeightedScore(rating models.Rating) float64 {
	var scores, weights []float64
	for _, cat := range models.Categories {
		weight, weighted := categoryWeights[cat]
		score, ok := rating[cat]
		if !weighted || !ok || score <= 0 {
			continue
		}
		scores = append(scores, score)
		weights = append(weights, weight)
	}

	if len(scores) == 0 {
		if overall, ok := rating[models.CategoryOverall]; ok && overall > 0 {
			return overall
		}
		return fallbackWeightedScore
	}
	return math.Round(stat.Mean(scores, weights)*10) / 10
}

// RatingLevel maps a score to its qualitative band
func RatingLevel(score float64) string {
	switch {
	case score >= 9:
		return models.LevelExcellent
	case score >= 7:
		return models.LevelGood
	case score >= 5:
		return models.LevelAverage
	case score >= 3:
		return models.LevelBelowAverage
	default:
		return models.LevelNeedsImprovement
	}
}

// PriorityLevel maps a score to how urgently it should be worked on
func PriorityLevel(score float64) string {
	switch {
	case score < 4:
		return models.PriorityHigh
	case score < 6:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// CategoryDescription returns the banded feedback sentence for a category
func CategoryDescription(category string, score float64) string {
	text, ok := categoryDescriptions[category]
	if !ok {
		return noFeedback
	}
	switch {
	case score >= 7:
		return text.high
	case score >= 5:
		return text.medium
	default:
		return text.low
	}
}

// FormatCategoryName returns the display name of a category key
func FormatCategoryName(category string) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return category
}

// CategoryBreakdown interprets every score in the rating
func CategoryBreakdown(rating models.Rating) map[string]models.CategoryBreakdown {
	breakdown := make(map[string]models.CategoryBreakdown, len(rating))
	for category, score := range rating {
		breakdown[category] = models.CategoryBreakdown{
			Score:       score,
			Level:       RatingLevel(score),
			Description: CategoryDescription(category, score),
			Priority:    PriorityLevel(score),
		}
	}
	return breakdown
}

// orderedCategories yields overall first, then the canonical categories present in the rating
func orderedCategories(rating models.Rating) []string {
	keys := make([]string, 0, len(rating))
	for _, cat := range append([]string{models.CategoryOverall}, models.Categories...) {
		if _, ok := rating[cat]; ok {
			keys = append(keys, cat)
		}
	}
	return keys
}

// EnhancedInsights lists strengths and focus areas and picks a recommendation by weighted score
func EnhancedInsights(rating models.Rating, weighted float64) models.EnhancedInsights {
	insights := models.EnhancedInsights{
		Strengths:             []string{},
		FocusAreas:            []string{},
		PersonalityIndicators: []string{},
	}

	for _, cat := range orderedCategories(rating) {
		switch score := rating[cat]; {
		case score >= 7:
			insights.Strengths = append(insights.Strengths, FormatCategoryName(cat))
		case score < 6:
			insights.FocusAreas = append(insights.FocusAreas, FormatCategoryName(cat))
		}
	}

	if rating[models.CategoryExpression] >= 7 {
		insights.PersonalityIndicators = append(insights.PersonalityIndicators, "Appears confident and approachable")
	}
	if rating[models.CategoryGrooming] >= 8 {
		insights.PersonalityIndicators = append(insights.PersonalityIndicators, "Shows attention to detail and self-care")
	}

	switch {
	case weighted >= 8:
		insights.Recommendations = []string{"You have strong natural features - focus on maintaining your current routine"}
	case weighted >= 6:
		insights.Recommendations = []string{"You have good potential - small improvements can make a big difference"}
	default:
		insights.Recommendations = []string{"Focus on basic grooming and styling fundamentals first"}
	}
	return insights
}

// AdjustConfidence lowers trust in inconsistent ratings and clamps the result into [0.1, 1]
func AdjustConfidence(confidence float64, rating models.Rating) float64 {
	if confidence <= 0 {
		confidence = defaultConfidence
	}

	scores := make([]float64, 0, len(rating))
	for _, cat := range orderedCategories(rating) {
		scores = append(scores, rating[cat])
	}
	if len(scores) > 0 && stat.PopVariance(scores, nil) > varianceThreshold {
		confidence *= variancePenalty
	}
	return math.Max(0.1, math.Min(1, confidence))
}

// ImprovementPlan re-buckets the parsed suggestions by horizon. Immediate falls back to the first
// three actions and long-term to the remaining ones.
func ImprovementPlan(parsed models.ParsedAnalysis) models.ImprovementPlan {
	immediate := parsed.Suggestions.Immediate
	if len(immediate) == 0 {
		immediate = parsed.ActionPlan[:min(3, len(parsed.ActionPlan))]
	}
	longTerm := parsed.Suggestions.LongTerm
	if len(longTerm) == 0 && len(parsed.ActionPlan) > 3 {
		longTerm = parsed.ActionPlan[3:]
	}

	var seen [][]string
	return models.ImprovementPlan{
		Immediate: models.PlanBucket{Actions: dedupe(immediate, &seen), Timeframe: TimeframeImmediate},
		ShortTerm: models.PlanBucket{Actions: dedupe(parsed.Suggestions.Styling, &seen), Timeframe: TimeframeShortTerm},
		LongTerm:  models.PlanBucket{Actions: dedupe(longTerm, &seen), Timeframe: TimeframeLongTerm},
	}
}

// dedupe drops actions that are near repeats of one already placed in an earlier or the same bucket
func dedupe(actions []string, seen *[][]string) []string {
	out := make([]string, 0, len(actions))
	for _, action := range actions {
		words := strings.Fields(strings.ToLower(action))
		if len(words) == 0 || isNearDuplicate(words, *seen) {
			continue
		}
		*seen = append(*seen, words)
		out = append(out, action)
	}
	return out
}

func isNearDuplicate(words []string, seen [][]string) bool {
	for _, ref := range seen {
		if rate, _ := wer.WER(ref, words); rate < duplicateWERThreshold {
			return true
		}
	}
	return false
}
