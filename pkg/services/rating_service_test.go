package services

import (
	"math"
	"testing"
	"time"

	apperrors "github.com/anime-shed/ratemylooks/internal/errors"
	"github.com/anime-shed/ratemylooks/pkg/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name   string
		rating models.Rating
		want   float64
	}{
		{
			name: "all weighted categories",
			rating: models.Rating{
				models.CategoryOverall:         3,
				models.CategoryFacialSymmetry:  8,
				models.CategorySkinClarity:     6,
				models.CategoryGrooming:        7,
				models.CategoryExpression:      8,
				models.CategoryEyeAppeal:       5,
				models.CategoryFacialStructure: 7,
				models.CategoryHairStyle:       1,
			},
			want: 7,
		},
		{
			name:   "missing categories are excluded",
			rating: models.Rating{models.CategoryFacialSymmetry: 8, models.CategoryGrooming: 6},
			want:   7.1,
		},
		{
			name:   "falls back to overall",
			rating: models.Rating{models.CategoryOverall: 6.5, models.CategorySkinTone: 9},
			want:   6.5,
		},
		{
			name:   "falls back to five",
			rating: models.Rating{models.CategoryHairStyle: 9},
			want:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedScore(tt.rating); !almostEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBands(t *testing.T) {
	levels := map[float64]string{
		10: models.LevelExcellent, 9: models.LevelExcellent, 8.9: models.LevelGood, 7: models.LevelGood,
		5: models.LevelAverage, 4.9: models.LevelBelowAverage, 3: models.LevelBelowAverage, 2.9: models.LevelNeedsImprovement,
	}
	for score, want := range levels {
		if got := RatingLevel(score); got != want {
			t.Errorf("RatingLevel(%v) = %s, want %s", score, got, want)
		}
	}

	priorities := map[float64]string{
		3.9: models.PriorityHigh, 4: models.PriorityMedium, 5.9: models.PriorityMedium, 6: models.PriorityLow,
	}
	for score, want := range priorities {
		if got := PriorityLevel(score); got != want {
			t.Errorf("PriorityLevel(%v) = %s, want %s", score, got, want)
		}
	}
}

func TestCategoryDescription(t *testing.T) {
	if got := CategoryDescription(models.CategoryGrooming, 7); got != "Excellent grooming and personal care habits evident" {
		t.Errorf("Unexpected high description %q", got)
	}
	if got := CategoryDescription(models.CategoryExpression, 5); got != "Pleasant expression with natural appeal" {
		t.Errorf("Unexpected medium description %q", got)
	}
	if got := CategoryDescription(models.CategorySkinClarity, 2); got != "Skin could benefit from improved skincare routine" {
		t.Errorf("Unexpected low description %q", got)
	}
	if got := CategoryDescription(models.CategoryHairStyle, 9); got != "No specific feedback available" {
		t.Errorf("Expected no feedback for hair style, got %q", got)
	}
}

func TestAdjustConfidence(t *testing.T) {
	consistent := models.Rating{models.CategoryOverall: 7, models.CategoryGrooming: 7}
	spread := models.Rating{models.CategoryOverall: 5, models.CategoryFacialSymmetry: 1, models.CategorySkinClarity: 10}

	if got := AdjustConfidence(0.9, consistent); !almostEqual(got, 0.9) {
		t.Errorf("Expected 0.9, got %v", got)
	}
	if got := AdjustConfidence(0.9, spread); !almostEqual(got, 0.81) {
		t.Errorf("Expected variance penalty to 0.81, got %v", got)
	}
	if got := AdjustConfidence(0, consistent); !almostEqual(got, 0.8) {
		t.Errorf("Expected default 0.8, got %v", got)
	}
	if got := AdjustConfidence(5, consistent); got != 1 {
		t.Errorf("Expected clamp to 1, got %v", got)
	}
	if got := AdjustConfidence(0.05, consistent); got != 0.1 {
		t.Errorf("Expected clamp to 0.1, got %v", got)
	}
}

func TestEnhancedInsights(t *testing.T) {
	rating := models.Rating{
		models.CategoryOverall:    7,
		models.CategoryExpression: 8,
		models.CategoryGrooming:   9,
		models.CategorySkinTone:   4,
		models.CategoryEyeAppeal:  6.5,
	}

	got := EnhancedInsights(rating, 8.2)

	wantStrengths := []string{"Overall", "Grooming", "Expression"}
	if len(got.Strengths) != len(wantStrengths) {
		t.Fatalf("Expected strengths %v, got %v", wantStrengths, got.Strengths)
	}
	for i, s := range wantStrengths {
		if got.Strengths[i] != s {
			t.Errorf("Strength %d: expected %s, got %s", i, s, got.Strengths[i])
		}
	}
	if len(got.FocusAreas) != 1 || got.FocusAreas[0] != "Skin Tone" {
		t.Errorf("Unexpected focus areas %v", got.FocusAreas)
	}
	if len(got.PersonalityIndicators) != 2 {
		t.Errorf("Expected both personality indicators, got %v", got.PersonalityIndicators)
	}
	if got.Recommendations[0] != "You have strong natural features - focus on maintaining your current routine" {
		t.Errorf("Unexpected recommendation %v", got.Recommendations)
	}

	if low := EnhancedInsights(models.Rating{models.CategoryOverall: 4}, 4); low.Recommendations[0] != "Focus on basic grooming and styling fundamentals first" {
		t.Errorf("Unexpected low band recommendation %v", low.Recommendations)
	}
}

func TestImprovementPlan(t *testing.T) {
	parsed := models.ParsedAnalysis{
		Suggestions: models.Suggestions{
			Styling: []string{"Try a textured crop", "Use a gentle cleanser and moisturizer every day"},
		},
		ActionPlan: []string{
			"Use a gentle cleanser and moisturizer every single day",
			"Trim the neckline",
			"Drink more water",
			"Start a strength routine",
			"Refresh the wardrobe",
		},
	}

	plan := ImprovementPlan(parsed)

	if plan.Immediate.Timeframe != "1-7 days" || plan.ShortTerm.Timeframe != "1-4 weeks" || plan.LongTerm.Timeframe != "1-6 months" {
		t.Errorf("Unexpected timeframes %+v", plan)
	}
	if len(plan.Immediate.Actions) != 3 {
		t.Errorf("Expected first three actions, got %v", plan.Immediate.Actions)
	}
	if len(plan.ShortTerm.Actions) != 1 || plan.ShortTerm.Actions[0] != "Try a textured crop" {
		t.Errorf("Expected near duplicate styling tip dropped, got %v", plan.ShortTerm.Actions)
	}
	if len(plan.LongTerm.Actions) != 2 {
		t.Errorf("Expected remaining actions in long term, got %v", plan.LongTerm.Actions)
	}
}

func TestEnrich(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewRatingServiceWithClock(func() time.Time { return fixed })

	parsed := models.ParsedAnalysis{
		Rating:     models.Rating{models.CategoryOverall: 8, models.CategoryFacialSymmetry: 8},
		Confidence: 0.9,
		Suggestions: models.Suggestions{
			Immediate: []string{"Moisturize"},
			LongTerm:  []string{"Build confidence"},
			Styling:   []string{"Find a signature look"},
		},
	}

	got, err := svc.Enrich(parsed)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.WeightedScore != 8 {
		t.Errorf("Expected weighted 8, got %v", got.WeightedScore)
	}
	if got.Timestamp != "2024-05-01T12:00:00Z" {
		t.Errorf("Unexpected timestamp %s", got.Timestamp)
	}
	if got.CategoryBreakdown[models.CategoryOverall].Level != models.LevelGood {
		t.Errorf("Unexpected breakdown %+v", got.CategoryBreakdown)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %v", got.Confidence)
	}
	if got.ImprovementPlan.Immediate.Actions[0] != "Moisturize" {
		t.Errorf("Unexpected plan %+v", got.ImprovementPlan)
	}
}

func TestEnrich_MissingRating(t *testing.T) {
	_, err := NewRatingService().Enrich(models.ParsedAnalysis{})
	if apperrors.GetCode(err) != apperrors.CodeInvalidAnalysis {
		t.Errorf("Expected INVALID_ANALYSIS, got %v", err)
	}
}
