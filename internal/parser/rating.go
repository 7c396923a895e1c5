package parser

import (
	"hash/fnv"
	"math"
	"math/rand"
	"regexp"
	"strconv"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

const defaultRating = 6.0

// Tried in order; the first match wins
var ratingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:overall|attractiveness|score|rating|assessment).*?(\d+(?:\.\d+)?)\s*(?:/|out of)\s*10\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:/|out of)\s*10\b`),
	regexp.MustCompile(`(?i)rate.*?(\d+(?:\.\d+)?)`),
}

// Per-category score lines such as "• Facial Symmetry: 8/10 - balanced"
var categoryPatterns = map[string]*regexp.Regexp{
	models.CategoryFacialSymmetry:  categoryPattern(`facial symmetry|symmetry`),
	models.CategorySkinClarity:     categoryPattern(`skin clarity|skin quality`),
	models.CategoryGrooming:        categoryPattern(`grooming`),
	models.CategoryExpression:      categoryPattern(`expression(?: & presence)?`),
	models.CategoryEyeAppeal:       categoryPattern(`eye appeal|eyes`),
	models.CategoryFacialStructure: categoryPattern(`facial structure|bone structure`),
	models.CategoryHairStyle:       categoryPattern(`hair ?style|hair`),
	models.CategorySkinTone:        categoryPattern(`skin tone`),
}

// Spread of the deterministic offset applied to categories the model did not score
var synthesisSpread = map[string]float64{
	models.CategoryFacialSymmetry:  2,
	models.CategorySkinClarity:     2,
	models.CategoryGrooming:        1.5,
	models.CategoryExpression:      1.5,
	models.CategoryEyeAppeal:       2,
	models.CategoryFacialStructure: 1.5,
	models.CategoryHairStyle:       2,
	models.CategorySkinTone:        1.5,
}

func categoryPattern(labels string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t•*\-#]*(?:\*\*)?(?:` + labels + `)(?:\*\*)?\s*:[^\n\d]{0,12}?(\d+(?:\.\d+)?)\s*(?:/|out of)\s*10`)
}

// extractRating returns the clamped overall score and whether any pattern matched
func extractRating(text string) (float64, bool) {
	for _, pattern := range ratingPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return clampScore(v), true
			}
		}
	}
	return defaultRating, false
}

// extractCategories reads explicitly scored categories from metric lines
func extractCategories(text string) map[string]float64 {
	found := make(map[string]float64)
	for _, cat := range models.Categories {
		if m := categoryPatterns[cat].FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				found[cat] = clampScore(v)
			}
		}
	}
	return found
}

// buildRating fills every category. Missing ones are derived from overall using a generator
// seeded by the raw text, so the same response always produces the same scores.
func buildRating(overall float64, known map[string]float64, raw string) (models.Rating, []string) {
	rating := models.Rating{models.CategoryOverall: overall}
	rng := rand.New(rand.NewSource(seedFor(raw)))

	var synthesized []string
	for _, cat := range models.Categories {
		offset := (rng.Float64() - 0.5) * synthesisSpread[cat]
		if v, ok := known[cat]; ok {
			rating[cat] = v
			continue
		}
		rating[cat] = round1(clampScore(overall + offset))
		synthesized = append(synthesized, cat)
	}
	return rating, synthesized
}

func seedFor(raw string) int64 {
	h := fnv.New64a()
	h.Write([]byte(raw))
	return int64(h.Sum64())
}

func clampScore(v float64) float64 {
	return math.Max(1, math.Min(10, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
