package parser

import (
	"unicode/utf8"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

const fallbackExcerptLength = 500

// decodeText reads the sectioned layout. Missing rating or missing sections select the fallback.
func decodeText(raw string) models.ParsedAnalysis {
	overall, found := extractRating(raw)
	sections := locateSections(raw)
	if !found || len(sections) == 0 {
		return fallback(raw, overall)
	}

	features := extractList(sections[sectionFeatures], maxFeatures)
	style := extractList(sections[sectionStyle], maxStyle)
	actions := extractList(sections[sectionActions], maxActions)

	rating, synthesized := buildRating(overall, extractCategories(raw), raw)

	parsed := assemble(raw, rating, features, style, actions, sections[sectionDetailed])
	parsed.SynthesizedCategories = synthesized
	parsed.ParseMode = models.ParseModeText
	return parsed
}

// fallback keeps the overall score for every category and an excerpt of the text
func fallback(raw string, overall float64) models.ParsedAnalysis {
	rating := models.Rating{models.CategoryOverall: overall}
	for _, cat := range models.Categories {
		rating[cat] = overall
	}

	return models.ParsedAnalysis{
		Rating: rating,
		Analysis: models.TextAnalysis{
			Strengths:    []string{"Analysis completed"},
			Improvements: []string{"Detailed analysis available in text"},
			Overall:      excerpt(raw, fallbackExcerptLength),
		},
		Suggestions: models.Suggestions{
			Immediate: []string{"Continue with good grooming habits"},
			LongTerm:  []string{"Maintain a healthy lifestyle"},
			Styling:   []string{"Experiment with different styles"},
		},
		SynthesizedCategories: append([]string(nil), models.Categories...),
		Confidence:            confidenceFallback,
		ParseMode:             models.ParseModeFallback,
		RawResponse:           raw,
	}
}

func excerpt(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
