package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/anime-shed/ratemylooks/pkg/models"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Success:    true,
		AnalysisID: "abc-123",
		Timestamp:  "2024-05-01T12:00:00Z",
		Data: models.AnalysisData{
			EnrichedAnalysis: models.EnrichedAnalysis{
				ParsedAnalysis: models.ParsedAnalysis{
					Rating:       models.Rating{models.CategoryOverall: 8, models.CategoryGrooming: 7, models.CategoryEyeAppeal: 9},
					Analysis:     models.TextAnalysis{Overall: "Strong overall harmony with expressive eyes."},
					BestFeatures: []string{"Bright expressive eyes", "Defined jawline"},
					Confidence:   0.9,
					ParseMode:    models.ParseModeText,
				},
				WeightedScore: 7.9,
				CategoryBreakdown: map[string]models.CategoryBreakdown{
					models.CategoryGrooming:  {Score: 7, Level: models.LevelGood, Priority: models.PriorityMedium},
					models.CategoryEyeAppeal: {Score: 9, Level: models.LevelExcellent, Priority: models.PriorityLow},
				},
				ImprovementPlan: models.ImprovementPlan{
					Immediate: models.PlanBucket{Actions: []string{"Trim the beard line"}, Timeframe: "1-2 weeks"},
				},
			},
			Metadata: models.Metadata{
				Provider: "grok",
				Model:    "grok-2-vision-1212",
				PhotoQuality: &models.PhotoQuality{
					Warnings: []string{"Photo looks blurry"},
				},
			},
		},
	}
}

func TestDisplayResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := DisplayResults(&buf, sampleResult(), FormatJSON); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if out["analysisId"] != "abc-123" {
		t.Errorf("Unexpected output %v", out)
	}
}

func TestDisplayResults_YAMLUsesWireNames(t *testing.T) {
	var buf bytes.Buffer
	if err := DisplayResults(&buf, sampleResult(), FormatYAML); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"analysisId: abc-123", "weightedScore: 7.9", "bestFeatures:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in YAML output:\n%s", want, out)
		}
	}
}

func TestDisplayResults_Human(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	if err := DisplayResults(&buf, sampleResult(), FormatHuman); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"OVERALL SCORE: 8.0/10 (Good)", "Eye Appeal", "1. Bright expressive eyes", "Trim the beard line", "Photo looks blurry"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "Eye Appeal") > strings.Index(out, "Grooming") {
		t.Error("Expected categories ordered by score")
	}
}

func TestDisplayResults_UnknownFormat(t *testing.T) {
	if err := DisplayResults(&bytes.Buffer{}, sampleResult(), "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestPlainSummary(t *testing.T) {
	got := PlainSummary(sampleResult())

	if !strings.HasPrefix(got, "📊 Overall: 8.0/10") {
		t.Errorf("Unexpected summary start: %q", got)
	}
	if !strings.Contains(got, "1. Trim the beard line") || !strings.Contains(got, "Photo looks blurry") {
		t.Errorf("Unexpected summary %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("Summary must not end with a newline")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 10, "  ")
	if got != "  one two\n  three\n  four" {
		t.Errorf("Unexpected wrap %q", got)
	}
}
