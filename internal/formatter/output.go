// Package formatter renders analysis results for terminals and chat replies.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/anime-shed/ratemylooks/pkg/models"
	"github.com/anime-shed/ratemylooks/pkg/services"
)

// Output formats
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DisplayResults writes the result in the requested format
func DisplayResults(w io.Writer, result *models.AnalysisResult, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, result)
	case FormatYAML:
		return displayYAML(w, result)
	case FormatHuman, "":
		displayHuman(w, result)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use human, json or yaml)", format)
	}
}

func displayJSON(w io.Writer, result *models.AnalysisResult) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

// displayYAML goes through JSON so field names match the HTTP payload
func displayYAML(w io.Writer, result *models.AnalysisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	output, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, result *models.AnalysisResult) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	data := result.Data
	overall := data.Rating[models.CategoryOverall]

	fmt.Fprintln(w)
	scoreColor(overall).Fprintf(w, "📊 OVERALL SCORE: %.1f/10 (%s)\n", overall, services.RatingLevel(overall))
	fmt.Fprintf(w, "   Weighted score: %.1f\n\n", data.WeightedScore)

	if len(data.CategoryBreakdown) > 0 {
		cyan.Fprintln(w, "🎯 CATEGORY BREAKDOWN:")
		for _, cat := range sortedCategories(data.CategoryBreakdown) {
			b := data.CategoryBreakdown[cat]
			fmt.Fprintf(w, "   %s %-18s %4.1f  %s\n", priorityIcon(b.Priority), services.FormatCategoryName(cat), b.Score, b.Level)
		}
		fmt.Fprintln(w)
	}

	printList(w, green, "🌟 BEST FEATURES:", data.BestFeatures)
	printList(w, cyan, "👔 STYLE & FASHION:", data.StyleRecommendations)

	yellow.Fprintln(w, "📋 IMPROVEMENT PLAN:")
	printBucket(w, "Immediate", data.ImprovementPlan.Immediate)
	printBucket(w, "Short term", data.ImprovementPlan.ShortTerm)
	printBucket(w, "Long term", data.ImprovementPlan.LongTerm)
	fmt.Fprintln(w)

	if q := data.Metadata.PhotoQuality; q != nil && len(q.Warnings) > 0 {
		yellow.Fprintln(w, "📷 PHOTO QUALITY:")
		for _, warning := range q.Warnings {
			fmt.Fprintf(w, "   ⚠️  %s\n", warning)
		}
		fmt.Fprintln(w)
	}

	if data.Analysis.Overall != "" {
		white.Fprintln(w, "📄 DETAILED ANALYSIS:")
		fmt.Fprintln(w, wrapText(data.Analysis.Overall, 80, "   "))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "%s\n", color.HiBlackString("confidence %.2f · parse %s · %s/%s · %d tokens · %dms",
		data.Confidence, data.ParseMode, data.Metadata.Provider, data.Metadata.Model,
		data.Metadata.TokensUsed, data.Metadata.ProcessingTime))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

// PlainSummary is a short uncolored summary suited to chat replies
func PlainSummary(result *models.AnalysisResult) string {
	data := result.Data
	overall := data.Rating[models.CategoryOverall]

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Overall: %.1f/10 (%s)\n", overall, services.RatingLevel(overall))

	if len(data.CategoryBreakdown) > 0 {
		b.WriteString("\n🎯 Categories:\n")
		for _, cat := range sortedCategories(data.CategoryBreakdown) {
			fmt.Fprintf(&b, "• %s: %.1f\n", services.FormatCategoryName(cat), data.CategoryBreakdown[cat].Score)
		}
	}

	if len(data.BestFeatures) > 0 {
		b.WriteString("\n🌟 Best features:\n")
		for i, f := range data.BestFeatures {
			fmt.Fprintf(&b, "%d. %s\n", i+1, f)
		}
	}

	if actions := data.ImprovementPlan.Immediate.Actions; len(actions) > 0 {
		b.WriteString("\n📋 Quick wins:\n")
		for i, a := range actions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, a)
		}
	}

	if q := data.Metadata.PhotoQuality; q != nil && len(q.Warnings) > 0 {
		b.WriteString("\n📷 " + strings.Join(q.Warnings, "; ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// sortedCategories puts the highest scores first and breaks ties by name
func sortedCategories(breakdown map[string]models.CategoryBreakdown) []string {
	cats := make([]string, 0, len(breakdown))
	for cat := range breakdown {
		if cat != models.CategoryOverall {
			cats = append(cats, cat)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		si, sj := breakdown[cats[i]].Score, breakdown[cats[j]].Score
		if si != sj {
			return si > sj
		}
		return cats[i] < cats[j]
	})
	return cats
}

func printList(w io.Writer, c *color.Color, title string, items []string) {
	if len(items) == 0 {
		return
	}
	c.Fprintln(w, title)
	for i, item := range items {
		fmt.Fprintf(w, "   %d. %s\n", i+1, item)
	}
	fmt.Fprintln(w)
}

func printBucket(w io.Writer, label string, bucket models.PlanBucket) {
	if len(bucket.Actions) == 0 {
		return
	}
	fmt.Fprintf(w, "   %s (%s):\n", label, bucket.Timeframe)
	for _, a := range bucket.Actions {
		fmt.Fprintf(w, "     • %s\n", a)
	}
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 8:
		return color.New(color.FgGreen, color.Bold)
	case score >= 6:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func priorityIcon(priority string) string {
	switch priority {
	case models.PriorityHigh:
		return "🔴"
	case models.PriorityMedium:
		return "🟡"
	case models.PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := indent + words[0]
		for _, word := range words[1:] {
			if len(line)+1+len(word) > width {
				lines = append(lines, line)
				line = indent + word
				continue
			}
			line += " " + word
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
