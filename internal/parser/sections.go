package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/arbovm/levenshtein"
)

type sectionKind int

const (
	sectionFeatures sectionKind = iota
	sectionDetailed
	sectionStyle
	sectionActions
)

type sectionRule struct {
	kind sectionKind
	// headers are tried in order; each matches a whole header line
	headers []*regexp.Regexp
	// aliases are normalized header spellings accepted by fuzzy matching
	aliases []string
}

const headerPrefix = `(?m)^[ \t#*]*`

var sectionRules = []sectionRule{
	{
		kind: sectionFeatures,
		headers: []*regexp.Regexp{
			regexp.MustCompile(headerPrefix + `🌟[^\n]*?(?:BEST|STRONGEST|TOP) FEATURES[^\n]*`),
			regexp.MustCompile(headerPrefix + `TOP[^\n]*?(?:BEST|STRONGEST) FEATURES[^\n]*`),
			regexp.MustCompile(headerPrefix + `(?:BEST|STRONGEST) FEATURES[^\n]*`),
		},
		aliases: []string{"TOP BEST FEATURES", "BEST FEATURES", "STRONGEST FEATURES", "KEY STRENGTHS"},
	},
	{
		kind: sectionDetailed,
		headers: []*regexp.Regexp{
			regexp.MustCompile(headerPrefix + `💎[^\n]*?(?:DETAILED|COMPREHENSIVE)[^\n]*?ANALYSIS[^\n]*`),
			regexp.MustCompile(headerPrefix + `(?:DETAILED|COMPREHENSIVE)(?: FACIAL)? ANALYSIS[^\n]*`),
		},
		aliases: []string{"DETAILED ANALYSIS", "COMPREHENSIVE ANALYSIS", "DETAILED FACIAL ANALYSIS"},
	},
	{
		kind: sectionStyle,
		headers: []*regexp.Regexp{
			regexp.MustCompile(headerPrefix + `👔[^\n]*?STYLE[^\n]*`),
			regexp.MustCompile(headerPrefix + `STYLE[^\n]*?(?:FASHION|GROOMING)[^\n]*?RECOMMENDATIONS[^\n]*`),
			regexp.MustCompile(headerPrefix + `STYLE[^\n]*?(?:FASHION|GROOMING)[^\n]*`),
		},
		aliases: []string{"STYLE FASHION RECOMMENDATIONS", "STYLE RECOMMENDATIONS", "STYLE GROOMING RECOMMENDATIONS", "STYLING TIPS"},
	},
	{
		kind: sectionActions,
		headers: []*regexp.Regexp{
			regexp.MustCompile(headerPrefix + `📋[^\n]*?(?:ACTION|IMPROVEMENT) PLAN[^\n]*`),
			regexp.MustCompile(headerPrefix + `(?:ENHANCEMENT )?(?:ACTION|IMPROVEMENT) PLAN[^\n]*`),
		},
		aliases: []string{"ACTION PLAN", "ENHANCEMENT ACTION PLAN", "IMPROVEMENT PLAN", "NEXT STEPS"},
	},
}

// A section ends at a blank line followed by an emoji or capitalized header.
// Without one, the next line starting with an emoji ends it instead.
var (
	looseBoundary  = regexp.MustCompile(`\n\n[🎯💫🌟📊📈💎👔📋🔥⭐]|\n\n[A-Z][A-Z]`)
	strictBoundary = regexp.MustCompile(`\n[🎯💫🌟📊📈💎👔📋🔥⭐]`)
)

const maxHeaderLength = 60

type headerSpan struct {
	kind       sectionKind
	start, end int
}

// locateSections returns the body of every section that could be found
func locateSections(text string) map[sectionKind]string {
	var spans []headerSpan
	for _, rule := range sectionRules {
		if start, end, ok := findHeader(text, rule); ok {
			spans = append(spans, headerSpan{kind: rule.kind, start: start, end: end})
		}
	}

	found := make(map[sectionKind]string)
	for _, span := range spans {
		limit := len(text)
		for _, other := range spans {
			if other.start >= span.end && other.start < limit {
				limit = other.start
			}
		}
		if body := sectionBody(text[span.end:limit]); body != "" {
			found[span.kind] = body
		}
	}
	return found
}

// findHeader returns the bounds of the header line
func findHeader(text string, rule sectionRule) (int, int, bool) {
	for _, header := range rule.headers {
		if loc := header.FindStringIndex(text); loc != nil {
			return loc[0], loc[1], true
		}
	}
	return findFuzzyHeader(text, rule.aliases)
}

// findFuzzyHeader tolerates misspelled or reworded header lines within a small edit distance
func findFuzzyHeader(text string, aliases []string) (int, int, bool) {
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		start := offset
		offset += len(line)

		norm := normalizeHeader(line)
		if norm == "" || len(norm) > maxHeaderLength {
			continue
		}
		for _, alias := range aliases {
			if levenshtein.Distance(norm, alias) <= maxEditDistance(alias) {
				return start, offset, true
			}
		}
	}
	return 0, 0, false
}

func maxEditDistance(alias string) int {
	return min(2, len(alias)/5)
}

// normalizeHeader uppercases a line and keeps only letters, collapsing everything else to single spaces
func normalizeHeader(line string) string {
	var b strings.Builder
	space := false
	for _, r := range line {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(unicode.ToUpper(r))
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

// sectionBody cuts the text following a header at the next section boundary
func sectionBody(rest string) string {
	rest = strings.TrimLeft(rest, " \t\r\n:")
	for _, boundary := range []*regexp.Regexp{looseBoundary, strictBoundary} {
		if loc := boundary.FindStringIndex(rest); loc != nil {
			return strings.TrimSpace(rest[:loc[0]])
		}
	}
	return strings.TrimSpace(rest)
}

var (
	numberedItem = regexp.MustCompile(`(?m)^[ \t*#]*\d+[.)]\s*(.+)$`)
	bulletPrefix = regexp.MustCompile(`^[-•*]+\s*`)
)

const minBulletLength = 10

// extractList prefers numbered items and falls back to bullet or line splitting
func extractList(body string, max int) []string {
	var items []string
	for _, m := range numberedItem.FindAllStringSubmatch(body, -1) {
		if item := cleanItem(m[1]); item != "" {
			items = append(items, item)
		}
		if len(items) == max {
			return items
		}
	}
	if len(items) > 0 {
		return items
	}

	for _, line := range strings.Split(body, "\n") {
		for _, part := range strings.Split(line, "•") {
			item := cleanItem(bulletPrefix.ReplaceAllString(strings.TrimSpace(part), ""))
			if len(item) < minBulletLength {
				continue
			}
			items = append(items, item)
			if len(items) == max {
				return items
			}
		}
	}
	return items
}

func cleanItem(item string) string {
	item = strings.ReplaceAll(item, "**", "")
	return strings.TrimSpace(item)
}
