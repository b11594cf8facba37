package application

import (
	"regexp"
	"strings"
)

var (
	pageNumberLine = regexp.MustCompile(`^\d+$`)
	pageHeaderLine = regexp.MustCompile(`(?i)^page\s+\d+`)
	horizontalRuns = regexp.MustCompile(`[ \t]+`)
	blankLineRuns  = regexp.MustCompile(`\n{2,}`)
)

// Normalize produces the canonical text form used for both chunking and
// deduplication. It drops running headers and page numbers, collapses
// whitespace, and trims the result. The function is total and idempotent:
// Normalize(Normalize(x)) == Normalize(x) for every input.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if pageNumberLine.MatchString(stripped) {
			continue
		}
		if pageHeaderLine.MatchString(stripped) {
			continue
		}
		kept = append(kept, line)
	}
	cleaned := strings.Join(kept, "\n")
	cleaned = horizontalRuns.ReplaceAllString(cleaned, " ")
	cleaned = blankLineRuns.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
