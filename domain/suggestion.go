package domain

import "time"

// SnippetLength is the maximum length in runes of a suggestion snippet.
const SnippetLength = 200

// PastSuggestion is one ranked match from the resolved-ticket history.
type PastSuggestion struct {
	TicketID   string    `json:"ticket_id"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	Score      float32   `json:"score"`
	Rank       int       `json:"rank"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// DocSuggestion is one ranked match from the indexed documentation chunks.
type DocSuggestion struct {
	FileName       string  `json:"file_name"`
	SectionHeading string  `json:"section,omitempty"`
	Text           string  `json:"text"`
	Snippet        string  `json:"snippet"`
	Score          float32 `json:"score"`
	Rank           int     `json:"rank"`
}

// SuggestionResult is the retrieval output for one query. The two sequences
// stay separate: prior incidents and documentation answer different
// questions and are never interleaved into a single ranking.
type SuggestionResult struct {
	Past []PastSuggestion `json:"past"`
	Docs []DocSuggestion  `json:"docs"`
}

// Snippet truncates text to SnippetLength runes, appending an ellipsis when
// anything was cut. Truncation is rune-safe so multibyte text never splits.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLength {
		return text
	}
	return string(runes[:SnippetLength]) + "..."
}
