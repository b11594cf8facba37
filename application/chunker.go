package application

import (
	"regexp"
	"strings"

	"support-rag/domain"
)

// sentenceBoundary marks the end of a sentence: terminal punctuation
// followed by whitespace. A heuristic splitter with no abbreviation
// awareness; the approximation is accepted, not something to perfect.
var sentenceBoundary = regexp.MustCompile(`[.?!]\s+`)

// splitSentences cuts text at sentence boundaries, keeping the terminal
// punctuation with its sentence and dropping the separating whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(text) {
		if tail := strings.TrimSpace(text[start:]); tail != "" {
			sentences = append(sentences, text[start:])
		}
	}
	return sentences
}

// Chunk splits normalized text into overlap-free chunks of at most maxWords
// words without ever splitting mid-sentence. Sentences accumulate greedily:
// a chunk closes only when it already holds at least one sentence and the
// next one would push it over budget. A single sentence longer than
// maxWords stays whole in its own chunk; that is the only allowed overflow.
// Empty input yields no chunks. Source order is preserved, so joining the
// chunks reconstructs the original sentence sequence.
func Chunk(text string, maxWords int) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentWords := 0
	for _, sentence := range sentences {
		words := len(strings.Fields(sentence))
		if len(current) > 0 && currentWords+words > maxWords {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentWords = 0
		}
		current = append(current, sentence)
		currentWords += words
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// ChunkSections chunks each extracted section independently and assigns
// document-wide ordinals. Each chunk inherits its section's heading, so a
// PDF chunk is attributed to the page it was extracted from and a markdown
// chunk to its nearest preceding heading. Section text is normalized before
// chunking.
func ChunkSections(sourceID string, sections []Section, maxWords int) []domain.DocumentChunk {
	var chunks []domain.DocumentChunk
	ordinal := 0
	for _, section := range sections {
		for _, text := range Chunk(Normalize(section.Text), maxWords) {
			chunks = append(chunks, domain.DocumentChunk{
				ID:             domain.ChunkID(sourceID, ordinal),
				SourceID:       sourceID,
				Ordinal:        ordinal,
				SectionHeading: section.Heading,
				Text:           text,
			})
			ordinal++
		}
	}
	return chunks
}
