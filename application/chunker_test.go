package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-rag/domain"
)

func TestChunk_GreedyAccumulation(t *testing.T) {
	// One-word sentences with a two-word budget: the chunk closes only
	// when the next sentence would overflow it.
	assert.Equal(t, []string{"A. B.", "C."}, Chunk("A. B. C.", 2))
}

func TestChunk_EmptyInput(t *testing.T) {
	assert.Empty(t, Chunk("", 10))
	assert.Empty(t, Chunk("   ", 10))
}

func TestChunk_SingleSentenceUnderBudget(t *testing.T) {
	assert.Equal(t, []string{"Just one sentence here."}, Chunk("Just one sentence here.", 50))
}

func TestChunk_OversizedSentenceKeptWhole(t *testing.T) {
	long := "This single sentence has quite a few more words than the budget allows."
	chunks := Chunk(long+" Tiny.", 5)
	require.Len(t, chunks, 2)
	assert.Equal(t, long, chunks[0])
	assert.Equal(t, "Tiny.", chunks[1])
}

func TestChunk_RespectsWordBudget(t *testing.T) {
	text := "One two three. Four five. Six seven eight nine. Ten. Eleven twelve thirteen fourteen."
	for _, maxWords := range []int{1, 3, 5, 8, 100} {
		for _, chunk := range Chunk(text, maxWords) {
			words := len(strings.Fields(chunk))
			sentences := len(splitSentences(chunk))
			if sentences > 1 {
				assert.LessOrEqual(t, words, maxWords,
					"multi-sentence chunk %q exceeds budget %d", chunk, maxWords)
			}
		}
	}
}

func TestChunk_ReconstructsSentenceSequence(t *testing.T) {
	text := "First sentence. Second sentence? Third sentence! Fourth one. Fifth."
	original := splitSentences(text)

	for _, maxWords := range []int{1, 2, 4, 100} {
		chunks := Chunk(text, maxWords)
		var reassembled []string
		for _, chunk := range chunks {
			reassembled = append(reassembled, splitSentences(chunk)...)
		}
		assert.Equal(t, original, reassembled, "maxWords=%d must not drop, duplicate, or reorder sentences", maxWords)
	}
}

func TestChunk_QuestionAndExclamationBoundaries(t *testing.T) {
	chunks := Chunk("Is it broken? It is! Restart it.", 3)
	assert.Equal(t, []string{"Is it broken?", "It is!", "Restart it."}, chunks)
}

func TestChunkSections_AssignsHeadingsAndOrdinals(t *testing.T) {
	sections := []Section{
		{Heading: "Setup", Text: "Install the chart. Configure values."},
		{Heading: "Troubleshooting", Text: "Check the logs."},
	}
	chunks := ChunkSections("guide.md", sections, 3)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Setup", chunks[0].SectionHeading)
	assert.Equal(t, "Setup", chunks[1].SectionHeading)
	assert.Equal(t, "Troubleshooting", chunks[2].SectionHeading)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, "guide.md", chunk.SourceID)
		assert.Equal(t, domain.ChunkID("guide.md", i), chunk.ID)
	}
}

func TestChunkSections_StableIDsAcrossReingestion(t *testing.T) {
	sections := []Section{{Heading: "Page 1", Text: "Same text. Same position."}}
	first := ChunkSections("doc.pdf", sections, 10)
	second := ChunkSections("doc.pdf", sections, 10)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestChunkSections_EmptySections(t *testing.T) {
	assert.Empty(t, ChunkSections("empty.md", nil, 10))
	assert.Empty(t, ChunkSections("blank.md", []Section{{Heading: "H", Text: "   "}}, 10))
}
