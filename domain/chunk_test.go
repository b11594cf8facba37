package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID_Deterministic(t *testing.T) {
	assert.Equal(t, ChunkID("guide.md", 3), ChunkID("guide.md", 3))
}

func TestChunkID_DistinctPerOrdinal(t *testing.T) {
	assert.NotEqual(t, ChunkID("guide.md", 0), ChunkID("guide.md", 1))
}

func TestChunkID_DistinctPerSource(t *testing.T) {
	assert.NotEqual(t, ChunkID("guide.md", 0), ChunkID("manual.pdf", 0))
}

func TestDocumentChunk_Payload(t *testing.T) {
	c := DocumentChunk{
		ID:             ChunkID("guide.md", 2),
		SourceID:       "guide.md",
		Ordinal:        2,
		SectionHeading: "Setup",
		Text:           "Install the chart.",
	}

	payload := c.Payload()
	assert.Equal(t, "guide.md", payload["file_name"])
	assert.Equal(t, 2, payload["chunk_id"])
	assert.Equal(t, "Setup", payload["section"])
	assert.Equal(t, "Install the chart.", payload["text"])
}
