package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// chunkNamespace is the UUID namespace used to derive deterministic chunk ids.
var chunkNamespace = uuid.MustParse("8f3c9d3e-4a1b-4c7d-9f2e-6b5a0d8c1e42")

// DocumentChunk is a unit of indexed text: a sentence-aligned slice of a
// source document together with its position and optional section label.
// Chunks are created once during ingestion and never mutated; re-ingesting a
// source produces the same ids for the same logical positions.
type DocumentChunk struct {
	ID             string    // unique within a collection, stable across re-ingestion
	SourceID       string    // originating file or ticket
	Ordinal        int       // 0-based position within the source
	SectionHeading string    // markdown heading or "Page N"; empty for plain paragraphs
	Text           string    // literal content, sentence-aligned
	Vector         Embedding // embedding of Text, dimension fixed per collection
}

// ChunkID derives the deterministic point id for a chunk at the given
// position of a source. The same source and ordinal always map to the same
// id, which makes re-ingestion an overwrite instead of a duplicate.
func ChunkID(sourceID string, ordinal int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s-%d", sourceID, ordinal))).String()
}

// Payload returns the chunk's queryable payload fields for the vector store.
func (c DocumentChunk) Payload() map[string]any {
	return map[string]any{
		"file_name": c.SourceID,
		"chunk_id":  c.Ordinal,
		"section":   c.SectionHeading,
		"text":      c.Text,
	}
}
