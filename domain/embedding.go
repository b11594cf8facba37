package domain

import (
	"context"
	"math"
)

// Embedding represents a numerical vector representation of text.
type Embedding []float32

// EmbeddingClient defines the interface for generating embeddings from text.
// Implementations must be deterministic for a fixed model configuration and
// must truncate overlong input instead of failing.
type EmbeddingClient interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) (Embedding, error)
	// Dimension returns the fixed vector dimension produced by this client.
	Dimension() int
}

// CosineSimilarity computes the cosine similarity between two embeddings.
// Returns 0 when either vector has zero magnitude or the lengths differ.
func CosineSimilarity(a, b Embedding) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
