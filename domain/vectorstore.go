package domain

import "context"

// Metric identifies the distance metric a collection was created with.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
	MetricDot       Metric = "dot"
)

// Point is a single vector with its identifying payload, ready for upsert.
type Point struct {
	ID      string
	Vector  Embedding
	Payload map[string]any
}

// ScoredPoint is a search hit: a stored point with its similarity score.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Filter restricts search candidates by exact match on payload fields.
// A nil or empty filter matches every point.
type Filter map[string]string

// VectorStore defines the interface for interacting with a vector database.
// All points within a collection share one vector dimension and one metric.
type VectorStore interface {
	// EnsureCollection creates the collection if absent. Creating an existing
	// collection with the same dimension is a no-op; a differing dimension
	// fails with a DimensionMismatchError.
	EnsureCollection(ctx context.Context, name string, dimension int, metric Metric) error
	// Upsert writes a batch of points. Re-upserting an existing id replaces
	// its vector and payload. The batch succeeds or fails as a unit.
	Upsert(ctx context.Context, collection string, points []Point) error
	// Search returns up to limit points ordered by descending similarity.
	Search(ctx context.Context, collection string, vector Embedding, limit int, filter Filter) ([]ScoredPoint, error)
	// Count returns the number of points stored in the collection.
	Count(ctx context.Context, collection string) (uint64, error)
}
