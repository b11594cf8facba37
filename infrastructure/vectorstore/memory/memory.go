package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"support-rag/domain"
)

// Store is an in-memory vector store using brute-force cosine similarity.
// It implements domain.VectorStore for development and tests, where running
// a Qdrant instance is not worth the setup.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	dimension int
	metric    domain.Metric
	order     []string // insertion order, keeps tie-breaking stable
	points    map[string]domain.Point
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// EnsureCollection creates the collection if absent and verifies the
// dimension if it already exists. Safe under concurrent first use.
func (s *Store) EnsureCollection(_ context.Context, name string, dimension int, metric domain.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.collections[name]; ok {
		if existing.dimension != dimension {
			return &domain.DimensionMismatchError{Collection: name, Want: dimension, Got: existing.dimension}
		}
		return nil
	}
	s.collections[name] = &collection{
		dimension: dimension,
		metric:    metric,
		points:    make(map[string]domain.Point),
	}
	return nil
}

// Upsert stores the batch, replacing any point that reuses an existing id.
func (s *Store) Upsert(_ context.Context, name string, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return &domain.UpsertError{Collection: name, Points: len(points), Err: fmt.Errorf("collection %s does not exist", name)}
	}
	for _, p := range points {
		if len(p.Vector) != col.dimension {
			return &domain.UpsertError{
				Collection: name,
				Points:     len(points),
				Err:        &domain.DimensionMismatchError{Collection: name, Want: col.dimension, Got: len(p.Vector)},
			}
		}
	}
	for _, p := range points {
		if _, exists := col.points[p.ID]; !exists {
			col.order = append(col.order, p.ID)
		}
		col.points[p.ID] = p
	}
	return nil
}

// Search ranks all matching points by cosine similarity to the query
// vector. Ties keep insertion order, which keeps results reproducible.
func (s *Store) Search(_ context.Context, name string, vector domain.Embedding, limit int, filter domain.Filter) ([]domain.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}

	var hits []domain.ScoredPoint
	for _, id := range col.order {
		p := col.points[id]
		if !matches(p.Payload, filter) {
			continue
		}
		hits = append(hits, domain.ScoredPoint{
			ID:      p.ID,
			Score:   domain.CosineSimilarity(vector, p.Vector),
			Payload: p.Payload,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Count returns the number of stored points.
func (s *Store) Count(_ context.Context, name string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return 0, fmt.Errorf("collection %s does not exist", name)
	}
	return uint64(len(col.points)), nil
}

// matches reports whether a payload satisfies every exact-match condition.
func matches(payload map[string]any, filter domain.Filter) bool {
	for key, want := range filter {
		got, ok := payload[key].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}
