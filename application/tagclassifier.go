package application

import (
	"context"
	"errors"
	"sync"

	"support-rag/domain"
)

// TagClassifier assigns the nearest tag from a fixed vocabulary to free
// text by cosine similarity of embeddings. Label vectors are computed once
// and cached for the lifetime of the classifier; they are never persisted
// as indexed data.
type TagClassifier struct {
	embedder domain.EmbeddingClient

	mu    sync.Mutex
	cache map[string]domain.Embedding
}

// NewTagClassifier creates a TagClassifier backed by the given embedder.
func NewTagClassifier(embedder domain.EmbeddingClient) *TagClassifier {
	return &TagClassifier{
		embedder: embedder,
		cache:    make(map[string]domain.Embedding),
	}
}

// Classify returns the vocabulary tag most similar to the text. Empty text
// still embeds (the gateway is total) and still yields a tag. When two tags
// score exactly equal, which one wins is unspecified.
func (tc *TagClassifier) Classify(ctx context.Context, text string, vocabulary []string) (string, error) {
	if len(vocabulary) == 0 {
		return "", errors.New("tag vocabulary is empty")
	}

	textVector, err := tc.embedder.Embed(ctx, text)
	if err != nil {
		return "", err
	}

	bestTag := ""
	var bestScore float32
	for _, tag := range vocabulary {
		tagVector, err := tc.tagVector(ctx, tag)
		if err != nil {
			return "", err
		}
		score := domain.CosineSimilarity(textVector, tagVector)
		if bestTag == "" || score > bestScore {
			bestTag = tag
			bestScore = score
		}
	}
	return bestTag, nil
}

// TagRecord is an existing record with its stored tag, as seen by a batch
// re-tagging run.
type TagRecord struct {
	ID   string
	Text string
	Tag  string
}

// TagUpdate is a record whose computed tag differs from its stored tag.
type TagUpdate struct {
	ID     string
	OldTag string
	NewTag string
}

// Retag classifies every record and reports only the ones whose tag
// changed, so callers issue the minimum number of writes.
func (tc *TagClassifier) Retag(ctx context.Context, records []TagRecord, vocabulary []string) ([]TagUpdate, error) {
	var updates []TagUpdate
	for _, record := range records {
		tag, err := tc.Classify(ctx, record.Text, vocabulary)
		if err != nil {
			return nil, err
		}
		if tag != record.Tag {
			updates = append(updates, TagUpdate{ID: record.ID, OldTag: record.Tag, NewTag: tag})
		}
	}
	return updates, nil
}

// tagVector returns the cached embedding for a tag, computing it on first use.
func (tc *TagClassifier) tagVector(ctx context.Context, tag string) (domain.Embedding, error) {
	tc.mu.Lock()
	cached, ok := tc.cache[tag]
	tc.mu.Unlock()
	if ok {
		return cached, nil
	}

	vector, err := tc.embedder.Embed(ctx, tag)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	tc.cache[tag] = vector
	tc.mu.Unlock()
	return vector, nil
}
