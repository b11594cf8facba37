package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"support-rag/domain"
)

// embedVocabulary fixes the meaning of each fake-vector dimension so test
// similarities are predictable: a text's vector counts occurrences of each
// known word.
var embedVocabulary = []string{
	"redis", "helm", "istio", "argocd", "keycloak",
	"login", "sso", "failure", "cache", "timeout",
}

// fakeEmbedder is a deterministic bag-of-words embedder for tests.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.Embedding, error) {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, &domain.EmbeddingUnavailableError{Err: errors.New("backend down")}
	}

	vector := make(domain.Embedding, len(embedVocabulary)+1)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'")
		found := false
		for i, known := range embedVocabulary {
			if word == known {
				vector[i]++
				found = true
				break
			}
		}
		if !found {
			vector[len(embedVocabulary)]++
		}
	}
	// Degenerate input still embeds to a valid vector.
	allZero := true
	for _, v := range vector {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		vector[len(embedVocabulary)] = 1
	}
	return vector, nil
}

func (f *fakeEmbedder) Dimension() int { return len(embedVocabulary) + 1 }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// failingStore returns a fixed error from every search, to prove backend
// failures surface instead of masquerading as empty results.
type failingStore struct {
	err error
}

func (s *failingStore) EnsureCollection(context.Context, string, int, domain.Metric) error {
	return nil
}

func (s *failingStore) Upsert(context.Context, string, []domain.Point) error {
	return nil
}

func (s *failingStore) Search(context.Context, string, domain.Embedding, int, domain.Filter) ([]domain.ScoredPoint, error) {
	return nil, s.err
}

func (s *failingStore) Count(context.Context, string) (uint64, error) {
	return 0, s.err
}
