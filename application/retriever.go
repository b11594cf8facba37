package application

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"support-rag/domain"
)

// suggestionLimit caps each side of a suggestion result.
const suggestionLimit = 5

// SuggestionService answers "has anyone seen this before?" for a ticket: it
// embeds the ticket text once and queries the resolved-ticket history and
// the documentation chunks, returning both ranked lists unmerged.
type SuggestionService struct {
	embedder          domain.EmbeddingClient
	store             domain.VectorStore
	ticketsCollection string
	docsCollection    string
}

// NewSuggestionService creates a SuggestionService querying the given
// ticket-history and document collections.
func NewSuggestionService(embedder domain.EmbeddingClient, store domain.VectorStore, ticketsCollection, docsCollection string) *SuggestionService {
	return &SuggestionService{
		embedder:          embedder,
		store:             store,
		ticketsCollection: ticketsCollection,
		docsCollection:    docsCollection,
	}
}

// Suggest returns the most relevant resolved tickets and documentation
// chunks for the given ticket text. The single embedding call is a hard
// prerequisite; the two collection searches then run concurrently. An
// embedding failure fails the whole call with a RetrievalUnavailableError,
// and a search failure is surfaced rather than returned as an empty side —
// callers must be able to tell backend failure from "no matches".
func (s *SuggestionService) Suggest(ctx context.Context, ticketText string) (*domain.SuggestionResult, error) {
	vector, err := s.embedder.Embed(ctx, ticketText)
	if err != nil {
		return nil, &domain.RetrievalUnavailableError{Err: err}
	}

	var pastHits, docHits []domain.ScoredPoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := s.store.Search(gctx, s.ticketsCollection, vector, suggestionLimit,
			domain.Filter{"status": domain.StatusResolved})
		if err != nil {
			return fmt.Errorf("ticket history search: %w", err)
		}
		pastHits = hits
		return nil
	})
	g.Go(func() error {
		hits, err := s.store.Search(gctx, s.docsCollection, vector, suggestionLimit, nil)
		if err != nil {
			return fmt.Errorf("document search: %w", err)
		}
		docHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.SuggestionResult{
		Past: make([]domain.PastSuggestion, 0, len(pastHits)),
		Docs: make([]domain.DocSuggestion, 0, len(docHits)),
	}
	for i, hit := range pastHits {
		result.Past = append(result.Past, domain.PastSuggestion{
			TicketID:   payloadString(hit.Payload, "ticket_id"),
			Title:      payloadString(hit.Payload, "title"),
			Snippet:    domain.Snippet(payloadString(hit.Payload, "description")),
			Score:      hit.Score,
			Rank:       i + 1,
			ResolvedAt: payloadTime(hit.Payload, "resolved_at"),
		})
	}
	for i, hit := range docHits {
		text := payloadString(hit.Payload, "text")
		result.Docs = append(result.Docs, domain.DocSuggestion{
			FileName:       payloadString(hit.Payload, "file_name"),
			SectionHeading: payloadString(hit.Payload, "section"),
			Text:           text,
			Snippet:        domain.Snippet(text),
			Score:          hit.Score,
			Rank:           i + 1,
		})
	}
	return result, nil
}

// payloadString reads a string payload field, tolerating absent keys.
func payloadString(payload map[string]any, key string) string {
	if value, ok := payload[key].(string); ok {
		return value
	}
	return ""
}

// payloadTime parses an RFC3339 payload field. Qdrant payloads carry no
// native time type, so timestamps travel as strings.
func payloadTime(payload map[string]any, key string) time.Time {
	parsed, err := time.Parse(time.RFC3339, payloadString(payload, key))
	if err != nil {
		return time.Time{}
	}
	return parsed
}
