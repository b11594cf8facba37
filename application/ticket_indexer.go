package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"support-rag/domain"
)

// TicketIndexer seeds the ticket-history collection from resolved ticket
// records so suggestion queries have prior incidents to draw on. Point ids
// derive from ticket ids, so indexing the same tickets again overwrites
// instead of duplicating.
type TicketIndexer struct {
	embedder   domain.EmbeddingClient
	store      domain.VectorStore
	classifier *TagClassifier
	vocabulary []string
}

// NewTicketIndexer creates a TicketIndexer. The classifier and vocabulary
// are used to tag each ticket before indexing; an empty vocabulary skips
// tagging.
func NewTicketIndexer(embedder domain.EmbeddingClient, store domain.VectorStore, classifier *TagClassifier, vocabulary []string) *TicketIndexer {
	return &TicketIndexer{
		embedder:   embedder,
		store:      store,
		classifier: classifier,
		vocabulary: vocabulary,
	}
}

// IndexTickets embeds and upserts every resolved ticket into the given
// collection. Tickets that are still open are skipped: only resolved
// history is useful as a suggestion source.
func (ti *TicketIndexer) IndexTickets(ctx context.Context, tickets []domain.Ticket, collection string) (int, error) {
	if err := ti.store.EnsureCollection(ctx, collection, ti.embedder.Dimension(), domain.MetricCosine); err != nil {
		return 0, err
	}

	var points []domain.Point
	for _, ticket := range tickets {
		if ticket.Status != domain.StatusResolved {
			continue
		}
		vector, err := ti.embedder.Embed(ctx, ticket.QueryText())
		if err != nil {
			return 0, fmt.Errorf("embedding ticket %s: %w", ticket.ID, err)
		}
		tag := ticket.Tag
		if tag == "" && len(ti.vocabulary) > 0 {
			tag, err = ti.classifier.Classify(ctx, ticket.QueryText(), ti.vocabulary)
			if err != nil {
				return 0, fmt.Errorf("classifying ticket %s: %w", ticket.ID, err)
			}
		}
		// Older records predate resolution timestamps; their creation time
		// is the closest thing to one.
		resolvedAt := ticket.ResolvedAt
		if resolvedAt.IsZero() {
			resolvedAt = ticket.CreatedAt
		}
		points = append(points, domain.Point{
			ID:     domain.ChunkID(ticket.ID, 0),
			Vector: vector,
			Payload: map[string]any{
				"ticket_id":   ticket.ID,
				"title":       ticket.Title,
				"description": ticket.Description,
				"status":      ticket.Status,
				"tag":         tag,
				"created_at":  ticket.CreatedAt.Format(time.RFC3339),
				"resolved_at": resolvedAt.Format(time.RFC3339),
			},
		})
	}
	if len(points) == 0 {
		return 0, nil
	}
	if err := ti.store.Upsert(ctx, collection, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// SeedFromFile loads tickets from a JSON file and indexes the resolved
// ones. Used at startup so a fresh deployment has suggestion history.
func (ti *TicketIndexer) SeedFromFile(ctx context.Context, path, collection string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}
	indexed, err := ti.IndexTickets(ctx, tickets, collection)
	if err != nil {
		return err
	}
	log.Printf("seeded %d resolved tickets into %s", indexed, collection)
	return nil
}

// RetagFromFile loads tickets from a JSON file and reports which resolved
// tickets would carry a different tag under the current vocabulary. It only
// reports; writing tags back is the ticketing system's job.
func (ti *TicketIndexer) RetagFromFile(ctx context.Context, path string) ([]TagUpdate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ticket file: %w", err)
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("parsing ticket file: %w", err)
	}

	records := make([]TagRecord, 0, len(tickets))
	for _, ticket := range tickets {
		if ticket.Status != domain.StatusResolved {
			continue
		}
		records = append(records, TagRecord{ID: ticket.ID, Text: ticket.QueryText(), Tag: ticket.Tag})
	}
	return ti.classifier.Retag(ctx, records, ti.vocabulary)
}
