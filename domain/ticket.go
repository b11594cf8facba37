package domain

import "time"

// Ticket statuses as stored by the ticketing system.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Ticket is the ticketing-system record shape consumed by the retrieval
// core. It is read to build query text and to seed the tickets collection;
// ticket CRUD itself lives outside this module.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Tag         string    `json:"tag,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ResolvedAt  time.Time `json:"resolved_at,omitempty"`
}

// QueryText joins the fields of a ticket that are embedded for retrieval.
func (t Ticket) QueryText() string {
	return t.Title + "\n\n" + t.Description
}
