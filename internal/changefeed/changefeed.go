// Package changefeed carries row change events for the inquiries table
// between the store writers and everything that mirrors it.
package changefeed

import (
	"context"
	"sync"
	"time"

	"github.com/welldanyogia/elite-estate/internal/models"
)

// TableInquiries is the only table the feed reports on
const TableInquiries = "inquiries"

// EventType is the kind of row change
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Change describes one row change
type Change struct {
	Table  string          `json:"table"`
	Type   EventType       `json:"type"`
	Record *models.Inquiry `json:"record,omitempty"`
	At     time.Time       `json:"at"`
	Origin string          `json:"origin,omitempty"`
}

// NewInquiryChange builds a change for the inquiries table stamped with the current time
func NewInquiryChange(eventType EventType, record *models.Inquiry) Change {
	var snapshot *models.Inquiry
	if record != nil {
		copied := *record
		snapshot = &copied
	}
	return Change{
		Table:  TableInquiries,
		Type:   eventType,
		Record: snapshot,
		At:     time.Now().UTC(),
	}
}

// Publisher receives change events. Publish must not block for long.
type Publisher interface {
	Publish(ctx context.Context, change Change)
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(ctx context.Context, change Change)

// Publish calls f
func (f PublisherFunc) Publish(ctx context.Context, change Change) {
	f(ctx, change)
}

// Fanout delivers every change to all of its publishers in order
type Fanout struct {
	mu         sync.RWMutex
	publishers []Publisher
}

// NewFanout creates a Fanout over the given publishers, skipping nils
func NewFanout(publishers ...Publisher) *Fanout {
	f := &Fanout{}
	for _, p := range publishers {
		f.Add(p)
	}
	return f
}

// Add appends a publisher
func (f *Fanout) Add(p Publisher) {
	if p == nil {
		return
	}
	f.mu.Lock()
	f.publishers = append(f.publishers, p)
	f.mu.Unlock()
}

// Publish implements Publisher
func (f *Fanout) Publish(ctx context.Context, change Change) {
	f.mu.RLock()
	publishers := make([]Publisher, len(f.publishers))
	copy(publishers, f.publishers)
	f.mu.RUnlock()

	for _, p := range publishers {
		p.Publish(ctx, change)
	}
}
