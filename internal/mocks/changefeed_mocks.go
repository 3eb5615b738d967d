package mocks

import (
	"context"
	"sync"

	"github.com/welldanyogia/elite-estate/internal/changefeed"
)

// RecordingPublisher implements changefeed.Publisher and keeps every change
type RecordingPublisher struct {
	mu      sync.Mutex
	changes []changefeed.Change
}

// NewRecordingPublisher creates an empty RecordingPublisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records the change
func (p *RecordingPublisher) Publish(_ context.Context, change changefeed.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
}

// Changes returns a copy of the recorded changes
func (p *RecordingPublisher) Changes() []changefeed.Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]changefeed.Change(nil), p.changes...)
}

// Reset drops recorded changes
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = nil
}
