package events

import (
	"sync"
	"time"

	"screenlens/internal/models"
)

// Type classifies progress events emitted during batch runs.
type Type string

const (
	TypeUploadBatch Type = "upload_batch"
	TypeUploadDone  Type = "upload_done"
	TypeSearchBatch Type = "search_batch"
	TypeSearchDone  Type = "search_done"
)

// Event is a sequenced progress record consumed by UI polling.
type Event struct {
	Seq         int64                 `json:"seq"`
	Timestamp   time.Time             `json:"timestamp"`
	Type        Type                  `json:"type"`
	GroupIndex  int                   `json:"group_index"`
	TotalGroups int                   `json:"total_groups"`
	Progress    *models.Progress      `json:"progress,omitempty"`
	Results     []models.SearchResult `json:"results,omitempty"`
	Message     string                `json:"message,omitempty"`
}

// Bus stores recent events and provides incremental reads. Group
// completions from concurrent search partitions may publish from
// different goroutines; the bus serializes them and assigns a total
// order via Seq.
type Bus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewBus creates a bounded in-memory event buffer.
func NewBus(maxEvents int) *Bus {
	if maxEvents <= 0 {
		maxEvents = 500
	}
	return &Bus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event and assigns sequence and timestamp.
func (b *Bus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *Bus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
