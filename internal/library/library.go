package library

import (
	"fmt"
	"math"
	"sync"

	"screenlens/internal/models"
)

// Library is the authoritative in-memory collection of image records for
// a session. Scheduler and partitioner receive copies for processing and
// hand back outcomes; only the library mutates records, through the
// reducer.
type Library struct {
	mu      sync.RWMutex
	records []models.ImageRecord
	label   string
}

// New creates an empty library.
func New() *Library {
	return &Library{}
}

// Add registers new records. Incoming records with no status default to
// pending.
func (l *Library) Add(records ...models.ImageRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range records {
		if r.Status == "" {
			r.Status = models.StatusPending
		}
		l.records = append(l.records, r)
	}
}

// List returns a copy of all records in insertion order.
func (l *Library) List() []models.ImageRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.ImageRecord(nil), l.records...)
}

// Get returns one record by id.
func (l *Library) Get(id string) (models.ImageRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.ImageRecord{}, false
}

// MarkProcessing moves the given pending records into processing.
// Terminal records are left alone.
func (l *Library) MarkProcessing(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i := range l.records {
		if want[l.records[i].ID] && !l.records[i].Status.Terminal() {
			l.records[i].Status = models.StatusProcessing
		}
	}
}

// ApplyOutcomes runs the reducer against the current collection and
// updates the progress label. Safe to call from group-completion
// callbacks on concurrent partitions: each call touches disjoint ids and
// the swap is serialized here.
func (l *Library) ApplyOutcomes(outcomes []models.Outcome, label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = Apply(l.records, outcomes)
	l.label = label
}

// Progress derives the current progress record. Completed counts records
// in either terminal state so failed images still advance the bar.
func (l *Library) Progress() models.Progress {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.records)
	completed := 0
	for _, r := range l.records {
		if r.Status.Terminal() {
			completed++
		}
	}

	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(completed) / float64(total)))
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	label := l.label
	if label == "" {
		label = fmt.Sprintf("%d of %d images analyzed", completed, total)
	}

	return models.Progress{
		Total:        total,
		Completed:    completed,
		CurrentLabel: label,
		Percentage:   pct,
	}
}

// Completed returns the records eligible for search: those whose analysis
// finished successfully.
func (l *Library) Completed() []models.ImageRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.ImageRecord, 0, len(l.records))
	for _, r := range l.records {
		if r.Status == models.StatusCompleted {
			out = append(out, r)
		}
	}
	return out
}
