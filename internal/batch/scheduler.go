package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"screenlens/internal/models"
	"screenlens/internal/retry"
)

const (
	// DefaultBatchSize keeps concurrent remote calls within the API's
	// comfort zone for bulk uploads.
	DefaultBatchSize = 5

	// DefaultInterGroupDelay is the pause between groups. Throttling,
	// not correctness: the remote API rate-limits aggressive clients.
	DefaultInterGroupDelay = 100 * time.Millisecond
)

// GroupEvent reports one settled group. Delivered through Config.Notify
// after the group's outcomes are final and before the next group starts.
type GroupEvent struct {
	GroupIndex  int
	TotalGroups int
	Outcomes    []models.Outcome
}

// Processor handles a single image. Implemented by analysis.Task.
type Processor interface {
	Process(ctx context.Context, img models.ImageRecord) models.Outcome
}

// Config tunes the scheduler. Zero values fall back to defaults; Sleep is
// injectable so tests run without real timers.
type Config struct {
	BatchSize       int
	InterGroupDelay time.Duration
	Sleep           retry.SleepFunc
	Notify          func(GroupEvent)
}

// Scheduler drives the upload path: contiguous groups processed
// sequentially, all images within a group concurrently.
type Scheduler struct {
	proc Processor
	cfg  Config
}

// New creates a scheduler, filling in config defaults.
func New(proc Processor, cfg Config) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.InterGroupDelay <= 0 {
		cfg.InterGroupDelay = DefaultInterGroupDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
			}
		}
	}
	return &Scheduler{proc: proc, cfg: cfg}
}

// Run processes all images and returns their outcomes in input order.
// A failed image never blocks its group-mates, and a faulted group never
// stops the run; Run always returns one outcome per input image.
func (s *Scheduler) Run(ctx context.Context, images []models.ImageRecord) []models.Outcome {
	if len(images) == 0 {
		return []models.Outcome{}
	}

	outcomes := make([]models.Outcome, len(images))
	totalGroups := (len(images) + s.cfg.BatchSize - 1) / s.cfg.BatchSize

	slog.Info("Starting upload batch run",
		"images", len(images),
		"batch_size", s.cfg.BatchSize,
		"groups", totalGroups)

	for g := 0; g < totalGroups; g++ {
		start := g * s.cfg.BatchSize
		end := min(start+s.cfg.BatchSize, len(images))

		s.runGroup(ctx, images[start:end], outcomes[start:end])

		if s.cfg.Notify != nil {
			s.cfg.Notify(GroupEvent{
				GroupIndex:  g,
				TotalGroups: totalGroups,
				Outcomes:    append([]models.Outcome(nil), outcomes[start:end]...),
			})
		}

		if g < totalGroups-1 {
			s.cfg.Sleep(ctx, s.cfg.InterGroupDelay)
		}
	}

	return outcomes
}

// runGroup launches every task in the group concurrently and waits for
// all of them to settle. Results land in out by index, so the final slice
// preserves input order regardless of completion timing. Panics at either
// level are downgraded to failure outcomes for whatever slots are still
// empty.
func (s *Scheduler) runGroup(ctx context.Context, group []models.ImageRecord, out []models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Group orchestration faulted", "panic", r)
			for i := range group {
				if out[i].ImageID == "" {
					out[i] = models.Outcome{
						ImageID: group[i].ID,
						Err:     "batch processing failed",
					}
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for i := range group {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Image task panicked", "image_id", group[i].ID, "panic", r)
					out[i] = models.Outcome{
						ImageID: group[i].ID,
						Err:     "batch processing failed",
					}
				}
			}()
			out[i] = s.proc.Process(ctx, group[i])
		}(i)
	}
	wg.Wait()
}
