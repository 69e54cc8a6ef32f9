package search

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"screenlens/internal/models"
	"screenlens/internal/retry"
)

// DefaultBatchSize bounds how many corpus entries go into one ranking
// prompt. Search partitions run fully concurrent, so this only limits
// prompt size, not parallelism.
const DefaultBatchSize = 10

// GroupEvent reports one settled search partition. A failed partition is
// still reported, with an empty Results payload.
type GroupEvent struct {
	GroupIndex  int
	TotalGroups int
	Results     []models.SearchResult
}

// Ranker scores one partition of the corpus against a query. Implemented
// by the gemini client.
type Ranker interface {
	Search(ctx context.Context, query string, group []models.ImageRecord) ([]models.SearchResult, error)
}

// Config tunes the partitioner. Zero values fall back to defaults.
type Config struct {
	BatchSize int
	Retry     retry.Policy
	Notify    func(GroupEvent)
}

// Partitioner fans a query out across fixed-size partitions of the corpus
// and merges the per-partition rankings into one global ranking.
type Partitioner struct {
	ranker Ranker
	cfg    Config
}

// New creates a partitioner, filling in config defaults.
func New(ranker Ranker, cfg Config) *Partitioner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialDelay == 0 {
		cfg.Retry = retry.DefaultPolicy()
	}
	return &Partitioner{ranker: ranker, cfg: cfg}
}

// Run ranks the corpus against the query. An empty corpus short-circuits
// with no remote calls. All partitions launch concurrently; a partition
// whose ranking call exhausts its retries contributes nothing rather than
// failing the search. The merged list is deduplicated by image id
// (keeping the higher score) and sorted descending by score, ties broken
// by first-seen partition order.
func (p *Partitioner) Run(ctx context.Context, query string, images []models.ImageRecord) []models.SearchResult {
	if len(images) == 0 {
		return []models.SearchResult{}
	}

	totalGroups := (len(images) + p.cfg.BatchSize - 1) / p.cfg.BatchSize
	perGroup := make([][]models.SearchResult, totalGroups)

	slog.Info("Starting search fan-out",
		"query_len", len(query),
		"corpus", len(images),
		"batch_size", p.cfg.BatchSize,
		"groups", totalGroups)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < totalGroups; i++ {
		start := i * p.cfg.BatchSize
		end := min(start+p.cfg.BatchSize, len(images))
		group := images[start:end]

		g.Go(func() error {
			results, err := retry.Do(gctx, p.cfg.Retry, "search", func(ctx context.Context) ([]models.SearchResult, error) {
				return p.ranker.Search(ctx, query, group)
			})
			if err != nil {
				slog.Warn("Search partition failed, contributing no results",
					"group", i, "images", len(group), "err", err)
				results = nil
			}
			perGroup[i] = results

			if p.cfg.Notify != nil {
				p.cfg.Notify(GroupEvent{
					GroupIndex:  i,
					TotalGroups: totalGroups,
					Results:     append([]models.SearchResult(nil), results...),
				})
			}
			return nil
		})
	}
	// Partition failures are degraded to empty contributions above, so
	// Wait never reports an error here.
	_ = g.Wait()

	return Merge(perGroup)
}

// Merge flattens per-partition rankings into one global ranking. The
// remote side claims each partition arrives sorted and score-filtered,
// but Merge does not rely on that: duplicates keep the higher score and
// the whole list is re-sorted. The sort is stable over first-seen order,
// which is what breaks score ties.
func Merge(perGroup [][]models.SearchResult) []models.SearchResult {
	merged := make([]models.SearchResult, 0)
	slot := make(map[string]int)

	for _, group := range perGroup {
		for _, r := range group {
			if i, seen := slot[r.ImageID]; seen {
				if r.Score > merged[i].Score {
					merged[i].Score = r.Score
					merged[i].Reasoning = r.Reasoning
				}
				continue
			}
			slot[r.ImageID] = len(merged)
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Score > merged[b].Score
	})
	return merged
}
