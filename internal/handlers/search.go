package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"screenlens/internal/events"
	"screenlens/internal/models"
	"screenlens/internal/search"
)

// HandleSearch ranks the analyzed corpus against a natural-language
// query. Runs synchronously: search partitions fan out concurrently and
// the merged ranking comes back in the response.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	corpus := h.lib.Completed()
	slog.Info("Search requested", "query", request.Query, "corpus", len(corpus))

	partitioner := search.New(h.client, search.Config{
		BatchSize: h.cfg.Search.BatchSize,
		Retry:     h.retryPolicy(),
		Notify: func(ev search.GroupEvent) {
			h.bus.Publish(events.Event{
				Type:        events.TypeSearchBatch,
				GroupIndex:  ev.GroupIndex,
				TotalGroups: ev.TotalGroups,
				Results:     ev.Results,
			})
		},
	})

	results := partitioner.Run(r.Context(), request.Query, corpus)

	h.bus.Publish(events.Event{
		Type:    events.TypeSearchDone,
		Message: request.Query,
	})

	h.writeJSON(w, map[string]any{
		"similarities": results,
	})
}

// HandleImages lists all image records in upload order.
func (h *Handler) HandleImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := h.lib.List()
	if records == nil {
		records = []models.ImageRecord{}
	}
	h.writeJSON(w, records)
}
