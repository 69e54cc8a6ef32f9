package handlers

import (
	"net/http"
	"strconv"

	"screenlens/internal/events"
)

// HandleProgress returns the current progress record plus any events the
// caller has not seen yet. The since parameter is the last event sequence
// number the caller consumed; the UI polls this endpoint.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	since := int64(0)
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.writeError(w, "Invalid since parameter: "+err.Error(), http.StatusBadRequest)
			return
		}
		since = parsed
	}

	evts := h.bus.Since(since)
	if evts == nil {
		evts = []events.Event{}
	}

	h.writeJSON(w, map[string]any{
		"progress": h.lib.Progress(),
		"events":   evts,
	})
}
