package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"screenlens/internal/config"
	"screenlens/internal/events"
	"screenlens/internal/gemini"
	"screenlens/internal/library"
	"screenlens/internal/retry"
)

// Handler wires the thin HTTP surface to the orchestration layer: the
// image library, the progress event bus, and the Gemini client.
type Handler struct {
	cfg    config.Config
	lib    *library.Library
	bus    *events.Bus
	client *gemini.Client
}

// New builds a handler with a fresh in-memory library and event bus.
func New(cfg config.Config) *Handler {
	return &Handler{
		cfg:    cfg,
		lib:    library.New(),
		bus:    events.NewBus(0),
		client: gemini.New(cfg.Model),
	}
}

func (h *Handler) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:   h.cfg.Retry.MaxRetries,
		InitialDelay: h.cfg.Retry.InitialDelay(),
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) ensureUploadsDir() error {
	return os.MkdirAll(h.cfg.UploadsDir, 0755)
}
