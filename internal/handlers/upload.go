package handlers

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"screenlens/internal/analysis"
	"screenlens/internal/batch"
	"screenlens/internal/events"
	"screenlens/internal/models"
)

const maxUploadBytes = 10 * 1024 * 1024

// HandleUpload accepts a multipart batch of screenshots, registers them
// as pending records, and kicks off the analysis run in the background.
// The response carries the new record ids; progress flows through the
// event stream.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(64 * 1024 * 1024); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		h.writeError(w, "No files in upload", http.StatusBadRequest)
		return
	}

	if err := h.ensureUploadsDir(); err != nil {
		h.writeError(w, "Failed to create uploads directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	records := make([]models.ImageRecord, 0, len(files))
	for _, header := range files {
		record, err := h.saveUpload(header)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		records = append(records, record)
	}

	h.lib.Add(records...)

	go h.runUploadBatch(context.Background(), records)

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	h.writeJSON(w, map[string]any{
		"message":   fmt.Sprintf("Queued %d images for analysis", len(records)),
		"image_ids": ids,
	})
}

// saveUpload stores one uploaded file under the uploads dir, named by
// content MD5 so re-uploads of the same screenshot share a file.
func (h *Handler) saveUpload(header *multipart.FileHeader) (models.ImageRecord, error) {
	file, err := header.Open()
	if err != nil {
		return models.ImageRecord{}, fmt.Errorf("failed to read file %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return models.ImageRecord{}, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) >= maxUploadBytes {
		return models.ImageRecord{}, fmt.Errorf("file %s too large (max 10MB)", header.Filename)
	}

	filename := fmt.Sprintf("%x%s", md5.Sum(data), filepath.Ext(header.Filename))
	path := filepath.Join(h.cfg.UploadsDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return models.ImageRecord{}, fmt.Errorf("failed to save image: %w", err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}

	slog.Info("Image saved", "filename", filename, "original", header.Filename, "size", len(data))

	return models.ImageRecord{
		ID:        uuid.NewString(),
		Filename:  header.Filename,
		Path:      path,
		URL:       "/static/uploads/" + filename,
		MIMEType:  mimeType,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// runUploadBatch drives the scheduler over the new records, folding each
// settled group into the library and publishing progress events.
func (h *Handler) runUploadBatch(ctx context.Context, records []models.ImageRecord) {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	h.lib.MarkProcessing(ids...)

	task := &analysis.Task{Remote: h.client, Retry: h.retryPolicy()}
	scheduler := batch.New(task, batch.Config{
		BatchSize:       h.cfg.Upload.BatchSize,
		InterGroupDelay: h.cfg.Upload.InterGroupDelay(),
		Notify: func(ev batch.GroupEvent) {
			label := fmt.Sprintf("Analyzing batch %d of %d", ev.GroupIndex+1, ev.TotalGroups)
			h.lib.ApplyOutcomes(ev.Outcomes, label)
			progress := h.lib.Progress()
			h.bus.Publish(events.Event{
				Type:        events.TypeUploadBatch,
				GroupIndex:  ev.GroupIndex,
				TotalGroups: ev.TotalGroups,
				Progress:    &progress,
			})
		},
	})

	outcomes := scheduler.Run(ctx, records)

	failed := 0
	for _, o := range outcomes {
		if !o.OK {
			failed++
		}
	}
	slog.Info("Upload batch run finished", "images", len(outcomes), "failed", failed)

	h.lib.ApplyOutcomes(outcomes, "Analysis complete")
	progress := h.lib.Progress()
	h.bus.Publish(events.Event{
		Type:     events.TypeUploadDone,
		Progress: &progress,
		Message:  fmt.Sprintf("%d analyzed, %d failed", len(outcomes)-failed, failed),
	})
}
