package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"screenlens/internal/config"
	"screenlens/internal/models"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := config.Default()
	cfg.UploadsDir = t.TempDir()
	return New(cfg)
}

func TestHandleImagesEmpty(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	w := httptest.NewRecorder()
	h.HandleImages(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var records []models.ImageRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("Expected JSON array, got error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty list, got %d records", len(records))
	}
}

func TestHandleImagesRejectsPost(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/images", nil)
	w := httptest.NewRecorder()
	h.HandleImages(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestHandleSearchEmptyCorpus(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query": "anything"}`))
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var response struct {
		Similarities []models.SearchResult `json:"similarities"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if response.Similarities == nil {
		t.Error("Expected similarities key present, got null")
	}
	if len(response.Similarities) != 0 {
		t.Errorf("Expected no results for empty corpus, got %d", len(response.Similarities))
	}
}

func TestHandleSearchInvalidJSON(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandleProgress(t *testing.T) {
	h := newTestHandler(t)
	h.lib.Add(
		models.ImageRecord{ID: "a", Status: models.StatusCompleted},
		models.ImageRecord{ID: "b", Status: models.StatusProcessing},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/progress?since=0", nil)
	w := httptest.NewRecorder()
	h.HandleProgress(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var response struct {
		Progress models.Progress `json:"progress"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if response.Progress.Total != 2 || response.Progress.Completed != 1 {
		t.Errorf("Expected 1/2 progress, got %d/%d", response.Progress.Completed, response.Progress.Total)
	}
	if response.Progress.Percentage != 50 {
		t.Errorf("Expected 50%%, got %d%%", response.Progress.Percentage)
	}
}

func TestHandleProgressInvalidSince(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/progress?since=abc", nil)
	w := httptest.NewRecorder()
	h.HandleProgress(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandleUploadRequiresFiles(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	h.HandleUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty upload, got %d", w.Code)
	}
}

func TestHandleStaticBlocksTraversal(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/static/../go.mod", nil)
	req.URL.Path = "/static/../go.mod"
	w := httptest.NewRecorder()
	h.HandleStatic(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for traversal attempt, got %d", w.Code)
	}
}
