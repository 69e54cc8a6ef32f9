package models

import "time"

// ImageStatus is the lifecycle state of an uploaded screenshot.
// Records move pending -> processing -> completed or error, and never
// leave a terminal state.
type ImageStatus string

const (
	StatusPending    ImageStatus = "pending"
	StatusProcessing ImageStatus = "processing"
	StatusCompleted  ImageStatus = "completed"
	StatusError      ImageStatus = "error"
)

// Terminal reports whether no further transitions occur for this status.
func (s ImageStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// ImageRecord represents one uploaded screenshot and its analysis state.
type ImageRecord struct {
	ID            string      `json:"id"`
	Filename      string      `json:"filename"`
	Path          string      `json:"path"`
	URL           string      `json:"url"`
	MIMEType      string      `json:"mime_type"`
	RemoteFileRef string      `json:"remote_file_ref,omitempty"`
	OCRText       string      `json:"ocr_text"`
	Description   string      `json:"description"`
	Status        ImageStatus `json:"status"`
	ErrorReason   string      `json:"error_reason,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Outcome is the result of pushing one image through upload + analysis.
// Failure is carried as a value, never as an error; outcomes are consumed
// by the library reducer and discarded.
type Outcome struct {
	OK            bool   `json:"ok"`
	ImageID       string `json:"image_id"`
	RemoteFileRef string `json:"remote_file_ref,omitempty"`
	OCRText       string `json:"ocr_text,omitempty"`
	Description   string `json:"description,omitempty"`
	Err           string `json:"error,omitempty"`
}

// SearchResult is one ranked entry in a relevance query response.
type SearchResult struct {
	ImageID   string  `json:"image_id"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// Progress summarizes how far an upload run has come. Percentage is
// derived from the record counts, clamped to [0,100].
type Progress struct {
	Total        int    `json:"total"`
	Completed    int    `json:"completed"`
	CurrentLabel string `json:"current_label"`
	Percentage   int    `json:"percentage"`
}
