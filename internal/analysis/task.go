package analysis

import (
	"context"
	"fmt"

	"screenlens/internal/models"
	"screenlens/internal/retry"
)

// Analysis is what the remote model extracts from one screenshot.
type Analysis struct {
	OCRText     string
	Description string
}

// Remote is the slice of the model client the per-image pipeline needs.
type Remote interface {
	UploadFile(ctx context.Context, path, mimeType string) (string, error)
	Analyze(ctx context.Context, fileRef, mimeType string) (Analysis, error)
}

// Task runs the upload -> analyze pipeline for single images. Both remote
// calls go through the retry executor; failure surfaces as an Outcome
// value so one image's failure can never abort a sibling's processing.
type Task struct {
	Remote Remote
	Retry  retry.Policy
}

// NewTask creates a task with the default retry policy.
func NewTask(remote Remote) *Task {
	return &Task{Remote: remote, Retry: retry.DefaultPolicy()}
}

// Process pushes one image through upload and analysis and reports the
// outcome. It never returns an error.
func (t *Task) Process(ctx context.Context, img models.ImageRecord) models.Outcome {
	fileRef, err := retry.Do(ctx, t.Retry, "upload", func(ctx context.Context) (string, error) {
		return t.Remote.UploadFile(ctx, img.Path, img.MIMEType)
	})
	if err != nil {
		return models.Outcome{
			ImageID: img.ID,
			Err:     fmt.Sprintf("upload failed: %v", err),
		}
	}

	result, err := retry.Do(ctx, t.Retry, "analyze", func(ctx context.Context) (Analysis, error) {
		return t.Remote.Analyze(ctx, fileRef, img.MIMEType)
	})
	if err != nil {
		return models.Outcome{
			ImageID:       img.ID,
			RemoteFileRef: fileRef,
			Err:           fmt.Sprintf("analysis failed: %v", err),
		}
	}

	return models.Outcome{
		OK:            true,
		ImageID:       img.ID,
		RemoteFileRef: fileRef,
		OCRText:       result.OCRText,
		Description:   result.Description,
	}
}
