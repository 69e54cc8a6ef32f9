package library

import (
	"screenlens/internal/models"
)

// Apply merges a list of outcomes into a record collection and returns
// the updated collection. Pure: inputs are not mutated. Records whose id
// matches an outcome transition to completed or error; records already in
// a terminal state are left alone, which makes replaying the same
// outcomes a no-op. Records with no matching outcome pass through
// untouched.
func Apply(records []models.ImageRecord, outcomes []models.Outcome) []models.ImageRecord {
	if len(outcomes) == 0 {
		return append([]models.ImageRecord(nil), records...)
	}

	byID := make(map[string]models.Outcome, len(outcomes))
	for _, o := range outcomes {
		byID[o.ImageID] = o
	}

	out := make([]models.ImageRecord, len(records))
	copy(out, records)

	for i := range out {
		o, ok := byID[out[i].ID]
		if !ok || out[i].Status.Terminal() {
			continue
		}
		if o.OK {
			out[i].Status = models.StatusCompleted
			out[i].RemoteFileRef = o.RemoteFileRef
			out[i].OCRText = o.OCRText
			out[i].Description = o.Description
			out[i].ErrorReason = ""
		} else {
			out[i].Status = models.StatusError
			out[i].ErrorReason = o.Err
			if o.RemoteFileRef != "" {
				out[i].RemoteFileRef = o.RemoteFileRef
			}
		}
	}

	return out
}
