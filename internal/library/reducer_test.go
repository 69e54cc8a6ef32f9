package library

import (
	"reflect"
	"testing"

	"screenlens/internal/models"
)

func pendingRecords() []models.ImageRecord {
	return []models.ImageRecord{
		{ID: "a", Status: models.StatusProcessing},
		{ID: "b", Status: models.StatusProcessing},
		{ID: "c", Status: models.StatusPending},
	}
}

func TestApplyTransitionsMatchedRecords(t *testing.T) {
	outcomes := []models.Outcome{
		{OK: true, ImageID: "a", RemoteFileRef: "files/1", OCRText: "hello", Description: "login screen"},
		{ImageID: "b", Err: "upload failed: timeout"},
	}

	updated := Apply(pendingRecords(), outcomes)

	if updated[0].Status != models.StatusCompleted {
		t.Errorf("Expected a completed, got %s", updated[0].Status)
	}
	if updated[0].OCRText != "hello" || updated[0].Description != "login screen" {
		t.Errorf("Expected analysis fields set, got %+v", updated[0])
	}
	if updated[1].Status != models.StatusError || updated[1].ErrorReason != "upload failed: timeout" {
		t.Errorf("Expected b errored with reason, got %+v", updated[1])
	}
	if updated[2].Status != models.StatusPending {
		t.Errorf("Expected unmatched record untouched, got %s", updated[2].Status)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	outcomes := []models.Outcome{
		{OK: true, ImageID: "a", OCRText: "text"},
		{ImageID: "b", Err: "failed"},
	}

	once := Apply(pendingRecords(), outcomes)
	twice := Apply(once, outcomes)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Expected replay to be a no-op:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestApplyNeverRegressesTerminalRecords(t *testing.T) {
	records := []models.ImageRecord{
		{ID: "a", Status: models.StatusCompleted, OCRText: "original"},
		{ID: "b", Status: models.StatusError, ErrorReason: "original failure"},
	}
	outcomes := []models.Outcome{
		{ImageID: "a", Err: "late failure"},
		{OK: true, ImageID: "b", OCRText: "late success"},
	}

	updated := Apply(records, outcomes)

	if updated[0].Status != models.StatusCompleted || updated[0].OCRText != "original" {
		t.Errorf("Expected completed record untouched, got %+v", updated[0])
	}
	if updated[1].Status != models.StatusError || updated[1].ErrorReason != "original failure" {
		t.Errorf("Expected errored record untouched, got %+v", updated[1])
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	records := pendingRecords()
	_ = Apply(records, []models.Outcome{{OK: true, ImageID: "a"}})

	if records[0].Status != models.StatusProcessing {
		t.Errorf("Expected input untouched, got %s", records[0].Status)
	}
}

func TestApplyAllowsEmptyAnalysisFields(t *testing.T) {
	// The model returning no text is still a completed analysis.
	updated := Apply(pendingRecords(), []models.Outcome{{OK: true, ImageID: "a"}})

	if updated[0].Status != models.StatusCompleted {
		t.Errorf("Expected completed with empty fields, got %s", updated[0].Status)
	}
}
