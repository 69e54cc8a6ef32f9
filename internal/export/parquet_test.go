package export

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"screenlens/internal/models"
)

func TestWriteParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.parquet")
	records := []models.ImageRecord{
		{
			ID:          "a",
			Filename:    "login.png",
			MIMEType:    "image/png",
			OCRText:     "Sign in",
			Description: "A login page",
			Status:      models.StatusCompleted,
			CreatedAt:   time.Now(),
		},
		{
			ID:          "b",
			Filename:    "broken.png",
			Status:      models.StatusError,
			ErrorReason: "upload failed: timeout",
		},
	}

	if err := WriteParquet(path, records); err != nil {
		t.Fatalf("Expected write to succeed, got %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		t.Fatal(err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		t.Fatalf("Expected valid parquet file, got %v", err)
	}

	reader := parquet.NewGenericReader[CorpusRow](pf)
	defer reader.Close()

	rows := make([]CorpusRow, 4)
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		t.Fatalf("Expected rows back, got %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected 2 rows, got %d", n)
	}

	if rows[0].ID != "a" || rows[0].OCRText != "Sign in" || rows[0].Status != "completed" {
		t.Errorf("Row 0 mismatch: %+v", rows[0])
	}
	if rows[1].ID != "b" || rows[1].ErrorReason != "upload failed: timeout" {
		t.Errorf("Row 1 mismatch: %+v", rows[1])
	}
}

func TestWriteParquetEmptyCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := WriteParquet(path, nil); err != nil {
		t.Fatalf("Expected empty corpus to export, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected file to exist, got %v", err)
	}
}
