package export

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"

	"screenlens/internal/models"
)

// CorpusRow is the flat parquet shape of one analyzed image record.
type CorpusRow struct {
	ID          string `parquet:"id"`
	Filename    string `parquet:"filename"`
	MIMEType    string `parquet:"mime_type"`
	OCRText     string `parquet:"ocr_text"`
	Description string `parquet:"description"`
	Status      string `parquet:"status"`
	ErrorReason string `parquet:"error_reason"`
	CreatedAt   int64  `parquet:"created_at"`
}

// WriteParquet writes the corpus to a parquet file at path, for offline
// inspection of what the model extracted.
func WriteParquet(path string, records []models.ImageRecord) error {
	rows := make([]CorpusRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, CorpusRow{
			ID:          r.ID,
			Filename:    r.Filename,
			MIMEType:    r.MIMEType,
			OCRText:     r.OCRText,
			Description: r.Description,
			Status:      string(r.Status),
			ErrorReason: r.ErrorReason,
			CreatedAt:   r.CreatedAt.UnixMilli(),
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[CorpusRow](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	slog.Info("Exported corpus", "path", path, "rows", len(rows))
	return nil
}
