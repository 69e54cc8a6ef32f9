package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"screenlens/internal/export"
	"screenlens/internal/models"
)

func newExportCmd() *cobra.Command {
	var serverURL string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the analyzed corpus from a running server to parquet",
		Long: `Fetches all image records from a running Screenlens server and writes
them to a parquet file for offline inspection of the extracted OCR text
and descriptions.`,
		Example: `  screenlens export --output corpus.parquet
  screenlens export --server http://localhost:3000 --output corpus.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 30 * time.Second}

			resp, err := client.Get(serverURL + "/api/images")
			if err != nil {
				return fmt.Errorf("failed to fetch corpus from %s: %w", serverURL, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server returned status %d", resp.StatusCode)
			}

			var records []models.ImageRecord
			if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
				return fmt.Errorf("failed to decode corpus: %w", err)
			}

			if err := export.WriteParquet(output, records); err != nil {
				return err
			}

			fmt.Printf("Exported %d records to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8888", "Base URL of the running server")
	cmd.Flags().StringVarP(&output, "output", "o", "corpus.parquet", "Output parquet file path")

	return cmd
}
