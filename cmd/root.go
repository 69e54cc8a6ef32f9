package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screenlens",
		Short: "Screenshot library with AI-powered analysis and search",
		Long: `Screenlens lets you upload a folder of screenshots, analyzes each one
with a vision model (extracting OCR text and a visual description), and
answers natural-language queries by ranking the library by relevance.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}
