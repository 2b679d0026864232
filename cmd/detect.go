package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ocrgateway/internal/config"
	"ocrgateway/internal/gateway"
	"ocrgateway/internal/logger"
)

var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Run synchronous OCR on a local image or PDF",
	Long: `Process a local file through the same synchronous routing the HTTP
API uses: images go through single-image text detection, PDFs up to 5 pages
through multi-page detection. Larger PDFs are rejected with a pointer to the
async endpoint.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # OCR an image to stdout
  ocrgateway detect receipt.png

  # OCR a small PDF, writing JSON to a file
  ocrgateway detect invoice.pdf -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	detectCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runDetect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("detect")

	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	filePath := args[0]

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		return fmt.Errorf("cannot determine content type of %s", filePath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create OCR engine: %w", err)
	}

	// The sync path never touches storage, so no object store is wired.
	svc := gateway.NewService(engine, nil, gateway.Config{})

	log.Info().
		Str("file", filePath).
		Str("content_type", contentType).
		Int("size", len(data)).
		Msg("Starting OCR")

	result, err := svc.SubmitOCR(ctx, data, contentType, gateway.ModeAuto)
	if err != nil {
		return fmt.Errorf("OCR failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("output_file", outputPath).Int("pages", len(result.Pages)).Msg("OCR results written")
		return nil
	}

	fmt.Println(string(out))
	return nil
}
