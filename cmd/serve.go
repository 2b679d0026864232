package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ocrgateway/internal/config"
	"ocrgateway/internal/gateway"
	"ocrgateway/internal/logger"
	"ocrgateway/internal/ocr"
	"ocrgateway/internal/server"
	"ocrgateway/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the OCR gateway HTTP API",
	Long: `Start the HTTP API serving sync OCR, async job submission, status
polling and result aggregation.

Required environment variables:
  API_BEARER_TOKENS - comma-separated bearer tokens accepted by the API
  UPLOAD_BUCKET     - GCS bucket for staged source documents (async path)
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - engine credentials

Optional:
  OUTPUT_BUCKET - GCS bucket for result shards (defaults to UPLOAD_BUCKET)
  OUTPUT_ROOT   - top-level result prefix (default "gcv_vision_ocr")
  OCR_ENGINE    - "vision" (default) or "documentai"
  PORT          - listen port (default 8080)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	port := cfg.Port
	if flagPort, _ := cmd.Flags().GetString("port"); flagPort != "" {
		port = flagPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create OCR engine: %w", err)
	}

	store, err := storage.NewGCSObjectStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	svc := gateway.NewService(engine, store, gateway.Config{
		UploadBucket: cfg.UploadBucket,
		OutputBucket: cfg.OutputBucket,
		OutputRoot:   cfg.OutputRoot,
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: server.New(svc, cfg.BearerTokens).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", port).
			Str("engine", cfg.Engine).
			Str("upload_bucket", cfg.UploadBucket).
			Str("output_bucket", cfg.OutputBucket).
			Msg("OCR gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	log.Info().Msg("OCR gateway stopped")
	return nil
}

// newEngine builds the configured OCR backend.
func newEngine(ctx context.Context, cfg *config.Config) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineDocumentAI:
		return ocr.NewDocumentAIEngine(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation, cfg.DocumentAIProcessorID)
	default:
		return ocr.NewGoogleVisionEngine(ctx)
	}
}
