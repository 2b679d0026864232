package gateway

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ocrgateway/internal/ocr"
	"ocrgateway/internal/storage"
)

// DefaultBatchSize is the number of pages per result shard when the caller
// does not choose one. Larger shards mean fewer result downloads; smaller
// shards mean smaller files.
const DefaultBatchSize = 20

const defaultFilename = "document.pdf"

// asyncMimeTypes are the content types the engine accepts for GCS-staged jobs.
var asyncMimeTypes = map[string]string{
	"application/pdf": "application/pdf",
	"image/tiff":      "image/tiff",
	"image/tif":       "image/tiff",
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename replaces every character outside [A-Za-z0-9._-] with an
// underscore so caller-provided names cannot inject path separators into the
// storage destination. Already-safe names pass through unchanged.
func sanitizeFilename(name string) string {
	if name == "" {
		name = defaultFilename
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// StartAsync stages a PDF or TIFF into the upload bucket and starts an
// asynchronous detection job writing result shards under a fresh output
// prefix. The returned Job is the caller's only record of the submission.
//
// Each call generates a new job identifier, so identical inputs never
// collide on storage destinations. When hintPrefix is set, result shards
// are grouped under it instead of the per-job default, letting callers
// collect related jobs under one folder.
func (s *Service) StartAsync(ctx context.Context, data []byte, contentType, filename string, batchSize int, hintPrefix string) (*Job, error) {
	if s.cfg.UploadBucket == "" || s.cfg.OutputBucket == "" {
		return nil, ErrBucketsNotConfigured
	}

	mimeType, ok := asyncMimeTypes[normalizeMimeType(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: only application/pdf or image/tiff allowed for async", ErrUnsupportedMedia)
	}

	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	if batchSize < 1 || batchSize > 100 {
		return nil, fmt.Errorf("%w: got %d", ErrBatchSizeOutOfRange, batchSize)
	}

	jobID := s.newJobID()
	safeName := sanitizeFilename(filename)
	srcPath := fmt.Sprintf("uploads/%s/%s", jobID, safeName)

	if err := s.store.Upload(ctx, s.cfg.UploadBucket, srcPath, data); err != nil {
		return nil, fmt.Errorf("failed to stage source document: %w", err)
	}
	gcsInput := storage.URI(s.cfg.UploadBucket, srcPath)

	sub := fmt.Sprintf("jobs/%s", jobID)
	if hintPrefix != "" {
		sub = strings.Trim(hintPrefix, "/")
	}
	outputPrefix := storage.URI(s.cfg.OutputBucket, fmt.Sprintf("%s/%s/", s.cfg.OutputRoot, sub))

	operation, err := s.engine.StartAsync(ctx, ocr.AsyncJobRequest{
		InputURI:        gcsInput,
		OutputPrefixURI: outputPrefix,
		MimeType:        mimeType,
		BatchSize:       int32(batchSize),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", jobID).
		Str("operation", operation).
		Str("input", gcsInput).
		Str("output_prefix", outputPrefix).
		Int("batch_size", batchSize).
		Msg("Async OCR job started")

	return &Job{
		Operation:       operation,
		GCSInput:        gcsInput,
		GCSOutputPrefix: outputPrefix,
		Note:            "Poll /ocr/async/status?operation=...; when done, GET /ocr/async/result?prefix=gs://bucket/path/",
	}, nil
}

// PollStatus performs a single poll of the engine's long-running operation.
// Re-polling cadence is the caller's responsibility.
func (s *Service) PollStatus(ctx context.Context, operation string) (*ocr.OperationStatus, error) {
	return s.engine.OperationStatus(ctx, operation)
}
