package gateway

import (
	"errors"
	"fmt"
)

// Caller-input and configuration errors. The HTTP layer maps these onto
// status codes; the gateway never retries any of them.
var (
	// ErrEmptyPayload is returned when the uploaded file has no content.
	ErrEmptyPayload = errors.New("empty file")

	// ErrUnsupportedMedia is returned for content types the gateway cannot route.
	ErrUnsupportedMedia = errors.New("unsupported content type")

	// ErrTooManyPages is returned when a PDF exceeds the synchronous page
	// policy. The sync path never upgrades to async on its own; the caller
	// must resubmit through the async endpoint.
	ErrTooManyPages = errors.New("too many pages for synchronous OCR")

	// ErrBatchSizeOutOfRange is returned when the requested pages-per-shard
	// value falls outside 1..100.
	ErrBatchSizeOutOfRange = errors.New("batchSize must be between 1 and 100")

	// ErrBucketsNotConfigured indicates a deployment misconfiguration: the
	// async path needs both an upload and an output bucket.
	ErrBucketsNotConfigured = errors.New("UPLOAD_BUCKET and OUTPUT_BUCKET must be configured")
)

// TooManyPagesError carries the inspected page count so the rejection can
// name it alongside the async alternative.
type TooManyPagesError struct {
	Pages int
}

func (e *TooManyPagesError) Error() string {
	return fmt.Sprintf("PDF has %d pages; use POST /ocr/async/start for large PDFs", e.Pages)
}

func (e *TooManyPagesError) Is(target error) bool {
	return target == ErrTooManyPages
}
