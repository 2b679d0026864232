// Package ocr provides text detection through Google Cloud engines.
//
// Two backends implement the Engine interface: Google Cloud Vision
// (the default, covering both synchronous detection and asynchronous
// GCS-staged jobs) and Google Document AI (synchronous detection only,
// selected via OCR_ENGINE=documentai).
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Cloud Vision API Limitations:
//   - Maximum 5 pages per document for synchronous processing
//   - Larger PDFs and TIFFs must go through the asynchronous GCS path
package ocr

import (
	"context"
	"time"
)

// PageText is the recognized text of a single page, in request order.
type PageText struct {
	Text string
}

// AsyncJobRequest describes an asynchronous detection job over GCS.
type AsyncJobRequest struct {
	// InputURI is the gs:// address of the uploaded source document.
	InputURI string

	// OutputPrefixURI is the gs:// folder prefix the engine writes JSON
	// result shards under. Must end with "/".
	OutputPrefixURI string

	// MimeType of the source document (application/pdf or image/tiff).
	MimeType string

	// BatchSize is the number of pages per result shard, 1..100.
	BatchSize int32
}

// OperationStatus is an explicit snapshot of an engine long-running
// operation, converted from the provider's operation descriptor at the
// boundary so callers never depend on an untyped shape.
type OperationStatus struct {
	Name       string          `json:"name"`
	Done       bool            `json:"done"`
	State      string          `json:"state,omitempty"`
	CreateTime *time.Time      `json:"createTime,omitempty"`
	UpdateTime *time.Time      `json:"updateTime,omitempty"`
	Error      *OperationError `json:"error,omitempty"`
}

// OperationError carries the failure detail of a finished operation.
type OperationError struct {
	Message string `json:"message"`
}

// Engine defines the text-detection operations used by the gateway.
type Engine interface {
	// DetectImage runs synchronous text detection on a single image and
	// returns the recognized full text, possibly empty.
	DetectImage(ctx context.Context, content []byte, mimeType string) (string, error)

	// DetectDocument runs synchronous text detection on an inline document
	// for pages 1..pages and returns one PageText per page in request
	// order. The first page-level engine error aborts the whole call.
	DetectDocument(ctx context.Context, content []byte, mimeType string, pages int) ([]PageText, error)

	// StartAsync starts an asynchronous detection job reading from GCS and
	// writing result shards to GCS. It returns the operation handle used
	// for polling; the job itself outlives the request.
	StartAsync(ctx context.Context, req AsyncJobRequest) (string, error)

	// OperationStatus performs a single poll of a long-running operation.
	OperationStatus(ctx context.Context, name string) (*OperationStatus, error)
}
