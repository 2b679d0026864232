// Package gateway contains the request-routing and result-aggregation core
// of the OCR gateway: deciding between the synchronous and asynchronous
// detection paths, staging large documents into Cloud Storage, and merging
// asynchronous multi-shard results into a stable, ordered page sequence.
//
// The gateway holds no job registry and no cross-request state. Asynchronous
// jobs live entirely in the cloud engine and in Cloud Storage; the caller is
// the sole holder of the operation handle and output prefix returned at
// submission time.
package gateway

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ocrgateway/internal/logger"
	"ocrgateway/internal/ocr"
	"ocrgateway/internal/storage"
)

// Config carries the storage locations the gateway writes to and reads from.
type Config struct {
	// UploadBucket receives staged source documents for async jobs.
	UploadBucket string

	// OutputBucket receives the engine's JSON result shards.
	OutputBucket string

	// OutputRoot is the top-level prefix result shards are grouped under.
	OutputRoot string
}

// Service routes OCR requests between the sync and async paths and
// aggregates asynchronous results.
type Service struct {
	engine ocr.Engine
	store  storage.ObjectStore
	cfg    Config
	log    zerolog.Logger

	// Injection points for tests; production uses the defaults below.
	countPages func([]byte) int
	newJobID   func() string
}

// NewService creates a gateway service over the given engine and store.
func NewService(engine ocr.Engine, store storage.ObjectStore, cfg Config) *Service {
	return &Service{
		engine:     engine,
		store:      store,
		cfg:        cfg,
		log:        logger.WithComponent("gateway"),
		countPages: countPDFPages,
		newJobID:   func() string { return uuid.NewString()[:8] },
	}
}

// Page is one unit of recognized text. Page numbers are 1-based and assigned
// by the gateway, not by the source document.
type Page struct {
	Page   int    `json:"page"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// SyncResult is the response of the synchronous OCR path.
type SyncResult struct {
	Kind  string `json:"kind"`
	Pages []Page `json:"pages"`
}

// Job describes a started asynchronous OCR job. The gateway retains no copy;
// the caller must keep the operation handle and output prefix to poll and
// collect results later.
type Job struct {
	Operation       string `json:"operation"`
	GCSInput        string `json:"gcsInput"`
	GCSOutputPrefix string `json:"gcsOutputPrefix"`
	Note            string `json:"note"`
}

// AggregatedResult is the merged output of all result shards under a prefix.
// FileCount is computed from an independent second listing and may disagree
// with the number of shards that contributed pages.
type AggregatedResult struct {
	Pages     []Page `json:"pages"`
	FileCount int    `json:"fileCount"`
}
