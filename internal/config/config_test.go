package config

import (
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BEARER_TOKENS", "")
	t.Setenv("UPLOAD_BUCKET", "my-uploads")
	t.Setenv("OUTPUT_BUCKET", "")
	t.Setenv("OUTPUT_ROOT", "")
	t.Setenv("OCR_ENGINE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.OutputRoot != "gcv_vision_ocr" {
		t.Errorf("OutputRoot = %q, want gcv_vision_ocr", cfg.OutputRoot)
	}
	if cfg.Engine != EngineVision {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineVision)
	}
	// Output bucket falls back to the upload bucket.
	if cfg.OutputBucket != "my-uploads" {
		t.Errorf("OutputBucket = %q, want my-uploads", cfg.OutputBucket)
	}
}

func TestLoad_TokenParsing(t *testing.T) {
	t.Setenv("API_BEARER_TOKENS", " token1, token2 ,,token3")
	t.Setenv("OCR_ENGINE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"token1", "token2", "token3"}
	if !reflect.DeepEqual(cfg.BearerTokens, want) {
		t.Errorf("BearerTokens = %v, want %v", cfg.BearerTokens, want)
	}
}

func TestLoad_DocumentAIRequiresProcessor(t *testing.T) {
	t.Setenv("OCR_ENGINE", "documentai")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without GOOGLE_CLOUD_PROJECT for documentai")
	}

	t.Setenv("GOOGLE_CLOUD_PROJECT", "proj")
	if _, err := Load(); err == nil {
		t.Error("Load() should fail without DOCUMENT_AI_PROCESSOR_ID for documentai")
	}

	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "proc-1")
	if _, err := Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoad_UnknownEngine(t *testing.T) {
	t.Setenv("OCR_ENGINE", "tesseract")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject unknown OCR_ENGINE values")
	}
}
