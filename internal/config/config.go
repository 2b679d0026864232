package config

import (
	"fmt"
	"os"
	"strings"

	"ocrgateway/internal/logger"
)

// Engine backend identifiers accepted in OCR_ENGINE.
const (
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

type Config struct {
	// HTTP Server Configuration
	Port string

	// Bearer tokens accepted by the API, parsed from a comma-separated list.
	BearerTokens []string

	// Google Cloud Storage Configuration
	UploadBucket string
	OutputBucket string
	OutputRoot   string

	// OCR Engine Configuration
	Engine                string
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Port:                  getEnv("PORT", "8080"),
		BearerTokens:          parseTokens(getEnv("API_BEARER_TOKENS", "")),
		UploadBucket:          getEnv("UPLOAD_BUCKET", ""),
		OutputBucket:          getEnv("OUTPUT_BUCKET", ""),
		OutputRoot:            getEnv("OUTPUT_ROOT", "gcv_vision_ocr"),
		Engine:                getEnv("OCR_ENGINE", EngineVision),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	// OUTPUT_BUCKET falls back to UPLOAD_BUCKET so single-bucket deployments
	// only need to set one variable.
	if config.OutputBucket == "" {
		config.OutputBucket = config.UploadBucket
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Engine {
	case EngineVision:
	case EngineDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the documentai engine")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai engine")
		}
	default:
		return fmt.Errorf("unknown OCR_ENGINE %q (want %q or %q)", c.Engine, EngineVision, EngineDocumentAI)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func parseTokens(raw string) []string {
	var tokens []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
