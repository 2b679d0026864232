package main

import (
	stdlog "log"

	"github.com/joho/godotenv"

	"ocrgateway/cmd"
	"ocrgateway/internal/config"
	"ocrgateway/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Printf("Warning: Could not load .env file: %v", err)
	}

	// Initialize logging before anything else; configuration problems are
	// reported by the commands that need the config.
	logCfg := logger.DefaultConfig()
	if cfg, err := config.Load(); err == nil {
		logCfg = cfg.GetLoggerConfig()
	}
	if err := logger.Setup(logCfg); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
