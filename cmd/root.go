package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ocrgateway/internal/logger"
)

var version = "1.1.0"

var rootCmd = &cobra.Command{
	Use:   "ocrgateway",
	Short: "OCR gateway over Google Cloud Vision and Cloud Storage",
	Long: `ocrgateway is a thin HTTP facade over Google Cloud Vision OCR and
Google Cloud Storage. It routes uploads between synchronous text detection
(images, small PDFs) and asynchronous GCS-staged jobs (large PDFs, TIFFs),
and aggregates asynchronous result shards into an ordered page sequence.

Run "ocrgateway serve" to start the HTTP API, or "ocrgateway detect" to
OCR a local file from the command line.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
