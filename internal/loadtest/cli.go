package loadtest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gamekeep/gamekeep/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "loadtest_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the load-test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Gamekeep Load Test Tool
=======================

A concurrent tool for exercising score submission, ranked reads, and
counters against a running gamekeep instance.

Usage:
  go run cmd/load-test/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -app string
        Application id to run the test under (default "loadtest")
  -board string
        Leaderboard key to submit scores to (default "lt_arena")
  -counter string
        Counter key incremented during the run (default "lt_submissions")
  -players int
        Number of distinct players to generate (default 10000)
  -top int
        Number of top entries to fetch and verify (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -admin-secret string
        Secret to mint an admin token for definition seeding
  -output string
        Output file for generated submissions (default: submissions_TIMESTAMP.json)
  -log string
        Log file for test output (default: loadtest_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings against a local instance
  go run cmd/load-test/main.go

  # Heavier run with a guarded admin surface
  go run cmd/load-test/main.go -players 50000 -workers 16 -admin-secret hunter2
`)
}
