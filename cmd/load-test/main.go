package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/gamekeep/gamekeep/internal/loadtest"
)

// Default configuration constants.
const (
	defaultNumPlayers  = 10000
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		appID       = flag.String("app", "loadtest", "Application id to run the test under")
		board       = flag.String("board", "lt_arena", "Leaderboard key to submit scores to")
		counter     = flag.String("counter", "lt_submissions", "Counter key incremented during the run")
		numPlayers  = flag.Int("players", defaultNumPlayers, "Number of distinct players to generate")
		topN        = flag.Int("top", defaultTopN, "Number of top entries to fetch and verify")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		adminSecret = flag.String("admin-secret", "", "Secret to mint an admin token for definition seeding")
		outputFile  = flag.String("output", "", "Output file for generated submissions (default: submissions_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for test output (default: loadtest_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	if err := loadtest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:     *baseURL,
		AppID:       *appID,
		Board:       *board,
		Counter:     *counter,
		NumPlayers:  *numPlayers,
		TopN:        *topN,
		Workers:     *workers,
		Timeout:     *timeout,
		AdminSecret: *adminSecret,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load test failed: " + err.Error() + "\n")
		return
	}
}
