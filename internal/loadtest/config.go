package loadtest

import "time"

// Config holds configuration for the load test.
type Config struct {
	BaseURL     string        // Base URL of the service
	AppID       string        // Application id the test runs under
	Board       string        // Leaderboard key to hammer
	Counter     string        // Counter key incremented alongside
	NumPlayers  int           // Number of distinct players to generate
	TopN        int           // Number of top entries to fetch
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	AdminSecret string        // Secret to mint an admin token; empty when the guard is off
	OutputFile  string        // Output file for generated submissions
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// Submission is one generated score post.
type Submission struct {
	PlayerID string `json:"playerId"`
	Value    int64  `json:"value"`
}

// Entry mirrors the ranked-read response shape.
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Value    int64  `json:"value"`
}

// Stats holds test statistics.
type Stats struct {
	SubmissionsGenerated  int
	SubmissionsPosted     int
	SubmissionsSuccessful int
	SubmissionsFailed     int
	TopEntries            int
	CounterValue          int64
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
