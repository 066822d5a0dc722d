package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gamekeep/gamekeep/internal/auth"
	"github.com/gamekeep/gamekeep/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

const adminTokenTTL = time.Hour

// Run executes the complete load test: health check, definition seeding,
// concurrent submissions, ranked read, counter check, verification.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting gamekeep load test",
		logger.String("baseURL", config.BaseURL),
		logger.String("app", config.AppID),
		logger.String("board", config.Board),
		logger.Int("players", config.NumPlayers),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN))

	client, err := newRunClient(config)
	if err != nil {
		return err
	}

	if err := checkServiceHealth(ctx, config, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	if err := seedDefinitions(ctx, config, client); err != nil {
		return fmt.Errorf("definition seeding failed: %w", err)
	}

	subs := generateSubmissions(ctx, config, stats)

	if err := postSubmissions(ctx, config, client, subs, stats); err != nil {
		return fmt.Errorf("score submission failed: %w", err)
	}

	if err := bumpCounter(ctx, config, client, int64(stats.SubmissionsSuccessful), stats); err != nil {
		return fmt.Errorf("counter increment failed: %w", err)
	}

	top, err := getTopEntries(ctx, config, client, stats)
	if err != nil {
		return fmt.Errorf("ranked read failed: %w", err)
	}

	if err := verifyResults(ctx, config, subs, top, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	if err := saveSubmissionsToFile(ctx, config, subs); err != nil {
		logger.Get().Warn(ctx, "failed to save submissions to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "load test completed successfully")
	return nil
}

// newRunClient builds the HTTP client, minting an admin token when the
// target's definition routes are guarded.
func newRunClient(config *Config) (*HTTPClient, error) {
	token := ""
	if config.AdminSecret != "" {
		minted, err := auth.NewGuard(config.AdminSecret).Mint("load-test", []string{"admin"}, adminTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("mint admin token: %w", err)
		}
		token = minted
	}
	return newHTTPClient(config.Timeout, token), nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_, _ = readResponseBody(resp)

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// seedDefinitions creates the leaderboard and counter the run hammers.
func seedDefinitions(ctx context.Context, config *Config, client *HTTPClient) error {
	logger.Get().Info(ctx, "seeding definitions",
		logger.String("board", config.Board), logger.String("counter", config.Counter))

	boardURL := fmt.Sprintf("%s/v1/admin/apps/%s/leaderboards/%s", config.BaseURL, config.AppID, config.Board)
	boardDef := map[string]interface{}{
		"sortDirection":  "descending",
		"updateStrategy": "highest_wins",
		"resetPolicy":    map[string]string{"kind": "permanent"},
	}
	if err := putDefinition(ctx, client, boardURL, boardDef); err != nil {
		return fmt.Errorf("seed leaderboard: %w", err)
	}

	counterURL := fmt.Sprintf("%s/v1/admin/apps/%s/counters/%s", config.BaseURL, config.AppID, config.Counter)
	counterDef := map[string]interface{}{
		"description": "load test submissions",
		"resetPolicy": map[string]string{"kind": "permanent"},
	}
	if err := putDefinition(ctx, client, counterURL, counterDef); err != nil {
		return fmt.Errorf("seed counter: %w", err)
	}
	return nil
}

func putDefinition(ctx context.Context, client *HTTPClient, url string, def map[string]interface{}) error {
	resp, err := client.Send(ctx, http.MethodPut, url, def, true)
	if err != nil {
		return err
	}
	body, _ := readResponseBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// bumpCounter adds the successful submission count to the run counter and
// records the value the service reports back.
func bumpCounter(ctx context.Context, config *Config, client *HTTPClient, delta int64, stats *Stats) error {
	if delta <= 0 {
		return nil
	}

	url := fmt.Sprintf("%s/v1/apps/%s/counters/%s/increment", config.BaseURL, config.AppID, config.Counter)
	resp, err := client.Send(ctx, http.MethodPost, url, map[string]int64{"delta": delta}, false)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var decoded struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	stats.CounterValue = decoded.Value

	logger.Get().Info(ctx, "counter incremented",
		logger.Int64("delta", delta), logger.Int64("value", decoded.Value))
	return nil
}

// getTopEntries fetches the top N page of the ranked read.
func getTopEntries(ctx context.Context, config *Config, client *HTTPClient, stats *Stats) ([]Entry, error) {
	logger.Get().Info(ctx, "fetching top entries", logger.Int("topN", config.TopN))

	url := fmt.Sprintf("%s/v1/apps/%s/leaderboards/%s/top?start=0&count=%d",
		config.BaseURL, config.AppID, config.Board, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var decoded struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.TopEntries = len(decoded.Entries)
	logger.Get().Info(ctx, "retrieved top entries", logger.Int("count", len(decoded.Entries)))
	return decoded.Entries, nil
}

// saveSubmissionsToFile saves the generated submissions to a JSON file.
func saveSubmissionsToFile(ctx context.Context, config *Config, subs []Submission) error {
	if len(subs) == 0 {
		return fmt.Errorf("no submissions to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "submissions_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal submissions: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "submissions saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, subsPerSecond float64

	if stats.SubmissionsPosted > 0 {
		successRate = float64(stats.SubmissionsSuccessful) / float64(stats.SubmissionsPosted) * 100
	}
	if stats.Duration > 0 {
		subsPerSecond = float64(stats.SubmissionsPosted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("submissionsGenerated", stats.SubmissionsGenerated),
		logger.Int("submissionsPosted", stats.SubmissionsPosted),
		logger.Int("submissionsSuccessful", stats.SubmissionsSuccessful),
		logger.Int("submissionsFailed", stats.SubmissionsFailed),
		logger.Int("topEntries", stats.TopEntries),
		logger.Int64("counterValue", stats.CounterValue),
		logger.String("duration", stats.Duration.String()),
		logger.Any("successRate", successRate),
		logger.Any("submissionsPerSecond", subsPerSecond))
}
