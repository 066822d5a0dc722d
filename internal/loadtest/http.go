package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with an optional admin bearer token.
type HTTPClient struct {
	client     *http.Client
	adminToken string
}

func newHTTPClient(timeout time.Duration, adminToken string) *HTTPClient {
	return &HTTPClient{
		client:     &http.Client{Timeout: timeout},
		adminToken: adminToken,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Send performs a request with a JSON body. Admin routes get the bearer token.
func (c *HTTPClient) Send(ctx context.Context, method, url string, body interface{}, admin bool) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if admin && c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// postSubmissions posts score submissions concurrently using a worker pool.
func postSubmissions(ctx context.Context, config *Config, client *HTTPClient, subs []Submission, stats *Stats) error {
	log.Printf("submitting %d scores with %d workers", len(subs), config.Workers)

	url := fmt.Sprintf("%s/v1/apps/%s/leaderboards/%s/scores", config.BaseURL, config.AppID, config.Board)

	var (
		successful int64
		failed     int64
		posted     int64
	)

	lastReport := time.Now()
	reportInterval := 1 * time.Second

	subChan := make(chan Submission, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
					atomic.AddInt64(&posted, 1)
					if postSingleSubmission(ctx, client, url, sub) {
						atomic.AddInt64(&successful, 1)
					} else {
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose && time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						log.Printf("progress: %d/%d posted (success: %d, failed: %d)",
							atomic.LoadInt64(&posted), len(subs),
							atomic.LoadInt64(&successful), atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.SubmissionsPosted = int(atomic.LoadInt64(&posted))
	stats.SubmissionsSuccessful = int(atomic.LoadInt64(&successful))
	stats.SubmissionsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("submission completed: success %d, failed %d",
		stats.SubmissionsSuccessful, stats.SubmissionsFailed)
	return nil
}

func postSingleSubmission(ctx context.Context, client *HTTPClient, url string, sub Submission) bool {
	resp, err := client.Send(ctx, http.MethodPost, url, sub, false)
	if err != nil {
		return false
	}
	_, _ = readResponseBody(resp)
	return resp.StatusCode == http.StatusOK
}
