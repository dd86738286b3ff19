package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QuestionClient calls the question generation service.
type QuestionClient struct {
	url        string
	httpClient *http.Client
}

// NewQuestionClient creates a client for the question generation endpoint.
func NewQuestionClient(url string, timeout time.Duration) *QuestionClient {
	return &QuestionClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate produces study questions from a summary.
func (q *QuestionClient) Generate(ctx context.Context, summary string) ([]string, error) {
	payload, err := json.Marshal(map[string]string{"summary": summary})
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "BarterSkills-Server-Go/1.0.0")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("questions service error: status=%d, body=%s", resp.StatusCode, truncate(string(bodyBytes), 512))
	}

	var result struct {
		Questions []string `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode questions response: %w", err)
	}

	return result.Questions, nil
}
