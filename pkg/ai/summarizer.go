package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptySummary is returned when the model replied without usable text.
var ErrEmptySummary = errors.New("summarization produced no text")

// Summarizer calls a hosted inference API to summarize transcripts.
type Summarizer struct {
	token      string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewSummarizer creates a summarizer against the given inference endpoint. The
// timeout bounds each summarization call.
func NewSummarizer(token, model, baseURL string, timeout time.Duration) *Summarizer {
	return &Summarizer{
		token:   token,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Summarize returns a summary of the given text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", fmt.Errorf("failed to encode inference request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "BarterSkills-Server-Go/1.0.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("inference error: status=%d, body=%s", resp.StatusCode, truncate(string(bodyBytes), 512))
	}

	var results []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("failed to decode inference response: %w", err)
	}

	if len(results) == 0 || strings.TrimSpace(results[0].SummaryText) == "" {
		return "", ErrEmptySummary
	}

	return strings.TrimSpace(results[0].SummaryText), nil
}
