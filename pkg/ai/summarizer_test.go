package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/facebook/bart-large-cnn", r.URL.Path)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "a long transcript", payload["inputs"])

		json.NewEncoder(w).Encode([]map[string]string{
			{"summary_text": "  a short summary  "},
		})
	}))
	defer server.Close()

	s := NewSummarizer("hf-token", "facebook/bart-large-cnn", server.URL, 5*time.Second)

	summary, err := s.Summarize(context.Background(), "a long transcript")
	require.NoError(t, err)
	assert.Equal(t, "a short summary", summary)
}

func TestSummarizeEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	s := NewSummarizer("hf-token", "model", server.URL, 5*time.Second)

	_, err := s.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmptySummary)
}

func TestSummarizeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer server.Close()

	s := NewSummarizer("hf-token", "model", server.URL, 5*time.Second)

	_, err := s.Summarize(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}
