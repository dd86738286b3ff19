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

func TestGenerateQuestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "a summary", payload["summary"])

		json.NewEncoder(w).Encode(map[string][]string{
			"questions": {"What is X?", "Why does Y matter?"},
		})
	}))
	defer server.Close()

	q := NewQuestionClient(server.URL, 5*time.Second)

	questions, err := q.Generate(context.Background(), "a summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"What is X?", "Why does Y matter?"}, questions)
}

func TestGenerateQuestionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	q := NewQuestionClient(server.URL, 5*time.Second)

	_, err := q.Generate(context.Background(), "a summary")
	assert.Error(t, err)
}

func TestGenerateQuestionsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"questions":[]}`))
	}))
	defer server.Close()

	q := NewQuestionClient(server.URL, 5*time.Second)

	questions, err := q.Generate(context.Background(), "a summary")
	require.NoError(t, err)
	assert.Empty(t, questions)
}
