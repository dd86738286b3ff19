package enrichment

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterskills/barterskills-server-go/internal/features/video"
	"github.com/barterskills/barterskills-server-go/pkg/types"
)

type fakeDownloader struct {
	err   error
	calls int
}

func (f *fakeDownloader) Download(ctx context.Context, assetURL, destPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("media"), 0o644)
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath, outputDir string) (string, error) {
	return f.transcript, f.err
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.summary, f.err
}

type fakeQuestionGenerator struct {
	questions []string
	err       error
	calls     int
}

func (f *fakeQuestionGenerator) Generate(ctx context.Context, summary string) ([]string, error) {
	f.calls++
	return f.questions, f.err
}

type fakeVideoStore struct {
	video           video.Video
	getErr          error
	savedTranscript string
	savedSummary    string
	savedQuestions  []string
	saveCalls       int
}

func (f *fakeVideoStore) Get(videoID uuid.UUID) (video.Video, error) {
	return f.video, f.getErr
}

func (f *fakeVideoStore) SaveArtifacts(videoID uuid.UUID, transcript, summary string, questions []string) error {
	f.saveCalls++
	f.savedTranscript = transcript
	f.savedSummary = summary
	f.savedQuestions = questions
	return nil
}

func newTestService(t *testing.T, store VideoStore, downloader Downloader, transcriber Transcriber, summarizer Summarizer, questions QuestionGenerator) *Service {
	t.Helper()
	return &Service{
		store:       store,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		downloader:  downloader,
		transcriber: transcriber,
		summarizer:  summarizer,
		questions:   questions,
		scratchDir:  t.TempDir(),
	}
}

func testVideo() video.Video {
	return video.Video{
		BaseModel: types.BaseModel{ID: uuid.New()},
		VideoURL:  "https://cdn/media.mp4",
	}
}

func TestEnrich(t *testing.T) {
	store := &fakeVideoStore{video: testVideo()}
	s := newTestService(t, store,
		&fakeDownloader{},
		&fakeTranscriber{transcript: "full transcript"},
		&fakeSummarizer{summary: "a summary"},
		&fakeQuestionGenerator{questions: []string{"What is X?"}},
	)

	result, err := s.Enrich(context.Background(), store.video.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, "full transcript", store.savedTranscript)
	assert.Equal(t, "a summary", store.savedSummary)
	assert.Equal(t, []string{"What is X?"}, store.savedQuestions)
}

func TestEnrichTranscriptionFailure(t *testing.T) {
	store := &fakeVideoStore{video: testVideo()}
	summarizer := &fakeSummarizer{summary: "should not run"}
	s := newTestService(t, store,
		&fakeDownloader{},
		&fakeTranscriber{err: errors.New("whisper crashed")},
		summarizer,
		&fakeQuestionGenerator{},
	)

	_, err := s.Enrich(context.Background(), store.video.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription failed")

	// A fatal stage persists nothing and skips the later stages.
	assert.Zero(t, store.saveCalls)
	assert.Zero(t, summarizer.calls)

	// The scratch workspace is removed even on failure.
	entries, readErr := os.ReadDir(s.scratchDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestEnrichDownloadFailure(t *testing.T) {
	store := &fakeVideoStore{video: testVideo()}
	s := newTestService(t, store,
		&fakeDownloader{err: errors.New("404")},
		&fakeTranscriber{transcript: "unused"},
		&fakeSummarizer{},
		&fakeQuestionGenerator{},
	)

	_, err := s.Enrich(context.Background(), store.video.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download media")
	assert.Zero(t, store.saveCalls)
}

func TestEnrichDegradedStages(t *testing.T) {
	store := &fakeVideoStore{video: testVideo()}
	questions := &fakeQuestionGenerator{questions: []string{"unused"}}
	s := newTestService(t, store,
		&fakeDownloader{},
		&fakeTranscriber{transcript: "full transcript"},
		&fakeSummarizer{err: errors.New("model unavailable")},
		questions,
	)

	_, err := s.Enrich(context.Background(), store.video.ID)
	require.NoError(t, err)

	// A failed summary still persists the transcript with the placeholder
	// and an empty question list; the generator never runs.
	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, "full transcript", store.savedTranscript)
	assert.Equal(t, summaryFailedText, store.savedSummary)
	assert.Empty(t, store.savedQuestions)
	assert.Zero(t, questions.calls)
}

func TestSummarizeStage(t *testing.T) {
	t.Run("returns model output", func(t *testing.T) {
		s := newTestService(t, nil, nil, nil, &fakeSummarizer{summary: "a fine summary"}, nil)
		got := s.summarize(context.Background(), uuid.New(), "transcript")
		assert.Equal(t, "a fine summary", got)
	})

	t.Run("degrades on error", func(t *testing.T) {
		s := newTestService(t, nil, nil, nil, &fakeSummarizer{err: errors.New("model unavailable")}, nil)
		got := s.summarize(context.Background(), uuid.New(), "transcript")
		assert.Equal(t, summaryFailedText, got)
	})

	t.Run("degrades on empty output", func(t *testing.T) {
		s := newTestService(t, nil, nil, nil, &fakeSummarizer{summary: ""}, nil)
		got := s.summarize(context.Background(), uuid.New(), "transcript")
		assert.Equal(t, noSummaryText, got)
	})
}

func TestGenerateQuestionsStage(t *testing.T) {
	t.Run("returns generated questions", func(t *testing.T) {
		gen := &fakeQuestionGenerator{questions: []string{"What is X?"}}
		s := newTestService(t, nil, nil, nil, nil, gen)

		got := s.generateQuestions(context.Background(), uuid.New(), "a real summary")
		assert.Equal(t, []string{"What is X?"}, got)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("skips placeholder summaries", func(t *testing.T) {
		gen := &fakeQuestionGenerator{questions: []string{"should not appear"}}
		s := newTestService(t, nil, nil, nil, nil, gen)

		got := s.generateQuestions(context.Background(), uuid.New(), summaryFailedText)
		assert.Empty(t, got)
		got = s.generateQuestions(context.Background(), uuid.New(), noSummaryText)
		assert.Empty(t, got)
		assert.Zero(t, gen.calls)
	})

	t.Run("degrades to empty list on error", func(t *testing.T) {
		gen := &fakeQuestionGenerator{err: errors.New("generator down")}
		s := newTestService(t, nil, nil, nil, nil, gen)

		got := s.generateQuestions(context.Background(), uuid.New(), "a real summary")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
