package enrichment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/video"
	"github.com/barterskills/barterskills-server-go/pkg/metrics"
)

const (
	summaryFailedText = "Summary generation failed."
	noSummaryText     = "No summary generated."
)

// Transcriber produces a transcript from a local media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath, outputDir string) (string, error)
}

// Summarizer condenses a transcript into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// QuestionGenerator derives practice questions from a summary.
type QuestionGenerator interface {
	Generate(ctx context.Context, summary string) ([]string, error)
}

// Downloader fetches a remote asset to a local path.
type Downloader interface {
	Download(ctx context.Context, assetURL, destPath string) error
}

// VideoStore loads videos and persists their enrichment artifacts.
type VideoStore interface {
	Get(videoID uuid.UUID) (video.Video, error)
	SaveArtifacts(videoID uuid.UUID, transcript, summary string, questions []string) error
}

type gormVideoStore struct{ db *gorm.DB }

func (s gormVideoStore) Get(videoID uuid.UUID) (video.Video, error) {
	return video.Get(s.db, videoID)
}

func (s gormVideoStore) SaveArtifacts(videoID uuid.UUID, transcript, summary string, questions []string) error {
	return video.SetAIArtifacts(s.db, videoID, transcript, summary, questions)
}

// Service runs the enrichment pipeline for uploaded videos: transcript,
// summary, then questions. Transcription failure aborts the run; the later
// stages degrade to placeholder values so one flaky model cannot block the
// whole pipeline.
type Service struct {
	store       VideoStore
	logger      *slog.Logger
	downloader  Downloader
	transcriber Transcriber
	summarizer  Summarizer
	questions   QuestionGenerator
	scratchDir  string
}

// NewService constructs an enrichment service instance.
func NewService(db *gorm.DB, logger *slog.Logger, downloader Downloader, transcriber Transcriber, summarizer Summarizer, questions QuestionGenerator, scratchDir string) *Service {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Service{
		store:       gormVideoStore{db: db},
		logger:      logger,
		downloader:  downloader,
		transcriber: transcriber,
		summarizer:  summarizer,
		questions:   questions,
		scratchDir:  scratchDir,
	}
}

// Enrich downloads the video's media, runs the pipeline and persists all
// artifacts in a single update. It returns the refreshed video row.
func (s *Service) Enrich(ctx context.Context, videoID uuid.UUID) (*video.Video, error) {
	started := time.Now()

	vid, err := s.store.Get(videoID)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp(s.scratchDir, "enrich-"+videoID.String()+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.logger.Warn("failed to remove scratch dir", slog.String("dir", workDir), slog.String("error", err.Error()))
		}
	}()

	mediaPath := filepath.Join(workDir, "media.mp4")

	downloadStart := time.Now()
	if err := s.downloader.Download(ctx, vid.VideoURL, mediaPath); err != nil {
		metrics.RecordEnrichmentRun("failed")
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	metrics.RecordEnrichmentStage("download", time.Since(downloadStart))

	transcribeStart := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, mediaPath, workDir)
	if err != nil {
		metrics.RecordEnrichmentRun("failed")
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	metrics.RecordEnrichmentStage("transcribe", time.Since(transcribeStart))

	summary := s.summarize(ctx, videoID, transcript)
	questions := s.generateQuestions(ctx, videoID, summary)

	if err := s.store.SaveArtifacts(videoID, transcript, summary, questions); err != nil {
		metrics.RecordEnrichmentRun("failed")
		return nil, fmt.Errorf("failed to persist enrichment artifacts: %w", err)
	}

	metrics.RecordEnrichmentRun("completed")
	s.logger.Info("video enrichment completed",
		slog.String("videoId", videoID.String()),
		slog.Int("transcriptChars", len(transcript)),
		slog.Int("questions", len(questions)),
		slog.Duration("elapsed", time.Since(started)),
	)

	updated, err := s.store.Get(videoID)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) summarize(ctx context.Context, videoID uuid.UUID, transcript string) string {
	stageStart := time.Now()
	summary, err := s.summarizer.Summarize(ctx, transcript)
	metrics.RecordEnrichmentStage("summarize", time.Since(stageStart))

	if err != nil {
		s.logger.Warn("summary generation failed",
			slog.String("videoId", videoID.String()),
			slog.String("error", err.Error()),
		)
		return summaryFailedText
	}
	if summary == "" {
		return noSummaryText
	}
	return summary
}

func (s *Service) generateQuestions(ctx context.Context, videoID uuid.UUID, summary string) []string {
	if summary == summaryFailedText || summary == noSummaryText {
		return []string{}
	}

	stageStart := time.Now()
	questions, err := s.questions.Generate(ctx, summary)
	metrics.RecordEnrichmentStage("questions", time.Since(stageStart))

	if err != nil {
		s.logger.Warn("question generation failed",
			slog.String("videoId", videoID.String()),
			slog.String("error", err.Error()),
		)
		return []string{}
	}
	return questions
}
