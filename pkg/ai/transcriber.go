package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrEmptyTranscript is returned when the transcription produced no text.
var ErrEmptyTranscript = errors.New("transcription produced no text")

// Transcriber runs a local whisper binary to produce transcripts.
type Transcriber struct {
	binary string
	model  string
}

// NewTranscriber creates a transcriber for the given whisper binary and model.
func NewTranscriber(binary, model string) *Transcriber {
	return &Transcriber{
		binary: binary,
		model:  model,
	}
}

// Transcribe runs whisper against mediaPath, writing its text output into
// outputDir, and returns the transcript contents. The .txt file whisper leaves
// behind is the caller's to clean up along with the rest of the scratch dir.
func (t *Transcriber) Transcribe(ctx context.Context, mediaPath, outputDir string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary,
		mediaPath,
		"--model", t.model,
		"--language", "en",
		"--output_format", "txt",
		"--output_dir", outputDir,
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("whisper failed: %w: %s", err, truncate(string(output), 512))
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	transcriptPath := filepath.Join(outputDir, base+".txt")

	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}

	transcript := strings.TrimSpace(string(data))
	if transcript == "" {
		return "", ErrEmptyTranscript
	}

	return transcript, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
