package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"clipforge/models"
	"clipforge/utils"
)

// Transcriber turns a local audio file into ordered timed text segments.
// The model behind it is a black box; only the segment contract matters.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]models.Segment, error)
}

// WhisperTranscriber transcribes through the OpenAI speech-to-text API
type WhisperTranscriber struct {
	client *openai.Client
}

// NewWhisperTranscriber creates a transcriber with the given API key
func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
	}
}

// Transcribe runs the speech-to-text model on audioPath and returns its
// segments in order, with trimmed text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) ([]models.Segment, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments := make([]models.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, models.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return segments, nil
}

// WriteSRT serializes segments as a 1-indexed SubRip file for the media
// tool's subtitles filter.
func WriteSRT(segments []models.Segment, srtPath string) error {
	file, err := os.Create(srtPath)
	if err != nil {
		return fmt.Errorf("failed to create SRT file: %w", err)
	}
	defer file.Close()

	for i, seg := range segments {
		start := utils.FormatSRTTimestamp(seg.Start)
		end := utils.FormatSRTTimestamp(seg.End)
		if _, err := fmt.Fprintf(file, "%d\n%s --> %s\n%s\n\n", i+1, start, end, seg.Text); err != nil {
			return fmt.Errorf("failed to write SRT entry %d: %w", i+1, err)
		}
	}
	return nil
}
