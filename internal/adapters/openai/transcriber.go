package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// Transcriber implements ports.Transcriber with the hosted Whisper API
type Transcriber struct {
	client *openai.Client
	model  string
}

// NewTranscriber creates a remote transcriber. baseURL may be empty for the
// public API.
func NewTranscriber(apiKey, baseURL string) *Transcriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Transcriber{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.Whisper1,
	}
}

// Name identifies the backend
func (t *Transcriber) Name() string {
	return "openai"
}

// Transcribe uploads audioPath and returns the recognized text with its
// segments. opts.Model is a local model name and is ignored here.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts ports.TranscribeOpts) (*domain.Transcript, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Language: opts.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, describe(err)
	}

	segments := make([]domain.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, domain.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	language := resp.Language
	if language == "" {
		language = opts.Language
	}

	return &domain.Transcript{
		Text:          strings.TrimSpace(resp.Text),
		Segments:      segments,
		Model:         t.model,
		Language:      language,
		Backend:       t.Name(),
		TranscribedAt: time.Now(),
	}, nil
}

// describe keeps the API's own message for rejected requests
func describe(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai status %d: %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return err
}

var _ ports.Transcriber = (*Transcriber)(nil)
