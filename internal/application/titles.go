package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// GenerateRequest describes one title to generate
type GenerateRequest struct {
	Path       string
	Transcript string
	Context    string
	Language   string
	Model      string
}

// TemplateSource returns the prompt template for a language
type TemplateSource func(language string) (string, error)

// TitleGenerator asks a language model for a title and fits the answer to
// the title length budget.
type TitleGenerator struct {
	completer   ports.Completer
	templates   TemplateSource
	maxLength   int
	temperature *float32
	maxTokens   int
	notifier    ports.Notifier
	logger      *slog.Logger
}

// TitleGeneratorOptions tunes the completion request and title budget
type TitleGeneratorOptions struct {
	MaxLength   int
	Temperature *float32
	MaxTokens   int
}

// NewTitleGenerator creates a title generator
func NewTitleGenerator(completer ports.Completer, templates TemplateSource, opts TitleGeneratorOptions, notifier ports.Notifier, logger *slog.Logger) *TitleGenerator {
	if opts.MaxLength <= 0 {
		opts.MaxLength = domain.DefaultMaxTitleLength
	}
	if notifier == nil {
		notifier = ports.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TitleGenerator{
		completer:   completer,
		templates:   templates,
		maxLength:   opts.MaxLength,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		notifier:    notifier,
		logger:      logger,
	}
}

// Generate sends one completion request and returns the optimized title.
func (g *TitleGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	tmpl, err := g.templates(req.Language)
	if err != nil {
		return "", domain.Wrap(domain.ErrGenerationFailed, "load prompt template", err)
	}

	prompt := RenderPrompt(tmpl, req.Context, req.Transcript)
	g.logger.Debug("requesting title",
		"path", req.Path,
		"model", req.Model,
		"language", req.Language,
		"prompt_chars", len(prompt),
	)

	raw, err := g.completer.Complete(ctx, ports.CompletionRequest{
		Model:       req.Model,
		Prompt:      prompt,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTimeout) || errors.Is(err, domain.ErrGenerationFailed) {
			return "", err
		}
		return "", classify(ctx, domain.ErrGenerationFailed, "complete", err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.Wrap(domain.ErrGenerationFailed, "model returned an empty title", nil)
	}

	title, overshoot := domain.EnforceTitleLength(raw, g.maxLength)
	if overshoot > 0 {
		g.logger.Warn("title_too_long", "path", req.Path, "length", overshoot, "max", g.maxLength)
		g.notifier.Notify(ports.Event{Kind: ports.EventTitleTooLong, Path: req.Path, Length: overshoot})
	}
	return title, nil
}

// RenderPrompt fills the {context} and {transcription} placeholders of a
// prompt template. Doubled braces are unescaped.
func RenderPrompt(tmpl, context, transcript string) string {
	r := strings.NewReplacer(
		"{context}", context,
		"{transcription}", transcript,
		"{{", "{",
		"}}", "}",
	)
	return r.Replace(tmpl)
}
