package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// StageError reports the pipeline stage at which a video failed.
type StageError struct {
	Stage domain.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ProcessorOptions configures the per-video pipeline
type ProcessorOptions struct {
	Language          string // prompt language
	TranscribeModel   string
	TranscribeLang    string
	NoCache           bool
	ItemTimeout       time.Duration
	TranscribeTimeout time.Duration
}

// VideoProcessor runs one video through extraction, transcription, model
// selection and title generation.
type VideoProcessor struct {
	transcribe *TranscribeService
	titles     *TitleGenerator
	models     *ModelSelector
	notifier   ports.Notifier
	logger     *slog.Logger
	opts       ProcessorOptions
}

// NewVideoProcessor creates a video processor
func NewVideoProcessor(
	transcribe *TranscribeService,
	titles *TitleGenerator,
	models *ModelSelector,
	notifier ports.Notifier,
	logger *slog.Logger,
	opts ProcessorOptions,
) *VideoProcessor {
	if notifier == nil {
		notifier = ports.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &VideoProcessor{
		transcribe: transcribe,
		titles:     titles,
		models:     models,
		notifier:   notifier,
		logger:     logger,
		opts:       opts,
	}
}

// Process returns the generated title for item. Failures are reported as a
// *StageError; run-aborting conditions (cancelled context, aborted input)
// are returned as well and can be told apart with IsFatal.
//
// The item timeout covers the processing stages only: time spent waiting
// for the user to pick a model is not charged to it.
func (p *VideoProcessor) Process(ctx context.Context, item domain.BatchItem) (string, error) {
	budget := &itemBudget{limit: p.opts.ItemTimeout}
	start := time.Now()
	log := p.logger.With("path", item.Path)
	current := domain.StageExtracting
	enter := func(s domain.Stage) {
		current = s
		p.notifier.Notify(ports.Event{Kind: ports.EventStageChanged, Path: item.Path, Stage: s})
	}
	fail := func(err error) (string, error) {
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ctx.Err()
		}
		if IsFatal(err) {
			return "", err
		}
		serr := &StageError{Stage: current, Err: err}
		log.Error("video failed", "stage", current.String(), "kind", fmt.Sprint(domain.Kind(err)), "error", err)
		p.notifier.Notify(ports.Event{Kind: ports.EventItemFailed, Path: item.Path, Stage: current, Err: serr})
		return "", serr
	}

	tctx, done := budget.start(ctx)
	res, err := p.transcribe.Transcribe(tctx, item.Path, TranscribeOptions{
		Model:    p.opts.TranscribeModel,
		Language: p.opts.TranscribeLang,
		NoCache:  p.opts.NoCache,
		Timeout:  p.opts.TranscribeTimeout,
		OnStage:  enter,
	})
	done()
	if err != nil {
		return fail(err)
	}
	text := res.Transcript.ToText()
	log.Debug("transcript ready",
		"backend", res.Transcript.Backend,
		"audio", res.Transcript.Duration(),
		"preview", res.Transcript.Preview(80),
	)
	p.notifier.Notify(ports.Event{
		Kind:   ports.EventTranscriptReady,
		Path:   item.Path,
		Text:   text,
		Cached: res.FromCache,
	})

	enter(domain.StageSelectingModel)
	model, err := p.models.GetOrResolve(ctx)
	if err != nil {
		return fail(err)
	}

	enter(domain.StageGenerating)
	gctx, done := budget.start(ctx)
	title, err := p.titles.Generate(gctx, GenerateRequest{
		Path:       item.Path,
		Transcript: text,
		Context:    item.Context,
		Language:   p.opts.Language,
		Model:      model,
	})
	done()
	if err != nil {
		return fail(err)
	}

	enter(domain.StageDone)
	log.Info("title generated",
		"model", model,
		"cached_transcript", res.FromCache,
		"title_length", domain.TitleLength(title),
		"duration", time.Since(start),
	)
	p.notifier.Notify(ports.Event{Kind: ports.EventTitleGenerated, Path: item.Path, Title: title})
	return title, nil
}

// itemBudget spreads one item timeout over several stages
type itemBudget struct {
	limit time.Duration
	used  time.Duration
}

// start returns a context bounded by what is left of the budget. done
// records the time spent and releases the context.
func (b *itemBudget) start(ctx context.Context) (context.Context, func()) {
	if b.limit <= 0 {
		return ctx, func() {}
	}
	begin := time.Now()
	sctx, cancel := context.WithTimeout(ctx, max(b.limit-b.used, 0))
	return sctx, func() {
		b.used += time.Since(begin)
		cancel()
	}
}

// IsFatal reports whether err should stop the whole run rather than a
// single video.
func IsFatal(err error) bool {
	return errors.Is(err, domain.ErrPromptAborted) ||
		errors.Is(err, domain.ErrConfigurationMissing) ||
		errors.Is(err, context.Canceled)
}
