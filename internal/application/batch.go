package application

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// Processor generates a title for one video.
type Processor interface {
	Process(ctx context.Context, item domain.BatchItem) (string, error)
}

// BatchOrchestrator drives the single-video and folder flows: it gathers
// per-item context, processes videos one at a time and applies renames.
type BatchOrchestrator struct {
	processor Processor
	renamer   ports.Renamer
	prompter  ports.Prompter
	notifier  ports.Notifier
	logger    *slog.Logger
}

// NewBatchOrchestrator creates a batch orchestrator
func NewBatchOrchestrator(processor Processor, renamer ports.Renamer, prompter ports.Prompter, notifier ports.Notifier, logger *slog.Logger) *BatchOrchestrator {
	if notifier == nil {
		notifier = ports.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BatchOrchestrator{
		processor: processor,
		renamer:   renamer,
		prompter:  prompter,
		notifier:  notifier,
		logger:    logger,
	}
}

// ProcessOne generates a title for a single video with the given context.
func (o *BatchOrchestrator) ProcessOne(ctx context.Context, path, videoContext string) (domain.TitledVideo, error) {
	o.notifier.Notify(ports.Event{Kind: ports.EventItemStarted, Path: path, Index: 1, Total: 1})
	title, err := o.processor.Process(ctx, domain.BatchItem{Path: path, Context: videoContext})
	if err != nil {
		return domain.TitledVideo{}, err
	}
	return domain.TitledVideo{Path: path, Title: title}, nil
}

// ProcessMany processes paths in order. With a non-nil shared context every
// video uses it; otherwise the context is asked for before each video.
// Failed videos are recorded and skipped. The returned error is only set
// when the run itself had to stop.
func (o *BatchOrchestrator) ProcessMany(ctx context.Context, paths []string, shared *string) (*domain.BatchResult, error) {
	start := time.Now()
	result := &domain.BatchResult{Total: len(paths)}
	o.logger.Info("batch started", "videos", len(paths), "shared_context", shared != nil)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		o.notifier.Notify(ports.Event{Kind: ports.EventItemStarted, Path: path, Index: i + 1, Total: len(paths)})

		var videoContext string
		if shared != nil {
			videoContext = *shared
		} else {
			answer, err := o.prompter.Ask(ctx, ports.PromptContextFor, filepath.Base(path))
			if err != nil {
				result.Duration = time.Since(start)
				return result, domain.Wrap(domain.ErrPromptAborted, "context for "+filepath.Base(path), err)
			}
			videoContext = answer
		}

		title, err := o.processor.Process(ctx, domain.BatchItem{Path: path, Context: videoContext})
		if err != nil {
			if IsFatal(err) {
				result.Duration = time.Since(start)
				return result, err
			}
			result.Failures = append(result.Failures, domain.ItemFailure{
				Path: path,
				Kind: domain.Kind(err),
				Err:  err,
			})
			continue
		}

		result.Items = append(result.Items, domain.TitledVideo{Path: path, Title: title})
	}

	result.Duration = time.Since(start)
	o.logger.Info("batch finished",
		"succeeded", result.Succeeded(),
		"failed", result.Failed(),
		"duration", result.Duration,
	)
	o.notifier.Notify(ports.Event{Kind: ports.EventBatchCompleted, Result: result, Total: result.Total})
	return result, nil
}

// OfferRename asks once whether to rename all titled videos and, on a yes,
// renames them. assumeYes skips the question.
func (o *BatchOrchestrator) OfferRename(ctx context.Context, items []domain.TitledVideo, assumeYes bool) ([]domain.RenameOutcome, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if !assumeYes {
		key := ports.PromptRenameAllConfirm
		if len(items) == 1 {
			key = ports.PromptRenameConfirm
		}
		answer, err := o.prompter.Ask(ctx, key)
		if err != nil {
			return nil, domain.Wrap(domain.ErrPromptAborted, "rename confirmation", err)
		}
		if !Affirmative(answer) {
			o.logger.Info("rename declined", "videos", len(items))
			return nil, nil
		}
	}

	return o.RenameAll(ctx, items), nil
}

// RenameAll renames every video to its title. Each rename is attempted on
// its own; a failure does not stop the others.
func (o *BatchOrchestrator) RenameAll(ctx context.Context, items []domain.TitledVideo) []domain.RenameOutcome {
	outcomes := make([]domain.RenameOutcome, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, domain.RenameOutcome{Path: item.Path, Err: err})
			continue
		}

		newPath, err := o.renamer.Rename(item.Path, item.Title)
		outcome := domain.RenameOutcome{Path: item.Path, NewPath: newPath, Err: err}
		outcomes = append(outcomes, outcome)

		if err != nil {
			o.logger.Warn("rename failed", "path", item.Path, "kind", domain.Kind(err), "error", err)
			o.notifier.Notify(ports.Event{Kind: ports.EventRenameFailed, Path: item.Path, Total: len(items), Err: err})
			continue
		}
		o.logger.Info("renamed", "path", item.Path, "new_path", newPath)
		o.notifier.Notify(ports.Event{Kind: ports.EventRenameSucceeded, Path: item.Path, NewPath: newPath, Total: len(items)})
	}
	return outcomes
}

// Affirmative reports whether answer is a yes ("y" or "s", any case).
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "s":
		return true
	default:
		return false
	}
}
