package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

func TestModelSelector_InvalidChoiceReprompts(t *testing.T) {
	prompter := &mockPrompter{answers: map[string][]string{
		ports.PromptSelectModel: {"99", "abc", "", "3"},
	}}
	notifier := &mockNotifier{}
	sel := NewModelSelector(domain.DefaultCatalog(), "", prompter, notifier)

	model, err := sel.GetOrResolve(context.Background())
	if err != nil {
		t.Fatalf("GetOrResolve() error = %v", err)
	}
	if model != "anthropic/claude-3.5-sonnet" {
		t.Errorf("GetOrResolve() = %s, want anthropic/claude-3.5-sonnet", model)
	}

	invalid := notifier.ofKind(ports.EventModelSelectionInvalid)
	if len(invalid) != 3 {
		t.Fatalf("invalid selection events = %d, want 3", len(invalid))
	}
	if invalid[0].Input != "99" || invalid[0].Length != 7 {
		t.Errorf("first invalid event = %+v, want input 99 with 7 entries", invalid[0])
	}
	if !errors.Is(invalid[0].Err, domain.ErrModelSelectionInvalid) {
		t.Errorf("invalid event error = %v, want ErrModelSelectionInvalid", invalid[0].Err)
	}
	if prompter.count(ports.PromptSelectModel) != 4 {
		t.Errorf("prompted %d times, want 4", prompter.count(ports.PromptSelectModel))
	}
	if len(notifier.ofKind(ports.EventModelCatalog)) != 1 {
		t.Error("catalog should be shown once")
	}
}

func TestModelSelector_ResolvesOnce(t *testing.T) {
	prompter := &mockPrompter{answers: map[string][]string{
		ports.PromptSelectModel: {"1", "2"},
	}}
	sel := NewModelSelector(domain.DefaultCatalog(), "", prompter, nil)

	if _, ok := sel.Selected(); ok {
		t.Fatal("Selected() reported a model before resolution")
	}

	first, err := sel.GetOrResolve(context.Background())
	if err != nil {
		t.Fatalf("GetOrResolve() error = %v", err)
	}
	second, err := sel.GetOrResolve(context.Background())
	if err != nil {
		t.Fatalf("GetOrResolve() error = %v", err)
	}

	if first != second || first != "openai/gpt-4o" {
		t.Errorf("GetOrResolve() = %s then %s, want openai/gpt-4o twice", first, second)
	}
	if prompter.count(ports.PromptSelectModel) != 1 {
		t.Errorf("prompted %d times, want 1", prompter.count(ports.PromptSelectModel))
	}
	if got, ok := sel.Selected(); !ok || got != first {
		t.Errorf("Selected() = %s, %v", got, ok)
	}
}

func TestModelSelector_ConfiguredModelSkipsPrompt(t *testing.T) {
	prompter := &mockPrompter{answers: map[string][]string{}}
	sel := NewModelSelector(domain.DefaultCatalog(), " mistralai/mistral-large ", prompter, nil)

	model, err := sel.GetOrResolve(context.Background())
	if err != nil {
		t.Fatalf("GetOrResolve() error = %v", err)
	}
	if model != "mistralai/mistral-large" {
		t.Errorf("GetOrResolve() = %q, want mistralai/mistral-large", model)
	}
	if len(prompter.calls) != 0 {
		t.Error("configured model should not prompt")
	}
}

func TestModelSelector_InputClosed(t *testing.T) {
	prompter := &mockPrompter{answers: map[string][]string{ports.PromptSelectModel: {"0"}}}
	sel := NewModelSelector(domain.DefaultCatalog(), "", prompter, nil)

	_, err := sel.GetOrResolve(context.Background())
	if !errors.Is(err, domain.ErrPromptAborted) {
		t.Errorf("GetOrResolve() error = %v, want ErrPromptAborted", err)
	}
	if _, ok := sel.Selected(); ok {
		t.Error("no model should be selected after aborted input")
	}
}

func TestModelSelector_EmptyCatalog(t *testing.T) {
	sel := NewModelSelector(domain.NewCatalog(nil), "", &mockPrompter{answers: map[string][]string{}}, nil)

	_, err := sel.GetOrResolve(context.Background())
	if !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Errorf("GetOrResolve() error = %v, want ErrConfigurationMissing", err)
	}
}

func TestModelSelector_DeadlineIsTimeout(t *testing.T) {
	prompter := &mockPrompter{answers: map[string][]string{
		ports.PromptSelectModel: {"1"},
	}}
	sel := NewModelSelector(domain.DefaultCatalog(), "", prompter, nil)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := sel.GetOrResolve(ctx)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("GetOrResolve() error = %v, want ErrTimeout", err)
	}
	if IsFatal(err) {
		t.Error("an expired deadline must not abort the run")
	}
	if _, ok := sel.Selected(); ok {
		t.Error("Selected() reported a model after a timeout")
	}
}
