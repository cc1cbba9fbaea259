package application

import (
	"context"
	"errors"
	"testing"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

func TestProcessMany_FailedItemIsSkipped(t *testing.T) {
	p := newTestPipeline(t, "openai/gpt-4o")
	p.transcriber.failOn = map[int]error{2: errors.New("whisper exploded")}
	videos := makeVideos(t, "one.mp4", "two.mp4", "three.mp4")

	shared := "cooking"
	orch := NewBatchOrchestrator(p.processor, &mockRenamer{}, p.prompter, p.notifier, nil)
	result, err := orch.ProcessMany(context.Background(), videos, &shared)
	if err != nil {
		t.Fatalf("ProcessMany() error = %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(result.Items))
	}
	if result.Items[0].Path != videos[0] || result.Items[1].Path != videos[2] {
		t.Errorf("Items = %v, want items 1 and 3 in order", result.Items)
	}
	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}

	if len(result.Failures) != 1 {
		t.Fatalf("len(Failures) = %d, want 1", len(result.Failures))
	}
	if result.Failures[0].Path != videos[1] {
		t.Errorf("failure path = %s, want %s", result.Failures[0].Path, videos[1])
	}
	if result.Failures[0].Kind != domain.ErrTranscriptionFailed {
		t.Errorf("failure kind = %v, want ErrTranscriptionFailed", result.Failures[0].Kind)
	}

	failed := p.notifier.ofKind(ports.EventItemFailed)
	if len(failed) != 1 || failed[0].Stage != domain.StageTranscribing {
		t.Errorf("item failed events = %+v, want one at transcribing stage", failed)
	}
	if len(p.notifier.ofKind(ports.EventBatchCompleted)) != 1 {
		t.Error("expected a batch completed event")
	}
}

func TestProcessMany_SharedContextSkipsPrompts(t *testing.T) {
	p := newTestPipeline(t, "openai/gpt-4o")
	videos := makeVideos(t, "a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4")

	shared := "Weekend trip to the mountains"
	orch := NewBatchOrchestrator(p.processor, &mockRenamer{}, p.prompter, p.notifier, nil)
	result, err := orch.ProcessMany(context.Background(), videos, &shared)
	if err != nil {
		t.Fatalf("ProcessMany() error = %v", err)
	}

	if result.Succeeded() != 5 {
		t.Errorf("Succeeded() = %d, want 5", result.Succeeded())
	}
	if n := p.prompter.count(ports.PromptContextFor); n != 0 {
		t.Errorf("context prompted %d times, want 0", n)
	}
	if len(p.completer.requests) != 5 {
		t.Fatalf("completion requests = %d, want 5", len(p.completer.requests))
	}
	want := RenderPrompt("{context}", shared, "")
	for i, req := range p.completer.requests {
		if !contains(req.Prompt, "Context: "+want+"\n") {
			t.Errorf("request %d prompt = %q, want shared context", i, req.Prompt)
		}
	}
}

func TestProcessMany_AsksContextPerItem(t *testing.T) {
	p := newTestPipeline(t, "openai/gpt-4o")
	p.prompter.answers[ports.PromptContextFor] = []string{"first clip", "second clip"}
	videos := makeVideos(t, "a.mp4", "b.mp4")

	orch := NewBatchOrchestrator(p.processor, &mockRenamer{}, p.prompter, p.notifier, nil)
	result, err := orch.ProcessMany(context.Background(), videos, nil)
	if err != nil {
		t.Fatalf("ProcessMany() error = %v", err)
	}
	if result.Succeeded() != 2 {
		t.Fatalf("Succeeded() = %d, want 2", result.Succeeded())
	}

	if n := p.prompter.count(ports.PromptContextFor); n != 2 {
		t.Errorf("context prompted %d times, want 2", n)
	}
	if got := p.prompter.calls[0].args[0]; got != "a.mp4" {
		t.Errorf("first context prompt arg = %v, want a.mp4", got)
	}
	if !contains(p.completer.requests[0].Prompt, "first clip") || !contains(p.completer.requests[1].Prompt, "second clip") {
		t.Error("per-item context was not passed to generation")
	}
}

func TestProcessMany_PromptAbortStopsRun(t *testing.T) {
	p := newTestPipeline(t, "openai/gpt-4o")
	p.prompter.answers[ports.PromptContextFor] = []string{"only one answer"}
	videos := makeVideos(t, "a.mp4", "b.mp4", "c.mp4")

	orch := NewBatchOrchestrator(p.processor, &mockRenamer{}, p.prompter, p.notifier, nil)
	result, err := orch.ProcessMany(context.Background(), videos, nil)
	if !errors.Is(err, domain.ErrPromptAborted) {
		t.Fatalf("ProcessMany() error = %v, want ErrPromptAborted", err)
	}
	if result.Succeeded() != 1 {
		t.Errorf("Succeeded() = %d, want 1", result.Succeeded())
	}
}

func TestProcessMany_ModelSelectedOnce(t *testing.T) {
	p := newTestPipeline(t, "")
	p.prompter.answers[ports.PromptSelectModel] = []string{"2"}
	videos := makeVideos(t, "a.mp4", "b.mp4", "c.mp4")

	shared := ""
	orch := NewBatchOrchestrator(p.processor, &mockRenamer{}, p.prompter, p.notifier, nil)
	if _, err := orch.ProcessMany(context.Background(), videos, &shared); err != nil {
		t.Fatalf("ProcessMany() error = %v", err)
	}

	if n := p.prompter.count(ports.PromptSelectModel); n != 1 {
		t.Errorf("model prompted %d times, want 1", n)
	}
	for i, req := range p.completer.requests {
		if req.Model != "openai/gpt-4o-mini" {
			t.Errorf("request %d model = %s, want openai/gpt-4o-mini", i, req.Model)
		}
	}
}

func TestProcessMany_CancelledContext(t *testing.T) {
	p := newTestPipeline(t, "openai/gpt-4o")
	videos := makeVideos(t, "a.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shared := ""
	orch := NewBatchOrchestrator(p.processor, &mockRenamer{}, p.prompter, p.notifier, nil)
	_, err := orch.ProcessMany(ctx, videos, &shared)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessMany() error = %v, want context.Canceled", err)
	}
}

func TestRenameAll_ConflictDoesNotStopOthers(t *testing.T) {
	notifier := &mockNotifier{}
	renamer := &mockRenamer{errs: map[string]error{
		"/videos/a.mp4": domain.Wrap(domain.ErrRenameConflict, "/videos/Taken.mp4", nil),
	}}
	orch := NewBatchOrchestrator(nil, renamer, &mockPrompter{answers: map[string][]string{}}, notifier, nil)

	items := []domain.TitledVideo{
		{Path: "/videos/a.mp4", Title: "Taken"},
		{Path: "/videos/b.mp4", Title: "Fresh"},
	}
	outcomes := orch.RenameAll(context.Background(), items)

	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
	if !errors.Is(outcomes[0].Err, domain.ErrRenameConflict) {
		t.Errorf("outcome[0].Err = %v, want ErrRenameConflict", outcomes[0].Err)
	}
	if !outcomes[1].OK() || outcomes[1].NewPath != "/videos/Fresh.mp4" {
		t.Errorf("outcome[1] = %+v, want successful rename", outcomes[1])
	}

	if n := len(notifier.ofKind(ports.EventRenameFailed)); n != 1 {
		t.Errorf("rename failed events = %d, want 1", n)
	}
	if n := len(notifier.ofKind(ports.EventRenameSucceeded)); n != 1 {
		t.Errorf("rename succeeded events = %d, want 1", n)
	}
}

func TestOfferRename(t *testing.T) {
	items := []domain.TitledVideo{
		{Path: "/videos/a.mp4", Title: "A"},
		{Path: "/videos/b.mp4", Title: "B"},
	}

	tests := []struct {
		name        string
		answers     []string
		assumeYes   bool
		wantRenames int
		wantErr     error
	}{
		{"yes", []string{"y"}, false, 2, nil},
		{"si uppercase", []string{"S"}, false, 2, nil},
		{"no", []string{"n"}, false, 0, nil},
		{"empty answer", []string{""}, false, 0, nil},
		{"assume yes", nil, true, 2, nil},
		{"input closed", nil, false, 0, domain.ErrPromptAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renamer := &mockRenamer{}
			prompter := &mockPrompter{answers: map[string][]string{ports.PromptRenameAllConfirm: tt.answers}}
			orch := NewBatchOrchestrator(nil, renamer, prompter, nil, nil)

			outcomes, err := orch.OfferRename(context.Background(), items, tt.assumeYes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("OfferRename() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OfferRename() error = %v", err)
			}
			if len(outcomes) != tt.wantRenames || len(renamer.renamed) != tt.wantRenames {
				t.Errorf("renamed %d videos, want %d", len(renamer.renamed), tt.wantRenames)
			}
		})
	}
}

func TestOfferRename_SingleVideoUsesSingleConfirm(t *testing.T) {
	prompter := &mockPrompter{answers: map[string][]string{ports.PromptRenameConfirm: {"y"}}}
	orch := NewBatchOrchestrator(nil, &mockRenamer{}, prompter, nil, nil)

	outcomes, err := orch.OfferRename(context.Background(), []domain.TitledVideo{{Path: "/v/a.mp4", Title: "A"}}, false)
	if err != nil {
		t.Fatalf("OfferRename() error = %v", err)
	}
	if len(outcomes) != 1 {
		t.Errorf("len(outcomes) = %d, want 1", len(outcomes))
	}
	if prompter.count(ports.PromptRenameAllConfirm) != 0 {
		t.Error("single video should not use the bulk confirmation")
	}
}

func TestProcessOne(t *testing.T) {
	p := newTestPipeline(t, "anthropic/claude-3-haiku")
	p.completer.reply = "Homemade bread in five steps #baking"
	videos := makeVideos(t, "bread.mov")

	orch := NewBatchOrchestrator(p.processor, &mockRenamer{}, p.prompter, p.notifier, nil)
	got, err := orch.ProcessOne(context.Background(), videos[0], "baking tutorial")
	if err != nil {
		t.Fatalf("ProcessOne() error = %v", err)
	}
	if got.Title != "Homemade bread in five steps #baking" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(p.notifier.ofKind(ports.EventTitleGenerated)) != 1 {
		t.Error("expected a title generated event")
	}
}

func TestAffirmative(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y", true},
		{"Y", true},
		{"s", true},
		{" S ", true},
		{"yes", false},
		{"n", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Affirmative(tt.in); got != tt.want {
			t.Errorf("Affirmative(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
