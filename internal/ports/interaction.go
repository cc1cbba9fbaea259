package ports

import (
	"context"

	"github.com/devbush/vidtitle/internal/domain"
)

// Message keys the core asks a Prompter for. Adapters resolve them to
// localized text.
const (
	PromptContextFor       = "enter_context_for"
	PromptSelectModel      = "select_model"
	PromptRenameConfirm    = "rename_confirm"
	PromptRenameAllConfirm = "rename_all_confirm"
)

// Prompter reads one line of user input after showing the message for key.
type Prompter interface {
	Ask(ctx context.Context, key string, args ...any) (string, error)
}

// EventKind identifies a user-facing notification.
type EventKind int

const (
	EventItemStarted EventKind = iota
	EventStageChanged
	EventTranscriptReady
	EventModelCatalog
	EventModelSelectionInvalid
	EventModelSelected
	EventTitleTooLong
	EventTitleGenerated
	EventItemFailed
	EventRenameSucceeded
	EventRenameFailed
	EventBatchCompleted
)

// Event carries the data of a notification. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind    EventKind
	Path    string
	Index   int // 1-based position in the batch
	Total   int
	Stage   domain.Stage
	Text    string
	Title   string
	Model   string
	Input   string
	Length  int
	Cached  bool
	NewPath string
	Entries []domain.CatalogEntry
	Result  *domain.BatchResult
	Err     error
}

// Notifier receives progress and outcome events from the core.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// Discard drops every event.
var Discard Notifier = NotifierFunc(func(Event) {})
