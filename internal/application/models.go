package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// ModelSelector resolves the language model for a run exactly once, either
// from configuration or by asking the user to pick from the catalog.
type ModelSelector struct {
	catalog    *domain.Catalog
	configured string
	prompter   ports.Prompter
	notifier   ports.Notifier

	mu       sync.Mutex
	selected string
}

// NewModelSelector creates a selector. A non-empty configured model is used
// without prompting.
func NewModelSelector(catalog *domain.Catalog, configured string, prompter ports.Prompter, notifier ports.Notifier) *ModelSelector {
	if notifier == nil {
		notifier = ports.Discard
	}
	return &ModelSelector{
		catalog:    catalog,
		configured: strings.TrimSpace(configured),
		prompter:   prompter,
		notifier:   notifier,
	}
}

// Selected returns the resolved model, if any.
func (m *ModelSelector) Selected() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected, m.selected != ""
}

// GetOrResolve returns the model for this run, resolving it on first use.
// Invalid choices are reported and asked again; only input failures are
// returned, as ErrPromptAborted, or ErrTimeout when ctx ran out.
func (m *ModelSelector) GetOrResolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected != "" {
		return m.selected, nil
	}

	if m.configured != "" {
		m.selected = m.configured
		m.notifier.Notify(ports.Event{Kind: ports.EventModelSelected, Model: m.selected})
		return m.selected, nil
	}

	if m.catalog == nil || m.catalog.Len() == 0 {
		return "", domain.Wrap(domain.ErrConfigurationMissing, "model catalog is empty", nil)
	}
	if m.prompter == nil {
		return "", domain.Wrap(domain.ErrConfigurationMissing, "no model configured and no way to ask for one", nil)
	}

	m.notifier.Notify(ports.Event{Kind: ports.EventModelCatalog, Entries: m.catalog.Entries()})

	for {
		if err := ctx.Err(); err != nil {
			return "", promptError(err)
		}

		input, err := m.prompter.Ask(ctx, ports.PromptSelectModel, m.catalog.Len())
		if err != nil {
			return "", promptError(err)
		}

		entry, err := m.parseChoice(input)
		if err != nil {
			m.notifier.Notify(ports.Event{
				Kind:   ports.EventModelSelectionInvalid,
				Input:  strings.TrimSpace(input),
				Length: m.catalog.Len(),
				Err:    err,
			})
			continue
		}

		m.selected = entry.Model
		m.notifier.Notify(ports.Event{
			Kind:  ports.EventModelSelected,
			Model: entry.Model,
			Text:  entry.Provider,
		})
		return m.selected, nil
	}
}

// promptError keeps an expired deadline a per-item timeout
func promptError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Wrap(domain.ErrTimeout, "select model", err)
	}
	return domain.Wrap(domain.ErrPromptAborted, "select model", err)
}

func (m *ModelSelector) parseChoice(input string) (domain.CatalogEntry, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("%w: %q is not a number", domain.ErrModelSelectionInvalid, input)
	}
	return m.catalog.Select(n)
}
