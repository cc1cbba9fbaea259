package domain

import (
	"fmt"
	"strings"
)

// Provider groups the models offered by one vendor.
type Provider struct {
	Name   string   `yaml:"name"`
	Models []string `yaml:"models"`
}

// CatalogEntry is one selectable model. Numbers start at 1 and run
// continuously across providers.
type CatalogEntry struct {
	Number   int
	Provider string
	Model    string
}

// Catalog is an ordered, read-only list of language models a user can pick
// from.
type Catalog struct {
	entries []CatalogEntry
}

// DefaultCatalog returns the built-in OpenRouter model list.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Provider{
		{Name: "OpenAI", Models: []string{"openai/gpt-4o", "openai/gpt-4o-mini"}},
		{Name: "Anthropic", Models: []string{"anthropic/claude-3.5-sonnet", "anthropic/claude-3-haiku"}},
		{Name: "Meta-Llama", Models: []string{"meta-llama/llama-3.2-3b-instruct", "meta-llama/llama-3.1-70b-instruct"}},
		{Name: "Google", Models: []string{"google/gemini-flash-1.5"}},
	})
}

// NewCatalog numbers the models of providers in declaration order. Blank
// model names are skipped.
func NewCatalog(providers []Provider) *Catalog {
	c := &Catalog{}
	for _, p := range providers {
		for _, m := range p.Models {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			c.entries = append(c.entries, CatalogEntry{
				Number:   len(c.entries) + 1,
				Provider: p.Name,
				Model:    m,
			})
		}
	}
	return c
}

// Entries returns a copy of the catalog entries in display order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of selectable models.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Select returns the entry with the given 1-based number.
func (c *Catalog) Select(choice int) (CatalogEntry, error) {
	if choice < 1 || choice > len(c.entries) {
		return CatalogEntry{}, fmt.Errorf("%w: %d is not between 1 and %d", ErrModelSelectionInvalid, choice, len(c.entries))
	}
	return c.entries[choice-1], nil
}

// Contains reports whether model is listed in the catalog.
func (c *Catalog) Contains(model string) bool {
	for _, e := range c.entries {
		if e.Model == model {
			return true
		}
	}
	return false
}
