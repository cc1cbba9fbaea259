package ports

import "context"

// CompletionRequest is a single-turn chat completion
type CompletionRequest struct {
	Model       string
	Prompt      string
	Temperature *float32
	MaxTokens   int
}

// Completer sends prompts to a hosted language model
type Completer interface {
	// Complete returns the trimmed text of the first choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
