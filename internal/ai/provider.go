package ai

import "context"

// Provider wraps a single LLM backend behind a prompt-in, text-out call.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
