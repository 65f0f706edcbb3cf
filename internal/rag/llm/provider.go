package llm

import "context"

// Provider generates a completion for a fully assembled prompt. Context
// trimming and budgeting happen upstream; implementations send the prompt
// as-is. Calls are single-shot: a provider never retries internally, it
// classifies failures and returns them.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
