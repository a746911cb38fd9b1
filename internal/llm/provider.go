// Package llm defines the text-completion provider contract used by
// Analyst and Creator. Concrete providers are external collaborators; one
// reference implementation is included for local running and tests.
package llm

import "context"

// Response is one completion result.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	LatencyMs    int64
	Provider     string
	Model        string
}

// Provider completes a system/user prompt pair into text, optionally
// constrained to emit JSON.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, jsonMode bool) (Response, error)
	HealthCheck(ctx context.Context) bool
}
