// Package videogen defines the deferred video generation provider
// contract. Generation is routed by a creation's VideoDescriptor.Type
// tag; providers interpret only the fields their type populates and
// never inspect the descriptor's domain meaning.
package videogen

import (
	"context"

	"github.com/philipbankier/contentpilot/internal/model"
)

// Result is a standardized outcome from any video provider.
type Result struct {
	VideoURL         string
	VideoID          string
	Error            string
	Provider         string
	CostUSD          float64
	DurationSeconds  float64
	GenerationTimeMs int64
}

// Provider generates a video from a descriptor produced by Creator.
type Provider interface {
	Name() string
	Generate(ctx context.Context, d *model.VideoDescriptor, avatarType, voiceID string) (Result, error)
	HealthCheck(ctx context.Context) bool
}

// SupportedTypes returns the VideoType values a Provider implementation
// declares it can handle, used by the dispatcher to pick a provider
// without the provider itself branching on type semantics.
type SupportedTypes interface {
	Supports(t model.VideoType) bool
}
