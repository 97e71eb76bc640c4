package provider

import "context"

// GenRequest describes one text-generation call. Op names the analysis
// sub-operation for logging; MaxTokens and Temperature come from the prompt
// registry.
type GenRequest struct {
	Op          string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// TextGenerator is the contract the analysis layer depends on. A nil or
// disabled generator means fallback-only operation.
type TextGenerator interface {
	ID() string
	Enabled() bool
	ExpectsJSON() bool
	Generate(ctx context.Context, req GenRequest) (string, error)
}
