// Package provider abstracts the Reasoning Service: a single synchronous
// completion call against an LLM vendor, returning the response text and
// token usage. Concrete vendors register themselves via init() side
// effects and are selected through the factory in factory.go.
package provider

import "context"

// ReasoningService performs one completion call.
type ReasoningService interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// CompletionRequest describes a single completion call.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature *float64
}

// Completion is the result of a completion call.
type Completion struct {
	Content string
	Usage   Usage
}

// Usage reports the token consumption of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
