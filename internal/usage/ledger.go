// Package usage accumulates token counts and estimated cost per model and
// per pipeline step. The ledger is the one shared mutable resource of a
// run and serializes its own updates, so callers may record concurrently.
package usage

import (
	"strings"
	"sync"
)

// modelCost is the approximate USD cost per 1000 tokens.
type modelCost struct {
	input  float64
	output float64
}

// modelCosts maps known model families to their per-1K-token pricing.
// Unknown models are priced as zero, matching local inference.
var modelCosts = map[string]modelCost{
	"gpt-4":             {input: 0.03, output: 0.06},
	"gpt-4-32k":         {input: 0.06, output: 0.12},
	"gpt-3.5-turbo":     {input: 0.0015, output: 0.002},
	"gpt-3.5-turbo-16k": {input: 0.003, output: 0.004},
	"claude-sonnet-4-5": {input: 0.003, output: 0.015},
	"local":             {input: 0, output: 0},
}

// ModelUsage aggregates the calls charged to one model.
type ModelUsage struct {
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// StepUsage aggregates the calls charged to one pipeline step.
type StepUsage struct {
	Calls       int     `json:"calls"`
	TotalTokens int     `json:"total_tokens"`
	Cost        float64 `json:"cost"`
}

// Snapshot is an immutable copy of the ledger's counters.
type Snapshot struct {
	TotalInputTokens  int                   `json:"total_input_tokens"`
	TotalOutputTokens int                   `json:"total_output_tokens"`
	TotalCost         float64               `json:"total_cost"`
	Models            map[string]ModelUsage `json:"models"`
	Steps             map[string]StepUsage  `json:"steps"`
}

// Ledger accumulates usage counters. The zero value is not usable; call
// NewLedger.
type Ledger struct {
	mu     sync.Mutex
	models map[string]ModelUsage
	steps  map[string]StepUsage
	input  int
	output int
	cost   float64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		models: map[string]ModelUsage{},
		steps:  map[string]StepUsage{},
	}
}

// Record charges one Reasoning Service call to the given step and model.
func (l *Ledger) Record(step, model string, inputTokens, outputTokens int) {
	cost := estimateCost(model, inputTokens, outputTokens)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.input += inputTokens
	l.output += outputTokens
	l.cost += cost

	m := l.models[model]
	m.Calls++
	m.InputTokens += inputTokens
	m.OutputTokens += outputTokens
	m.Cost += cost
	l.models[model] = m

	s := l.steps[step]
	s.Calls++
	s.TotalTokens += inputTokens + outputTokens
	s.Cost += cost
	l.steps[step] = s
}

// Snapshot returns a copy of the current counters.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		TotalInputTokens:  l.input,
		TotalOutputTokens: l.output,
		TotalCost:         l.cost,
		Models:            make(map[string]ModelUsage, len(l.models)),
		Steps:             make(map[string]StepUsage, len(l.steps)),
	}
	for k, v := range l.models {
		snap.Models[k] = v
	}
	for k, v := range l.steps {
		snap.Steps[k] = v
	}
	return snap
}

// estimateCost prices a call from the per-1K-token table. Models are
// matched by longest known prefix so versioned names (gpt-4-0613) price as
// their family.
func estimateCost(model string, inputTokens, outputTokens int) float64 {
	c, ok := modelCosts[model]
	if !ok {
		best := ""
		for name := range modelCosts {
			if strings.HasPrefix(model, name) && len(name) > len(best) {
				best = name
			}
		}
		if best == "" {
			return 0
		}
		c = modelCosts[best]
	}
	return float64(inputTokens)/1000*c.input + float64(outputTokens)/1000*c.output
}
