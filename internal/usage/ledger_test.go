package usage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecordAndSnapshot(t *testing.T) {
	l := NewLedger()
	l.Record("semantic_linking", "gpt-4", 1000, 500)
	l.Record("semantic_linking", "gpt-4", 2000, 1000)
	l.Record("summarize", "claude-sonnet-4-5", 1000, 1000)

	snap := l.Snapshot()
	assert.Equal(t, 4000, snap.TotalInputTokens)
	assert.Equal(t, 2500, snap.TotalOutputTokens)

	require.Contains(t, snap.Models, "gpt-4")
	gpt := snap.Models["gpt-4"]
	assert.Equal(t, 2, gpt.Calls)
	assert.Equal(t, 3000, gpt.InputTokens)
	assert.Equal(t, 1500, gpt.OutputTokens)
	// 3000 in at $0.03/1K plus 1500 out at $0.06/1K.
	assert.InDelta(t, 0.18, gpt.Cost, 1e-9)

	require.Contains(t, snap.Steps, "semantic_linking")
	step := snap.Steps["semantic_linking"]
	assert.Equal(t, 2, step.Calls)
	assert.Equal(t, 4500, step.TotalTokens)

	claude := snap.Models["claude-sonnet-4-5"]
	assert.InDelta(t, 0.018, claude.Cost, 1e-9)
	assert.InDelta(t, gpt.Cost+claude.Cost, snap.TotalCost, 1e-9)
}

func TestEstimateCostPrefixMatch(t *testing.T) {
	// Versioned names price as their family; gpt-4-32k-0613 must match
	// gpt-4-32k, not gpt-4.
	assert.InDelta(t, 0.03, estimateCost("gpt-4-0613", 1000, 0), 1e-9)
	assert.InDelta(t, 0.06, estimateCost("gpt-4-32k-0613", 1000, 0), 1e-9)
	assert.InDelta(t, 0.0015, estimateCost("gpt-3.5-turbo-0301", 1000, 0), 1e-9)
}

func TestEstimateCostUnknownModelIsFree(t *testing.T) {
	assert.Zero(t, estimateCost("llama3.2", 100000, 100000))
	assert.Zero(t, estimateCost("local-mistral", 1000, 1000))
}

func TestLedgerConcurrentRecords(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record("semantic_linking", "gpt-4", 10, 5)
		}()
	}
	wg.Wait()

	snap := l.Snapshot()
	assert.Equal(t, 500, snap.TotalInputTokens)
	assert.Equal(t, 250, snap.TotalOutputTokens)
	assert.Equal(t, 50, snap.Models["gpt-4"].Calls)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := NewLedger()
	l.Record("semantic_linking", "gpt-4", 10, 5)

	snap := l.Snapshot()
	snap.Models["gpt-4"] = ModelUsage{Calls: 99}

	assert.Equal(t, 1, l.Snapshot().Models["gpt-4"].Calls)
}
