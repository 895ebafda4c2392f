package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/doclink/internal/document"
	"github.com/julianshen/doclink/internal/linker"
)

// stubLinker marks sections linked, failed, or panics, keyed by the text
// content of the section it receives.
type stubLinker struct {
	failOn  string
	panicOn string
}

func (s *stubLinker) Link(_ context.Context, sec linker.Section) linker.Section {
	joined := strings.Join(sec.Text, "\n")
	if s.panicOn != "" && strings.Contains(joined, s.panicOn) {
		panic("boom")
	}
	if s.failOn != "" && strings.Contains(joined, s.failOn) {
		sec.Status = linker.StatusFailed
		sec.FailReason = "stubbed failure"
		return sec
	}
	if len(sec.Text) == 0 || len(sec.Code) == 0 {
		sec.Status = linker.StatusSkipped
		return sec
	}
	sec.Status = linker.StatusLinked
	sec.Links = &linker.SemanticLinks{Concepts: []linker.Concept{}}
	return sec
}

func testDoc(path, text string) *document.ParsedDocument {
	return &document.ParsedDocument{
		FilePath: path,
		Title:    document.HumanizeFilename(path),
		Sections: []*document.Section{
			{
				Title:      "Section",
				Level:      1,
				Content:    text,
				CodeBlocks: []document.CodeBlock{{Language: "go", Code: "x := 1"}},
			},
		},
	}
}

func TestRunOnePerInputInOrder(t *testing.T) {
	docs := []*document.ParsedDocument{
		testDoc("a.md", "alpha text"),
		testDoc("b.md", "beta text"),
		testDoc("c.md", "gamma text"),
	}
	o := New(&stubLinker{}, Config{Model: "gpt-4", Concurrency: 3})

	result, err := o.Run(context.Background(), docs)
	require.NoError(t, err)

	require.Len(t, result.LinkedDocuments, len(docs))
	for i, doc := range docs {
		assert.Equal(t, doc.FilePath, result.LinkedDocuments[i].OriginalPath)
	}
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "gpt-4", result.Stats.ModelUsed)
	assert.False(t, result.Stats.Timestamp.IsZero())
}

func TestRunStatsAlwaysBalance(t *testing.T) {
	docs := []*document.ParsedDocument{
		testDoc("ok.md", "fine"),
		testDoc("bad.md", "explode"),
		testDoc("worse.md", "fails"),
	}
	o := New(&stubLinker{failOn: "fails", panicOn: "explode"}, Config{})

	result, err := o.Run(context.Background(), docs)
	require.NoError(t, err)

	stats := result.Stats
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 1, stats.SuccessfulDocuments)
	assert.Equal(t, 2, stats.FailedDocuments)
	assert.Equal(t, stats.TotalDocuments, stats.SuccessfulDocuments+stats.FailedDocuments)
}

func TestRunPanicIsolatedToOneDocument(t *testing.T) {
	docs := []*document.ParsedDocument{
		testDoc("first.md", "fine"),
		testDoc("panics.md", "explode"),
		testDoc("last.md", "also fine"),
	}
	o := New(&stubLinker{panicOn: "explode"}, Config{Concurrency: 2})

	result, err := o.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, result.LinkedDocuments, 3)

	// The panicking document still occupies its slot, unlinked.
	substituted := result.LinkedDocuments[1]
	assert.Equal(t, "panics.md", substituted.OriginalPath)
	require.Len(t, substituted.LinkedSections, 1)
	assert.Equal(t, linker.StatusPending, substituted.LinkedSections[0].Status)
	assert.Nil(t, substituted.LinkedSections[0].Links)

	assert.NotEmpty(t, result.LinkedDocuments[0].LinkedSections)
	assert.NotEmpty(t, result.LinkedDocuments[2].LinkedSections)
	assert.Equal(t, 2, result.Stats.SuccessfulDocuments)
}

func TestRunSuccessNeedsOneLinkedSection(t *testing.T) {
	// All sections failing means the document failed, even though it
	// produced section entries.
	docs := []*document.ParsedDocument{testDoc("only.md", "fails")}
	o := New(&stubLinker{failOn: "fails"}, Config{})

	result, err := o.Run(context.Background(), docs)
	require.NoError(t, err)

	require.Len(t, result.LinkedDocuments, 1)
	assert.NotEmpty(t, result.LinkedDocuments[0].LinkedSections)
	assert.Equal(t, 0, result.Stats.SuccessfulDocuments)
	assert.Equal(t, 1, result.Stats.FailedDocuments)
}

func TestRunEmptyBatch(t *testing.T) {
	o := New(&stubLinker{}, Config{})

	result, err := o.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.LinkedDocuments)
	assert.Zero(t, result.Stats.TotalDocuments)
}

func TestRunCarriesProcessingInfo(t *testing.T) {
	o := New(&stubLinker{}, Config{Model: "claude-sonnet-4-5", Temperature: 0.2})

	result, err := o.Run(context.Background(), []*document.ParsedDocument{testDoc("a.md", "text")})
	require.NoError(t, err)

	info := result.LinkedDocuments[0].ProcessingInfo
	assert.Equal(t, "claude-sonnet-4-5", info.Model)
	assert.InDelta(t, 0.2, info.Temperature, 1e-9)
}

func TestStatsDescribe(t *testing.T) {
	s := Stats{TotalDocuments: 3, SuccessfulDocuments: 2, FailedDocuments: 1, ModelUsed: "gpt-4"}
	assert.Equal(t, "3 documents: 2 linked, 1 failed (model gpt-4)", s.Describe())
}
