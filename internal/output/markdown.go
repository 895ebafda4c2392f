package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianshen/doclink/internal/linker"
)

// MarkdownFormatter outputs a Report as a human-readable Markdown summary.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the Report as Markdown: run statistics, a per-document
// table, and token usage broken down by model and by pipeline step.
func (f *MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	res := report.Result

	b.WriteString("# Semantic Linking Report\n\n")
	fmt.Fprintf(&b, "Run `%s` with model `%s` at %s.\n\n",
		res.RunID, res.Stats.ModelUsed, res.Stats.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Documents: %d\n", res.Stats.TotalDocuments)
	fmt.Fprintf(&b, "- Successful: %d\n", res.Stats.SuccessfulDocuments)
	fmt.Fprintf(&b, "- Failed: %d\n", res.Stats.FailedDocuments)

	b.WriteString("\n## Documents\n\n")
	b.WriteString("| Document | Sections | Linked | Skipped | Failed | Concepts |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, doc := range res.LinkedDocuments {
		var linked, skipped, failed, concepts int
		for _, sec := range doc.LinkedSections {
			switch sec.Status {
			case linker.StatusLinked:
				linked++
			case linker.StatusSkipped:
				skipped++
			case linker.StatusFailed:
				failed++
			}
			if sec.Links != nil {
				concepts += len(sec.Links.Concepts)
			}
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d |\n",
			doc.OriginalPath, len(doc.LinkedSections), linked, skipped, failed, concepts)
	}

	b.WriteString("\n## Token Usage\n\n")
	fmt.Fprintf(&b, "Total: %d input, %d output, $%.4f estimated.\n\n",
		report.Usage.TotalInputTokens, report.Usage.TotalOutputTokens, report.Usage.TotalCost)

	if len(report.Usage.Models) > 0 {
		b.WriteString("| Model | Calls | Input | Output | Cost |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, name := range sortedKeys(report.Usage.Models) {
			m := report.Usage.Models[name]
			fmt.Fprintf(&b, "| %s | %d | %d | %d | $%.4f |\n",
				name, m.Calls, m.InputTokens, m.OutputTokens, m.Cost)
		}
		b.WriteString("\n")
	}

	if len(report.Usage.Steps) > 0 {
		b.WriteString("| Step | Calls | Tokens | Cost |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, name := range sortedKeys(report.Usage.Steps) {
			s := report.Usage.Steps[name]
			fmt.Fprintf(&b, "| %s | %d | %d | $%.4f |\n", name, s.Calls, s.TotalTokens, s.Cost)
		}
	}

	return []byte(b.String()), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
