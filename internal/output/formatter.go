// Package output turns a linking run into serialized reports.
package output

import (
	"fmt"

	"github.com/julianshen/doclink/internal/pipeline"
	"github.com/julianshen/doclink/internal/usage"
)

// Report bundles everything a run produces for formatting.
type Report struct {
	Result *pipeline.Result `json:"result"`
	Usage  usage.Snapshot   `json:"usage"`
}

// Formatter formats a Report into output bytes.
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// NewFormatter returns the formatter for the named format.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "json", "":
		return NewJSONFormatter(), nil
	case "markdown", "md":
		return NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}
