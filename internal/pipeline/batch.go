// Package pipeline orchestrates semantic linking across a batch of parsed
// documents: flatten, partition, link, and aggregate. One document's
// failure never aborts its siblings; the output always has one entry per
// input document, in input order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/julianshen/doclink/internal/document"
	"github.com/julianshen/doclink/internal/linker"
)

// SectionLinker links one section. Satisfied by *linker.Linker.
type SectionLinker interface {
	Link(ctx context.Context, section linker.Section) linker.Section
}

// ProcessingInfo records the Reasoning Service settings used for a run.
type ProcessingInfo struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// LinkedDocument is the per-document output of a run. It is created once
// and never mutated afterwards.
type LinkedDocument struct {
	OriginalPath   string            `json:"original_path"`
	Title          string            `json:"title"`
	Metadata       document.Metadata `json:"metadata"`
	LinkedSections []linker.Section  `json:"linked_sections"`
	ProcessingInfo ProcessingInfo    `json:"processing_info"`
}

// Stats summarizes a run. SuccessfulDocuments + FailedDocuments always
// equals TotalDocuments.
type Stats struct {
	TotalDocuments      int       `json:"total_documents"`
	SuccessfulDocuments int       `json:"successful_documents"`
	FailedDocuments     int       `json:"failed_documents"`
	ModelUsed           string    `json:"model_used"`
	Timestamp           time.Time `json:"timestamp"`
}

// Result is the aggregate output of one batch run.
type Result struct {
	RunID           string           `json:"run_id"`
	LinkedDocuments []LinkedDocument `json:"linked_documents"`
	Stats           Stats            `json:"stats"`
}

// Config controls the orchestrator.
type Config struct {
	Model       string
	Temperature float64
	Concurrency int // parallel document processing, default 1
}

// Orchestrator runs the per-document linking loop.
type Orchestrator struct {
	linker SectionLinker
	cfg    Config
	now    func() time.Time
}

// New creates an Orchestrator.
func New(l SectionLinker, cfg Config) *Orchestrator {
	return &Orchestrator{linker: l, cfg: cfg, now: time.Now}
}

// Run links every document. Documents are processed with bounded
// concurrency but results are written back by index, so the output order
// equals the input order and len(LinkedDocuments) == len(docs) always
// holds. A document counts as successful when at least one of its sections
// reached StatusLinked, a well-formed empty concept list included.
func (o *Orchestrator) Run(ctx context.Context, docs []*document.ParsedDocument) (*Result, error) {
	results := make([]LinkedDocument, len(docs))

	concurrency := o.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	p := pool.New().WithMaxGoroutines(concurrency)
	for i := range docs {
		i := i
		p.Go(func() {
			results[i] = o.processDocument(ctx, docs[i])
		})
	}
	p.Wait()

	stats := Stats{
		TotalDocuments: len(docs),
		ModelUsed:      o.cfg.Model,
		Timestamp:      o.now(),
	}
	for _, ld := range results {
		if documentLinked(ld) {
			stats.SuccessfulDocuments++
		}
	}
	stats.FailedDocuments = stats.TotalDocuments - stats.SuccessfulDocuments

	return &Result{
		RunID:           uuid.NewString(),
		LinkedDocuments: results,
		Stats:           stats,
	}, nil
}

// processDocument flattens, partitions, and links one document. Any panic
// is contained here: the substitute entry carries the document unlinked so
// the batch continues with its index intact.
func (o *Orchestrator) processDocument(ctx context.Context, doc *document.ParsedDocument) (out LinkedDocument) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("path", doc.FilePath).
				Interface("panic", r).
				Msg("document processing failed, substituting unlinked document")
			out = o.substitute(doc)
		}
	}()

	sections := linker.Partition(linker.Flatten(doc))
	for i := range sections {
		sections[i] = o.linker.Link(ctx, sections[i])
	}

	return LinkedDocument{
		OriginalPath:   doc.FilePath,
		Title:          doc.Title,
		Metadata:       doc.Metadata,
		LinkedSections: sections,
		ProcessingInfo: o.processingInfo(),
	}
}

// substitute builds the unlinked stand-in for a failed document: its
// partition shape when the document can still be partitioned, empty
// otherwise.
func (o *Orchestrator) substitute(doc *document.ParsedDocument) LinkedDocument {
	var sections []linker.Section
	func() {
		defer func() { _ = recover() }()
		sections = linker.Partition(linker.Flatten(doc))
	}()

	return LinkedDocument{
		OriginalPath:   doc.FilePath,
		Title:          doc.Title,
		Metadata:       doc.Metadata,
		LinkedSections: sections,
		ProcessingInfo: o.processingInfo(),
	}
}

func (o *Orchestrator) processingInfo() ProcessingInfo {
	return ProcessingInfo{Model: o.cfg.Model, Temperature: o.cfg.Temperature}
}

// documentLinked reports whether a document reached at least one linked
// section.
func documentLinked(ld LinkedDocument) bool {
	for _, s := range ld.LinkedSections {
		if s.Status == linker.StatusLinked {
			return true
		}
	}
	return false
}

// Describe renders a one-line human summary of a run's stats.
func (s Stats) Describe() string {
	return fmt.Sprintf("%d documents: %d linked, %d failed (model %s)",
		s.TotalDocuments, s.SuccessfulDocuments, s.FailedDocuments, s.ModelUsed)
}
