// Package linker partitions a parsed document's content into contiguous
// prose/code groups and drives one Reasoning Service call per group to
// produce concept-level links between the explanation and the code it
// describes. Failures are isolated per group: a failed call leaves the
// group unlinked and never aborts sibling groups or the document.
package linker

import "github.com/julianshen/doclink/internal/document"

// LinkStatus distinguishes "linking not attempted" from "attempted but
// failed" from "linked" on a Section, so counters never have to infer
// state from field presence.
type LinkStatus string

const (
	// StatusPending marks a section the linker has not seen yet.
	StatusPending LinkStatus = "pending"
	// StatusSkipped marks a text-only or code-only section; linking is
	// never attempted for these and no service cost is incurred.
	StatusSkipped LinkStatus = "skipped"
	// StatusFailed marks a section whose Reasoning Service call failed.
	StatusFailed LinkStatus = "failed"
	// StatusLinked marks a section with a well-formed service response,
	// including an empty concept list.
	StatusLinked LinkStatus = "linked"
)

// CodeRef is one code block inside a link section.
type CodeRef struct {
	Content  string         `json:"content"`
	Language string         `json:"language"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Section is a contiguous group of prose and code, the unit of semantic
// linking. It is distinct from document.Section: a document section's
// content items may span several link sections and vice versa.
type Section struct {
	Text       []string       `json:"text"`
	Code       []CodeRef      `json:"code"`
	Status     LinkStatus     `json:"link_status"`
	FailReason string         `json:"fail_reason,omitempty"`
	Links      *SemanticLinks `json:"semantic_links,omitempty"`
}

// SemanticLinks is the parsed payload of one Reasoning Service response.
type SemanticLinks struct {
	Concepts []Concept `json:"concepts"`
}

// Concept is one text-to-code association produced by the Reasoning
// Service.
type Concept struct {
	Name           string          `json:"name"`
	TextReferences []string        `json:"text_references"`
	CodeReferences []string        `json:"code_references"`
	Explanation    string          `json:"explanation"`
	Metadata       ConceptMetadata `json:"metadata"`
}

// ConceptMetadata qualifies a concept.
type ConceptMetadata struct {
	Confidence float64 `json:"confidence"`
	Type       string  `json:"type"` // implementation, example, reference
}

// ContentItem is one ordered unit of a flattened document: either prose or
// a code block.
type ContentItem struct {
	Type     string // "text" or "code"
	Content  string
	Language string
}

// Flatten walks a parsed document's section forest depth-first and emits
// the ordered content-item stream the partitioner consumes: each section's
// prose, then its code blocks, then its subsections.
func Flatten(doc *document.ParsedDocument) []ContentItem {
	var items []ContentItem
	var walk func(sections []*document.Section)
	walk = func(sections []*document.Section) {
		for _, sec := range sections {
			if sec.Content != "" {
				items = append(items, ContentItem{Type: "text", Content: sec.Content})
			}
			for _, cb := range sec.CodeBlocks {
				items = append(items, ContentItem{
					Type:     "code",
					Content:  cb.Code,
					Language: cb.Language,
				})
			}
			walk(sec.Subsections)
		}
	}
	walk(doc.Sections)
	return items
}
