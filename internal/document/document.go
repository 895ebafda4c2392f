// Package document defines the parsed representation of a documentation
// file: a forest of heading-delimited sections with extracted code blocks
// and document-level metadata.
package document

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// FileType identifies the source format of a parsed document.
type FileType string

// Supported file types. Only markdown has a full parser implementation;
// the others are recognized but rejected as unsupported.
const (
	FileTypeMarkdown FileType = "markdown"
	FileTypeRST      FileType = "rst"
	FileTypeText     FileType = "text"
	FileTypeHTML     FileType = "html"
)

// CodeBlock is a fenced or indented code block extracted from a section.
type CodeBlock struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Section is a node in the document's heading-delimited content tree.
// Subsections always have a strictly greater level than their parent.
type Section struct {
	Title       string         `json:"title"`
	Level       int            `json:"level"`
	Content     string         `json:"content"`
	CodeBlocks  []CodeBlock    `json:"code_blocks"`
	Subsections []*Section     `json:"subsections"`
	Metadata    map[string]any `json:"metadata"`
	StartLine   int            `json:"start_line"`
	EndLine     int            `json:"end_line"`
}

// NewSection creates a Section with empty content and metadata.
func NewSection(title string, level int) *Section {
	return &Section{
		Title:    title,
		Level:    level,
		Metadata: map[string]any{},
	}
}

// AppendContent appends a prose block to the section's content,
// newline-joining consecutive blocks.
func (s *Section) AppendContent(text string) {
	if text == "" {
		return
	}
	if s.Content != "" {
		s.Content += "\n"
	}
	s.Content += text
}

// Metadata holds document-level statistics and optional frontmatter.
// Frontmatter is nil when the document has none or when its YAML failed
// to parse.
type Metadata struct {
	WordCount      int            `json:"word_count"`
	CharCount      int            `json:"char_count"`
	HeadingCount   int            `json:"heading_count"`
	CodeBlockCount int            `json:"code_block_count"`
	ProcessedAt    time.Time      `json:"processed_at"`
	Frontmatter    map[string]any `json:"frontmatter,omitempty"`
}

// ParsedDocument is the immutable result of parsing one documentation file.
type ParsedDocument struct {
	FilePath         string     `json:"file_path"`
	FileType         FileType   `json:"file_type"`
	Title            string     `json:"title"`
	Sections         []*Section `json:"sections"`
	Metadata         Metadata   `json:"metadata"`
	ContentHash      string     `json:"content_hash"`
	RawContent       string     `json:"-"`
	ProcessedContent string     `json:"-"`
}

// HumanizeFilename derives a display title from a file path: the base name
// without extension, underscores and hyphens replaced by spaces, title-cased.
func HumanizeFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")

	words := strings.Fields(base)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
