// Package parser turns raw documentation files into structured
// ParsedDocuments: a format registry dispatches by file extension to a
// translator that emits a flat block-tag stream, which Reduce folds into a
// section forest. Only markdown is fully implemented; other recognized
// formats fail fast with ErrUnsupportedFormat.
package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/julianshen/doclink/internal/document"
)

// ErrUnsupportedFormat is returned for extensions without a full parser
// implementation. Callers treat it as a per-file skip, never a batch abort.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// translateFunc converts raw content into a ParsedDocument.
type translateFunc func(p *Parser, content []byte, path string) (*document.ParsedDocument, error)

// registry maps file extensions to format translators. Stubbed formats are
// registered so that their rejection is explicit rather than an unknown
// extension.
var registry = map[string]translateFunc{
	".md":       (*Parser).parseMarkdown,
	".markdown": (*Parser).parseMarkdown,
	".mdx":      (*Parser).parseMarkdown,
	".rst":      unsupported(document.FileTypeRST),
	".txt":      unsupported(document.FileTypeText),
	".html":     unsupported(document.FileTypeHTML),
	".htm":      unsupported(document.FileTypeHTML),
}

func unsupported(ft document.FileType) translateFunc {
	return func(_ *Parser, _ []byte, path string) (*document.ParsedDocument, error) {
		return nil, fmt.Errorf("%s (%s): %w", path, ft, ErrUnsupportedFormat)
	}
}

// Parser parses documentation files with format auto-detection from the
// file extension. The zero value is not usable; call New.
type Parser struct {
	markdown *markdownTranslator
	now      func() time.Time
}

// New creates a Parser.
func New() *Parser {
	return &Parser{
		markdown: newMarkdownTranslator(),
		now:      time.Now,
	}
}

// Parse parses raw content as the format indicated by path's extension.
// Unknown and stubbed extensions return an error wrapping
// ErrUnsupportedFormat.
func (p *Parser) Parse(content []byte, path string) (*document.ParsedDocument, error) {
	ext := strings.ToLower(filepath.Ext(path))
	translate, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w", path, ext, ErrUnsupportedFormat)
	}
	return translate(p, content, path)
}

// ParseFile reads and parses the file at path.
func (p *Parser) ParseFile(path string) (*document.ParsedDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Parse(content, path)
}

// ParseAll parses every file in paths, in order. Files that fail to read or
// parse are logged and skipped; the returned slice holds only the documents
// that parsed.
func (p *Parser) ParseAll(paths []string) []*document.ParsedDocument {
	docs := make([]*document.ParsedDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := p.ParseFile(path)
		if err != nil {
			if errors.Is(err, ErrUnsupportedFormat) {
				log.Warn().Str("path", path).Msg("skipping unsupported document format")
			} else {
				log.Error().Err(err).Str("path", path).Msg("skipping unreadable document")
			}
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// parseMarkdown is the full markdown implementation: frontmatter split,
// goldmark translation into a tag stream, section reduction, and metadata
// computation.
func (p *Parser) parseMarkdown(content []byte, path string) (*document.ParsedDocument, error) {
	raw := string(content)

	frontmatter, body, lineOffset, _, fmErr := splitFrontmatter(raw)
	if fmErr != nil {
		// A malformed frontmatter block never fails the document.
		log.Warn().Err(fmErr).Str("path", path).Msg("ignoring malformed frontmatter")
		frontmatter = nil
	}

	tags, html, err := p.markdown.Translate([]byte(body), lineOffset)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", path, err)
	}

	sections := Reduce(tags)

	headings, codeBlocks := 0, 0
	for _, tag := range tags {
		switch tag.Kind {
		case TagHeading:
			headings++
		case TagCode:
			codeBlocks++
		}
	}

	hash := sha256.Sum256(content)

	return &document.ParsedDocument{
		FilePath: path,
		FileType: document.FileTypeMarkdown,
		Title:    documentTitle(tags, path),
		Sections: sections,
		Metadata: document.Metadata{
			WordCount:      len(strings.Fields(raw)),
			CharCount:      len(raw),
			HeadingCount:   headings,
			CodeBlockCount: codeBlocks,
			ProcessedAt:    p.now(),
			Frontmatter:    frontmatter,
		},
		ContentHash:      hex.EncodeToString(hash[:]),
		RawContent:       raw,
		ProcessedContent: html,
	}, nil
}

// documentTitle resolves a document title: the first level-1 heading,
// else the humanized file name.
func documentTitle(tags []Tag, path string) string {
	for _, tag := range tags {
		if tag.Kind == TagHeading && tag.Level == 1 {
			return strings.TrimSpace(tag.Text)
		}
	}
	return document.HumanizeFilename(path)
}
