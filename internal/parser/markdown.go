package parser

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// markdownTranslator converts markdown source into the flat tag stream
// expected by Reduce, using goldmark's block AST. Tables are flattened
// into paragraph text.
type markdownTranslator struct {
	md goldmark.Markdown
}

func newMarkdownTranslator() *markdownTranslator {
	return &markdownTranslator{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Translate parses source markdown into a tag stream and its rendered HTML
// form. lineOffset shifts reported line numbers, used when a frontmatter
// block was stripped ahead of the markdown body.
func (t *markdownTranslator) Translate(source []byte, lineOffset int) ([]Tag, string, error) {
	reader := text.NewReader(source)
	root := t.md.Parser().Parse(reader)

	lines := lineIndex(source)
	var tags []Tag

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			start, end := nodeLines(n, lines, lineOffset)
			tags = append(tags, Tag{
				Kind:    TagHeading,
				Level:   node.Level,
				Text:    strings.TrimSpace(nodeText(n, source)),
				Line:    start,
				EndLine: end,
			})
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			start, end := nodeLines(n, lines, lineOffset)
			lang := ""
			if l := node.Language(source); l != nil {
				lang = string(l)
			}
			tags = append(tags, Tag{
				Kind:     TagCode,
				Language: lang,
				Code:     blockText(n, source),
				Line:     start,
				EndLine:  end,
			})
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			start, end := nodeLines(n, lines, lineOffset)
			tags = append(tags, Tag{
				Kind:    TagCode,
				Code:    blockText(n, source),
				Line:    start,
				EndLine: end,
			})
			return ast.WalkSkipChildren, nil

		case *extast.Table:
			start, end := nodeLines(n, lines, lineOffset)
			if flat := flattenTable(node, source); flat != "" {
				tags = append(tags, Tag{
					Kind:    TagParagraph,
					Text:    flat,
					Line:    start,
					EndLine: end,
				})
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			start, end := nodeLines(n, lines, lineOffset)
			if txt := strings.TrimSpace(nodeText(n, source)); txt != "" {
				tags = append(tags, Tag{
					Kind:    TagParagraph,
					Text:    txt,
					Line:    start,
					EndLine: end,
				})
			}
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("walking markdown AST: %w", err)
	}

	var html bytes.Buffer
	if err := t.md.Convert(source, &html); err != nil {
		return nil, "", fmt.Errorf("rendering markdown: %w", err)
	}

	return tags, html.String(), nil
}

// splitFrontmatter splits a leading "---" delimited YAML block from the
// document body. hadBlock reports whether delimiters were found at all;
// err is non-nil when the enclosed YAML failed to parse, in which case the
// block is still stripped from the body. A document that is just "---"
// (or opens with "---" on its only line) has no frontmatter, only a
// thematic break.
func splitFrontmatter(raw string) (fm map[string]any, body string, bodyLineOffset int, hadBlock bool, err error) {
	const delimiter = "---"
	if !strings.HasPrefix(raw, delimiter+"\n") {
		return nil, raw, 0, false, nil
	}

	// The closing delimiter must be a whole "---" line, either followed
	// by a newline or ending the document.
	rest := raw[len(delimiter)+1:]
	var yamlBlock string
	if idx := strings.Index(rest, "\n"+delimiter+"\n"); idx >= 0 {
		yamlBlock = rest[:idx]
		body = rest[idx+len(delimiter)+2:]
	} else if strings.HasSuffix(rest, "\n"+delimiter) {
		yamlBlock = rest[:len(rest)-len(delimiter)-1]
		body = ""
	} else {
		return nil, raw, 0, false, nil
	}

	// Opening delimiter line, YAML lines, closing delimiter line.
	bodyLineOffset = 2 + strings.Count(yamlBlock, "\n") + 1

	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		return nil, body, bodyLineOffset, true, fmt.Errorf("parse frontmatter YAML: %w", err)
	}
	return fm, body, bodyLineOffset, true, nil
}

// lineIndex returns the byte offset of the start of each line.
func lineIndex(source []byte) []int {
	offsets := []int{0}
	for i, b := range source {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// lineOf converts a byte offset to a 1-based line number.
func lineOf(offsets []int, off int) int {
	return sort.Search(len(offsets), func(i int) bool { return offsets[i] > off })
}

// nodeLines returns the 1-based start and end lines of a block node's
// source segments, or zeros when the node has no recorded lines.
func nodeLines(n ast.Node, offsets []int, lineOffset int) (int, int) {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0, 0
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	return lineOf(offsets, first.Start) + lineOffset, lineOf(offsets, last.Stop-1) + lineOffset
}

// nodeText collects the plain text of a node's inline descendants,
// dropping markup syntax.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.AutoLink:
			b.Write(t.URL(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// blockText concatenates a code block's source line segments, without the
// trailing newline.
func blockText(n ast.Node, source []byte) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}

// flattenTable reduces a GFM table to plain paragraph text: cells joined by
// " | " within a row, rows joined by newlines.
func flattenTable(table *extast.Table, source []byte) string {
	var rows []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(nodeText(cell, source)))
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	return strings.Join(rows, "\n")
}
