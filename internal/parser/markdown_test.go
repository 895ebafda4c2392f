package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateBasicDocument(t *testing.T) {
	src := []byte("# Title\n\nPara text.\n\n```go\nfmt.Println(1)\n```\n")

	tags, html, err := newMarkdownTranslator().Translate(src, 0)
	require.NoError(t, err)
	require.Len(t, tags, 3)

	assert.Equal(t, TagHeading, tags[0].Kind)
	assert.Equal(t, 1, tags[0].Level)
	assert.Equal(t, "Title", tags[0].Text)
	assert.Equal(t, 1, tags[0].Line)

	assert.Equal(t, TagParagraph, tags[1].Kind)
	assert.Equal(t, "Para text.", tags[1].Text)
	assert.Equal(t, 3, tags[1].Line)

	assert.Equal(t, TagCode, tags[2].Kind)
	assert.Equal(t, "go", tags[2].Language)
	assert.Equal(t, "fmt.Println(1)", tags[2].Code)
	assert.Equal(t, 6, tags[2].Line)

	assert.Contains(t, html, "<h1>Title</h1>")
	assert.Contains(t, html, "<pre>")
}

func TestTranslateSoftLineBreaks(t *testing.T) {
	src := []byte("first line\nsecond line\n")

	tags, _, err := newMarkdownTranslator().Translate(src, 0)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "first line second line", tags[0].Text)
}

func TestTranslateIndentedCodeBlock(t *testing.T) {
	src := []byte("# T\n\n    indented code\n")

	tags, _, err := newMarkdownTranslator().Translate(src, 0)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, TagCode, tags[1].Kind)
	assert.Equal(t, "", tags[1].Language)
	assert.Equal(t, "indented code", tags[1].Code)
}

func TestTranslateFlattensTables(t *testing.T) {
	src := []byte("| Name | Type |\n|---|---|\n| id | int |\n| body | string |\n")

	tags, _, err := newMarkdownTranslator().Translate(src, 0)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, TagParagraph, tags[0].Kind)
	assert.Equal(t, "Name | Type\nid | int\nbody | string", tags[0].Text)
}

func TestTranslateLineOffset(t *testing.T) {
	tags, _, err := newMarkdownTranslator().Translate([]byte("# T\n"), 3)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 4, tags[0].Line)
}

func TestSplitFrontmatter(t *testing.T) {
	fm, body, offset, hadBlock, err := splitFrontmatter("---\ntitle: X\n---\n# Title\nBody\n")
	require.NoError(t, err)
	assert.True(t, hadBlock)
	assert.Equal(t, map[string]any{"title": "X"}, fm)
	assert.Equal(t, "# Title\nBody\n", body)
	assert.Equal(t, 3, offset)
}

func TestSplitFrontmatterAbsent(t *testing.T) {
	raw := "# Title\nBody\n"
	fm, body, offset, hadBlock, err := splitFrontmatter(raw)
	require.NoError(t, err)
	assert.False(t, hadBlock)
	assert.Nil(t, fm)
	assert.Equal(t, raw, body)
	assert.Zero(t, offset)
}

func TestSplitFrontmatterBareThematicBreak(t *testing.T) {
	// A document that is exactly "---" is a thematic break, not an
	// opening delimiter, and must pass through untouched.
	for _, raw := range []string{"---", "---\n", "--- \ntext\n"} {
		fm, body, offset, hadBlock, err := splitFrontmatter(raw)
		require.NoError(t, err, raw)
		assert.False(t, hadBlock, raw)
		assert.Nil(t, fm, raw)
		assert.Equal(t, raw, body, raw)
		assert.Zero(t, offset, raw)
	}
}

func TestSplitFrontmatterClosingDelimiterAtEOF(t *testing.T) {
	fm, body, offset, hadBlock, err := splitFrontmatter("---\ntitle: X\n---")
	require.NoError(t, err)
	assert.True(t, hadBlock)
	assert.Equal(t, map[string]any{"title": "X"}, fm)
	assert.Empty(t, body)
	assert.Equal(t, 3, offset)
}

func TestSplitFrontmatterRequiresWholeLineDelimiter(t *testing.T) {
	// A "----" rule merely starts with the delimiter and must not close
	// the block.
	raw := "---\ntitle: X\n----\nBody\n"
	_, body, _, hadBlock, err := splitFrontmatter(raw)
	require.NoError(t, err)
	assert.False(t, hadBlock)
	assert.Equal(t, raw, body)
}

func TestSplitFrontmatterUnterminated(t *testing.T) {
	raw := "---\ntitle: X\nno closing delimiter\n"
	_, body, _, hadBlock, err := splitFrontmatter(raw)
	require.NoError(t, err)
	assert.False(t, hadBlock)
	assert.Equal(t, raw, body)
}

func TestSplitFrontmatterMalformedYAML(t *testing.T) {
	// The block is stripped from the body even when its YAML is invalid.
	fm, body, offset, hadBlock, err := splitFrontmatter("---\nfoo: [unclosed\n---\nBody\n")
	require.Error(t, err)
	assert.True(t, hadBlock)
	assert.Nil(t, fm)
	assert.Equal(t, "Body\n", body)
	assert.Equal(t, 3, offset)
}
