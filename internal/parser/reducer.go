package parser

import "github.com/julianshen/doclink/internal/document"

// Tag kinds produced by the format translators and consumed by Reduce.
const (
	TagHeading   = "heading"
	TagParagraph = "paragraph"
	TagCode      = "code"
)

// Tag is one typed block in the flat, ordered stream a translator emits
// for a document.
type Tag struct {
	Kind     string
	Level    int    // heading depth 1..6, heading tags only
	Text     string // heading text or paragraph text
	Language string // code tags only, "" means undetermined
	Code     string // code tags only
	Line     int    // 1-based start line in the source, 0 if untracked
	EndLine  int    // 1-based end line, 0 if untracked
}

// Reduce folds an ordered tag stream into a section forest. Headings open
// sections; paragraph and code tags attach to the innermost open section.
// Nesting uses a stack of open ancestors: an incoming heading pops every
// open section whose level is >= its own, so skip-level sequences such as
// H1, H3, H2 attach the H2 under the H1 rather than under the H3.
//
// Content that arrives before any heading attaches to a synthetic root
// section with an empty title and level 0. Unknown tag kinds are ignored.
// Reduce never fails.
func Reduce(tags []Tag) []*document.Section {
	var top []*document.Section
	var stack []*document.Section
	lastLine := 0

	closeTo := func(depth int) {
		for len(stack) > depth {
			stack[len(stack)-1].EndLine = lastLine
			stack = stack[:len(stack)-1]
		}
	}

	current := func() *document.Section {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	advance := func(tag Tag) {
		if tag.EndLine > lastLine {
			lastLine = tag.EndLine
		} else if tag.Line > lastLine {
			lastLine = tag.Line
		}
	}

	for _, tag := range tags {
		switch tag.Kind {
		case TagHeading:
			sec := document.NewSection(tag.Text, tag.Level)
			sec.StartLine = tag.Line

			// Pop open sections at the same or a deeper level. They end
			// at the last line seen before this heading.
			depth := len(stack)
			for depth > 0 && stack[depth-1].Level >= tag.Level {
				depth--
			}
			closeTo(depth)
			advance(tag)

			if parent := current(); parent != nil {
				parent.Subsections = append(parent.Subsections, sec)
			} else {
				top = append(top, sec)
			}
			stack = append(stack, sec)

		case TagParagraph:
			advance(tag)
			sec := current()
			if sec == nil {
				sec = syntheticRoot(&top, &stack, tag.Line)
			}
			sec.AppendContent(tag.Text)

		case TagCode:
			advance(tag)
			sec := current()
			if sec == nil {
				sec = syntheticRoot(&top, &stack, tag.Line)
			}
			lang := tag.Language
			if lang == "" {
				lang = "text"
			}
			sec.CodeBlocks = append(sec.CodeBlocks, document.CodeBlock{
				Language: lang,
				Code:     tag.Code,
			})
		}
	}

	closeTo(0)
	return top
}

// syntheticRoot opens a level-0 section to hold content that precedes the
// first heading of a document.
func syntheticRoot(top *[]*document.Section, stack *[]*document.Section, line int) *document.Section {
	sec := document.NewSection("", 0)
	sec.StartLine = line
	*top = append(*top, sec)
	*stack = append(*stack, sec)
	return sec
}
