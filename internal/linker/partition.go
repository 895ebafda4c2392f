package linker

// Partition groups an ordered content-item stream into link sections in a
// single pass. A text item flushes the accumulator only when the
// accumulator already holds both text and code; code items accumulate and
// never flush. The trailing accumulator is emitted if it holds anything,
// so concatenating the output reproduces the input stream exactly.
//
// A "text, code, text" run therefore stays split as {text, code} plus a
// trailing text-only group: new text arriving after a complete pair
// signals a fresh explanation.
func Partition(items []ContentItem) []Section {
	var sections []Section
	acc := Section{Status: StatusPending}

	flush := func() {
		if len(acc.Text) > 0 || len(acc.Code) > 0 {
			sections = append(sections, acc)
			acc = Section{Status: StatusPending}
		}
	}

	for _, item := range items {
		switch item.Type {
		case "text":
			if len(acc.Text) > 0 && len(acc.Code) > 0 {
				flush()
			}
			acc.Text = append(acc.Text, item.Content)
		case "code":
			lang := item.Language
			if lang == "" {
				lang = "text"
			}
			acc.Code = append(acc.Code, CodeRef{
				Content:  item.Content,
				Language: lang,
			})
		}
	}
	flush()

	return sections
}
