// Package emit renders a page's (or a whole document's) structural
// analysis into the three output forms the pipeline's consumer needs:
// plain text, a selection-scoped rendering, and a structured
// right-to-left document package.
package emit

import (
	"regexp"
	"strings"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// placeholderRunPattern matches two or more [...] markers separated
// only by whitespace, collapsed to a single marker.
var placeholderRunPattern = regexp.MustCompile(`(?:\[\.\.\.\]\s*)+\[\.\.\.\]`)

// PlainText renders structure's paragraphs as plain text: header
// paragraph (if any) first, body paragraphs in order, then footer,
// each paragraph's words joined by spaces and separated by a blank
// line, with header/footer paragraphs prefixed by a bracketed role
// label. Runs of adjacent placeholder markers collapse to one.
func PlainText(boxes []wordbox.Box, structure wordbox.PageStructure) string {
	byLine := wordbox.GroupByLine(boxes)

	var blocks []string
	for _, p := range structure.Paragraphs {
		text := paragraphText(p, byLine)
		if text == "" {
			continue
		}
		switch p.Role {
		case wordbox.RoleHeader:
			text = "[header] " + text
		case wordbox.RoleFooter:
			text = "[footer] " + text
		}
		blocks = append(blocks, text)
	}

	out := strings.Join(blocks, "\n\n")
	return collapsePlaceholderRuns(out)
}

func paragraphText(p wordbox.Paragraph, byLine map[int][]wordbox.Box) string {
	var words []string
	for _, lineID := range p.LineIDs {
		line := append([]wordbox.Box(nil), byLine[lineID]...)
		wordbox.SortByWordNum(line)
		for _, b := range line {
			words = append(words, b.Text)
		}
	}
	return strings.Join(words, " ")
}

// collapsePlaceholderRuns replaces every run of adjacent placeholder
// markers (separated only by whitespace) with a single marker.
func collapsePlaceholderRuns(s string) string {
	return placeholderRunPattern.ReplaceAllString(s, wordbox.Placeholder)
}
