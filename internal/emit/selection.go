package emit

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// minMarginWordLetters is the minimum count of Hebrew/Latin letters a
// margin-flagged word must have to survive into the margin section.
const minMarginWordLetters = 2

// Selection renders a user-selected set of boxes: main-column boxes
// grouped into paragraphs by lineId/1000, ordered by first-line lineId,
// each paragraph rendered as space-joined words; margin-flagged boxes
// render afterward as a separate "[margin]" section with short
// (fewer than two letters) words suppressed.
func Selection(selected []wordbox.Box) string {
	var main, margin []wordbox.Box
	for _, b := range selected {
		if b.IsMargin {
			margin = append(margin, b)
		} else {
			main = append(main, b)
		}
	}

	mainText := renderSelectionParagraphs(main)
	marginText := renderMarginSection(margin)

	if marginText == "" {
		return mainText
	}
	if mainText == "" {
		return "[margin]\n\n" + marginText
	}
	return mainText + "\n\n[margin]\n\n" + marginText
}

// MarginText renders boxes (expected to all be margin-flagged) as a
// page's margin side column: grouped by lineId, sorted by wordNum,
// words with fewer than two Hebrew/Latin letters suppressed. Shared by
// Selection's "[margin]" section and C9's document serializer.
func MarginText(boxes []wordbox.Box) string {
	return renderMarginSection(boxes)
}

func renderSelectionParagraphs(boxes []wordbox.Box) string {
	byLine := wordbox.GroupByLine(boxes)

	type paragraph struct {
		paraID       int
		firstLineID  int
		lines        []int
	}
	byParagraph := make(map[int]*paragraph)
	for lineID := range byLine {
		paraID := wordbox.ParagraphID(lineID)
		p, ok := byParagraph[paraID]
		if !ok {
			p = &paragraph{paraID: paraID, firstLineID: lineID}
			byParagraph[paraID] = p
		} else if lineID < p.firstLineID {
			p.firstLineID = lineID
		}
		p.lines = append(p.lines, lineID)
	}

	paragraphs := make([]*paragraph, 0, len(byParagraph))
	for _, p := range byParagraph {
		paragraphs = append(paragraphs, p)
	}
	sort.Slice(paragraphs, func(i, j int) bool {
		return paragraphs[i].firstLineID < paragraphs[j].firstLineID
	})

	var blocks []string
	for _, p := range paragraphs {
		sort.Ints(p.lines)
		var words []string
		for _, lineID := range p.lines {
			line := append([]wordbox.Box(nil), byLine[lineID]...)
			wordbox.SortByWordNum(line)
			for _, b := range line {
				words = append(words, b.Text)
			}
		}
		blocks = append(blocks, strings.Join(words, " "))
	}
	return strings.Join(blocks, "\n\n")
}

func renderMarginSection(boxes []wordbox.Box) string {
	byLine := wordbox.GroupByLine(boxes)
	lineIDs := make([]int, 0, len(byLine))
	for id := range byLine {
		lineIDs = append(lineIDs, id)
	}
	sort.Ints(lineIDs)

	var words []string
	for _, lineID := range lineIDs {
		line := append([]wordbox.Box(nil), byLine[lineID]...)
		wordbox.SortByWordNum(line)
		for _, b := range line {
			if letterCount(b.Text) < minMarginWordLetters {
				continue
			}
			words = append(words, b.Text)
		}
	}
	return strings.Join(words, " ")
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 0x0590 && r <= 0x05FF) || unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
