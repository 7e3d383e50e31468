// Package assembler removes repeating watermark/stamp paragraphs
// across the pages of one export by detecting Hebrew-signature
// paragraphs that recur on more than half the pages.
package assembler

import (
	"strings"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// minPagesToRun is the minimum page count below which watermark
// detection never runs.
const minPagesToRun = 3

// minSignatureHebrewChars is the minimum Hebrew character count a
// signature must have to be eligible as a watermark.
const minSignatureHebrewChars = 4

// Page bundles the plain-text paragraphs of one page (already split on
// blank lines by the caller) with its structural analysis, so the
// watermark filter can remove a detected paragraph from both views.
type Page struct {
	Paragraphs []string
	Structure  wordbox.PageStructure
}

// hebrewSignature keeps only whitespace-separated words containing at
// least one Hebrew character, rejoined with single spaces.
func hebrewSignature(paragraph string) string {
	var kept []string
	for _, w := range strings.Fields(paragraph) {
		if containsHebrew(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func containsHebrew(s string) bool {
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			return true
		}
	}
	return false
}

func hebrewCharCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			n++
		}
	}
	return n
}

// RemoveWatermarks detects and strips recurring watermark paragraphs
// across pages. Only runs if len(pages) >= minPagesToRun; otherwise
// pages are returned unchanged. pages is not mutated: when watermarks
// are found a new slice of Pages is returned, and otherwise the input
// slice itself is returned.
func RemoveWatermarks(pages []Page) []Page {
	if len(pages) < minPagesToRun {
		return pages
	}

	pageCount := make(map[string]int)
	for _, pg := range pages {
		seen := make(map[string]bool)
		for _, para := range pg.Paragraphs {
			sig := hebrewSignature(para)
			if sig == "" || seen[sig] {
				continue
			}
			seen[sig] = true
			pageCount[sig]++
		}
	}

	watermarks := make(map[string]bool)
	threshold := len(pages) / 2
	for sig, count := range pageCount {
		if count > threshold && hebrewCharCount(sig) >= minSignatureHebrewChars {
			watermarks[sig] = true
		}
	}
	if len(watermarks) == 0 {
		return pages
	}

	out := make([]Page, len(pages))
	for i, pg := range pages {
		out[i] = removeFromPage(pg, watermarks)
	}
	return out
}

// removeFromPage drops watermark paragraphs from both the plain-text
// paragraph list and the PageStructure's paragraph list, preserving
// header/footer id sets.
func removeFromPage(pg Page, watermarks map[string]bool) Page {
	var keptText []string
	var removedLineIDs []int
	for i, para := range pg.Paragraphs {
		sig := hebrewSignature(para)
		if watermarks[sig] {
			if i < len(pg.Structure.Paragraphs) {
				removedLineIDs = append(removedLineIDs, pg.Structure.Paragraphs[i].LineIDs...)
			}
			continue
		}
		keptText = append(keptText, para)
	}

	removedSet := make(map[int]bool, len(removedLineIDs))
	for _, id := range removedLineIDs {
		removedSet[id] = true
	}

	var keptParagraphs []wordbox.Paragraph
	for _, p := range pg.Structure.Paragraphs {
		if paragraphWatermarked(p, removedSet) {
			continue
		}
		keptParagraphs = append(keptParagraphs, p)
	}

	return Page{
		Paragraphs: keptText,
		Structure: wordbox.PageStructure{
			Paragraphs: keptParagraphs,
			HeaderIDs:  pg.Structure.HeaderIDs,
			FooterIDs:  pg.Structure.FooterIDs,
		},
	}
}

func paragraphWatermarked(p wordbox.Paragraph, removedSet map[int]bool) bool {
	if len(p.LineIDs) == 0 {
		return false
	}
	for _, id := range p.LineIDs {
		if !removedSet[id] {
			return false
		}
	}
	return true
}
