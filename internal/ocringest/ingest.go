// Package ocringest parses word-level OCR rows into the shared
// WordBox sequence, applying script- and confidence-aware keep/
// placeholder policy, reversed-parenthesis repair and duplicate-box
// suppression before handing the page to margin detection.
package ocringest

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/hebrewscanner/reconstruct/internal/margin"
	"github.com/hebrewscanner/reconstruct/internal/script"
	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// wordLevel is the Tesseract-style TSV level identifying a word row.
const wordLevel = 5

// numTSVColumns is the fixed 12-column schema per row.
const numTSVColumns = 12

// confidence thresholds per script class.
const (
	hebrewConfidenceFloor     = 5
	structuralConfidenceFloor = 20
)

// row is one parsed (but not yet policy-decided) OCR TSV row.
type row struct {
	block, par, line, word int
	frame                  wordbox.Frame
	confidence              float64
	text                   string
}

// ParseAndFilter reads tab-separated OCR rows from r (one per line,
// optionally with a header row) and returns the accepted WordBox
// sequence for one page, margins already tagged. Malformed rows are
// silently skipped; the page never fails to parse.
func ParseAndFilter(r io.Reader) []wordbox.Box {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var boxes []wordbox.Box
	wordNumByLine := make(map[int]int)

	for scanner.Scan() {
		rec, ok := parseRow(scanner.Text())
		if !ok {
			continue
		}

		text := strings.TrimSpace(rec.text)
		text = normalizeReversedParens(text)
		if text == "" {
			continue
		}

		class := script.Classify(text)
		placeholder := isPlaceholderAction(class, rec.confidence)

		if findDuplicate(boxes, rec.frame) {
			continue
		}

		lineID := wordbox.LineID(rec.block, rec.par, rec.line)
		wordNum := wordNumByLine[lineID]
		wordNumByLine[lineID] = wordNum + 1

		box := wordbox.NewBox(text, rec.frame, lineID, wordNum)
		if placeholder {
			box.SetPlaceholder()
		}
		boxes = append(boxes, box)
	}

	margin.Detect(boxes)
	return boxes
}

// isPlaceholderAction applies the script- and confidence-aware
// keep/placeholder policy.
func isPlaceholderAction(class script.Class, confidence float64) bool {
	switch class {
	case script.Hebrew, script.HebrewMixed:
		return confidence <= hebrewConfidenceFloor
	case script.Number, script.Punctuation, script.SectionMarker:
		return confidence <= structuralConfidenceFloor
	case script.LatinOnly:
		return false
	case script.Garbage:
		return true
	default:
		return true
	}
}

// findDuplicate reports whether frame overlaps an already-accepted
// box by more than 50% of the smaller rectangle's area.
func findDuplicate(existing []wordbox.Box, frame wordbox.Frame) bool {
	for _, b := range existing {
		overlap := b.Frame.OverlapArea(frame)
		smaller := min(b.Frame.Area(), frame.Area())
		if smaller > 0 && overlap > 0.5*smaller {
			return true
		}
	}
	return false
}

// parseRow splits one TSV line into its 12 columns and converts the
// numeric fields; returns ok=false for any malformed row.
func parseRow(line string) (row, bool) {
	cols := strings.Split(line, "\t")
	if len(cols) != numTSVColumns {
		return row{}, false
	}

	level, err := strconv.Atoi(strings.TrimSpace(cols[0]))
	if err != nil || level != wordLevel {
		return row{}, false
	}

	block, err := strconv.Atoi(strings.TrimSpace(cols[2]))
	if err != nil {
		return row{}, false
	}
	par, err := strconv.Atoi(strings.TrimSpace(cols[3]))
	if err != nil {
		return row{}, false
	}
	lineNum, err := strconv.Atoi(strings.TrimSpace(cols[4]))
	if err != nil {
		return row{}, false
	}
	wordNum, err := strconv.Atoi(strings.TrimSpace(cols[5]))
	if err != nil {
		return row{}, false
	}
	left, err := strconv.ParseFloat(strings.TrimSpace(cols[6]), 64)
	if err != nil {
		return row{}, false
	}
	top, err := strconv.ParseFloat(strings.TrimSpace(cols[7]), 64)
	if err != nil {
		return row{}, false
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(cols[8]), 64)
	if err != nil {
		return row{}, false
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(cols[9]), 64)
	if err != nil {
		return row{}, false
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(cols[10]), 64)
	if err != nil {
		return row{}, false
	}

	return row{
		block: block,
		par:   par,
		line:  lineNum,
		word:  wordNum,
		frame: wordbox.Frame{X: left, Y: top, Width: width, Height: height},
		confidence: confidence,
		text:  cols[11],
	}, true
}
