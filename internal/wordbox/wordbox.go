// Package wordbox defines the shared word-box data model that flows
// through the reconstruction pipeline: OCR ingest produces boxes,
// margin detection and LM correction mutate them in place, and layout
// analysis and emission consume them read-only.
package wordbox

import (
	"sort"

	"github.com/google/uuid"
)

// Placeholder is the literal text of a word box standing in for an
// unrecoverable OCR word.
const Placeholder = "[...]"

// Frame is an axis-aligned rectangle in OCR pixel space, origin top-left.
type Frame struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Area returns the rectangle's area.
func (f Frame) Area() float64 {
	return f.Width * f.Height
}

// OverlapArea returns the area of intersection between f and g.
func (f Frame) OverlapArea(g Frame) float64 {
	left := max(f.X, g.X)
	right := min(f.X+f.Width, g.X+g.Width)
	top := max(f.Y, g.Y)
	bottom := min(f.Y+f.Height, g.Y+g.Height)
	if right <= left || bottom <= top {
		return 0
	}
	return (right - left) * (bottom - top)
}

// Box is one recognized word. Created by OCR ingest, mutated only by
// margin detection (IsMargin) and LM correction (Text, IsPlaceholder).
type Box struct {
	ID            uuid.UUID
	Text          string
	Frame         Frame
	LineID        int
	WordNum       int
	IsMargin      bool
	IsPlaceholder bool
}

// LineID composes the (block, paragraph, line) triple into the
// integer identity used throughout the pipeline.
func LineID(block, par, line int) int {
	return block*1_000_000 + par*1_000 + line
}

// ParagraphID returns the paragraph-level id (block*1e3 + par) that
// groups lines belonging to the same OCR paragraph regardless of
// line number, used by the selection emitter.
func ParagraphID(lineID int) int {
	return lineID / 1_000
}

// NewBox constructs a regular (non-placeholder, non-margin) word box
// with a fresh identity.
func NewBox(text string, frame Frame, lineID, wordNum int) Box {
	return Box{
		ID:      uuid.New(),
		Text:    text,
		Frame:   frame,
		LineID:  lineID,
		WordNum: wordNum,
	}
}

// SetPlaceholder rewrites b to the placeholder marker.
func (b *Box) SetPlaceholder() {
	b.Text = Placeholder
	b.IsPlaceholder = true
}

// SortByWordNum sorts boxes ascending by WordNum; stable, since two
// boxes in the same line never legitimately share a WordNum.
func SortByWordNum(boxes []Box) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].WordNum < boxes[j].WordNum
	})
}

// GroupByLine buckets boxes by LineID, preserving each bucket's
// original relative order.
func GroupByLine(boxes []Box) map[int][]Box {
	byLine := make(map[int][]Box)
	for _, b := range boxes {
		byLine[b.LineID] = append(byLine[b.LineID], b)
	}
	return byLine
}

// LineText joins a line's boxes (already sorted by WordNum) with
// single spaces.
func LineText(line []Box) string {
	var out string
	for i, b := range line {
		if i > 0 {
			out += " "
		}
		out += b.Text
	}
	return out
}

// LineMetrics aggregates geometry and composition for one text line,
// derived on demand from the (filtered) boxes belonging to it.
type LineMetrics struct {
	LineID      int
	MinX        float64
	MaxX        float64
	MinY        float64
	MaxY        float64
	WordCount   int
	FirstWord   string
	SecondWord  string
	ParagraphNo int
}

// Width returns MaxX-MinX.
func (m LineMetrics) Width() float64 { return m.MaxX - m.MinX }

// MidX returns the horizontal midpoint of the line's span.
func (m LineMetrics) MidX() float64 { return (m.MinX + m.MaxX) / 2 }

// ComputeLineMetrics derives LineMetrics for every lineId present in
// boxes. Margin boxes should be excluded by the caller beforehand.
func ComputeLineMetrics(boxes []Box) map[int]LineMetrics {
	byLine := GroupByLine(boxes)
	out := make(map[int]LineMetrics, len(byLine))
	for lineID, line := range byLine {
		SortByWordNum(line)
		m := LineMetrics{
			LineID:      lineID,
			ParagraphNo: ParagraphID(lineID),
			WordCount:   len(line),
		}
		for i, b := range line {
			if i == 0 || b.Frame.X < m.MinX {
				m.MinX = b.Frame.X
			}
			right := b.Frame.X + b.Frame.Width
			if i == 0 || right > m.MaxX {
				m.MaxX = right
			}
			if i == 0 || b.Frame.Y < m.MinY {
				m.MinY = b.Frame.Y
			}
			bottom := b.Frame.Y + b.Frame.Height
			if i == 0 || bottom > m.MaxY {
				m.MaxY = bottom
			}
		}
		if len(line) > 0 {
			m.FirstWord = line[0].Text
		}
		if len(line) > 1 {
			m.SecondWord = line[1].Text
		}
		out[lineID] = m
	}
	return out
}

// SortedLineIDs returns the lineIds of metrics sorted by MinY ascending.
func SortedLineIDs(metrics map[int]LineMetrics) []int {
	ids := make([]int, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return metrics[ids[i]].MinY < metrics[ids[j]].MinY
	})
	return ids
}

// Role classifies a DetectedParagraph's function on the page.
type Role string

const (
	RoleHeader        Role = "header"
	RoleFooter        Role = "footer"
	RoleBody          Role = "body"
	RoleSectionHeader Role = "sectionHeading"
)

// Paragraph is an ordered run of lineIds sharing a structural role.
type Paragraph struct {
	LineIDs       []int
	Role          Role
	SectionNumber string
	IsCentered    bool
}

// PageStructure is the full geometric analysis result for one page.
type PageStructure struct {
	Paragraphs []Paragraph
	HeaderIDs  map[int]bool
	FooterIDs  map[int]bool
}

// MaskPrediction is the top-K result of one masked-LM evaluation.
type MaskPrediction struct {
	TopK              []TokenProb
	HebrewProbability float64
}

// TokenProb is one (token, probability) entry of a MaskPrediction.
type TokenProb struct {
	Token       string
	Probability float32
}
