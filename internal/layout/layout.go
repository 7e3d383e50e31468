// Package layout analyzes the geometric structure of a page: it
// groups lines into header, footer and body paragraphs, assigns
// section numbers and detects centered paragraphs, all from the
// WordBox geometry alone.
package layout

import (
	"context"
	"regexp"
	"sort"

	"github.com/hebrewscanner/reconstruct/internal/svcctx"
	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// headerFooterCap bounds how many leading/trailing lines the gap-based
// scan will ever commit to a header or footer.
const headerFooterCap = 3

// gapThresholdFactor scales the median inter-line gap into the
// threshold a single gap must exceed to end a header/footer scan.
const gapThresholdFactor = 3.0

// paragraphGapFactor scales the median inter-line gap into the
// threshold that, combined with a paragraph-number change, ends a
// paragraph during break detection.
const paragraphGapFactor = 1.5

// shortLineFactor and centerBandFactor are fractions of the reference
// width used by paragraph-break detection and centering.
const (
	shortLineFactor  = 0.7
	centerBandFactor = 0.08
)

// contentFooterScanCap bounds how many trailing lines the content-
// based footer extension will examine.
const contentFooterScanCap = 8

var sectionNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[\x{05D0}-\x{05EA}]\.$`),
	regexp.MustCompile(`^\([\x{05D0}-\x{05EA}]\)$`),
	regexp.MustCompile(`^[\x{05D0}-\x{05EA}]\)$`),
	regexp.MustCompile(`^\d+\.$`),
	regexp.MustCompile(`^\(\d+\)$`),
	regexp.MustCompile(`^\d+\)$`),
	regexp.MustCompile(`^[a-zA-Z]\.$`),
	regexp.MustCompile(`^\([a-zA-Z]\)$`),
	regexp.MustCompile(`^[a-zA-Z]\)$`),
}

// Analyze derives the full PageStructure from boxes, which should
// already have margin boxes excluded. Placeholder-aware word/Hebrew/
// Latin counts are computed from the caller-supplied boxes directly.
func Analyze(ctx context.Context, boxes []wordbox.Box) wordbox.PageStructure {
	logger := svcctx.LoggerFrom(ctx)
	metrics := wordbox.ComputeLineMetrics(boxes)
	sortedIDs := wordbox.SortedLineIDs(metrics)

	if len(sortedIDs) < 2 {
		logger.Debug("page too short for layout analysis, treating as a single body paragraph", "lines", len(sortedIDs))
		return wordbox.PageStructure{
			Paragraphs: []wordbox.Paragraph{{LineIDs: sortedIDs, Role: wordbox.RoleBody}},
			HeaderIDs:  map[int]bool{},
			FooterIDs:  map[int]bool{},
		}
	}

	gaps := interLineGaps(metrics, sortedIDs)
	medianGap := median(gaps)
	gapThreshold := gapThresholdFactor * medianGap

	headerIDs := detectHeader(metrics, sortedIDs, gapThreshold)
	footerIDs := detectFooter(metrics, sortedIDs, gapThreshold)
	extendFooterByContent(boxes, metrics, sortedIDs, headerIDs, footerIDs)

	var bodyIDs []int
	for _, id := range sortedIDs {
		if headerIDs[id] || footerIDs[id] {
			continue
		}
		bodyIDs = append(bodyIDs, id)
	}

	refWidth := percentileWidth(metrics, bodyIDs, 80)
	paragraphs := breakParagraphs(metrics, bodyIDs, medianGap, refWidth)

	pageMinX, pageMaxX := pageXRange(metrics, sortedIDs)
	pageCenter := (pageMinX + pageMaxX) / 2

	for i := range paragraphs {
		assignRole(&paragraphs[i], metrics)
		paragraphs[i].IsCentered = isCentered(paragraphs[i], metrics, refWidth, pageCenter)
	}

	var out []wordbox.Paragraph
	if len(headerIDs) > 0 {
		out = append(out, wordbox.Paragraph{LineIDs: sortedSubset(sortedIDs, headerIDs), Role: wordbox.RoleHeader})
	}
	out = append(out, paragraphs...)
	if len(footerIDs) > 0 {
		out = append(out, wordbox.Paragraph{LineIDs: sortedSubset(sortedIDs, footerIDs), Role: wordbox.RoleFooter})
	}

	logger.Debug("layout analyzed", "paragraphs", len(out), "header_lines", len(headerIDs), "footer_lines", len(footerIDs))

	return wordbox.PageStructure{
		Paragraphs: out,
		HeaderIDs:  headerIDs,
		FooterIDs:  footerIDs,
	}
}

// sortedSubset returns the elements of ids flagged true in set, in the
// order they appear in ids.
func sortedSubset(ids []int, set map[int]bool) []int {
	var out []int
	for _, id := range ids {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}

// interLineGaps returns next.MinY - prev.MaxY for every adjacent pair
// of sorted lines, keeping only positive values.
func interLineGaps(metrics map[int]wordbox.LineMetrics, sortedIDs []int) []float64 {
	var gaps []float64
	for i := 1; i < len(sortedIDs); i++ {
		prev := metrics[sortedIDs[i-1]]
		cur := metrics[sortedIDs[i]]
		gap := cur.MinY - prev.MaxY
		if gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// median returns the median of vs, or 0 for an empty slice.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// detectHeader scans forward from the top, committing a prefix of up
// to headerFooterCap lines as the header if the gap after some line in
// that prefix exceeds gapThreshold.
func detectHeader(metrics map[int]wordbox.LineMetrics, sortedIDs []int, gapThreshold float64) map[int]bool {
	ids := map[int]bool{}
	limit := min(headerFooterCap, len(sortedIDs)-1)
	for i := 0; i < limit; i++ {
		ids[sortedIDs[i]] = true
		gapAfter := metrics[sortedIDs[i+1]].MinY - metrics[sortedIDs[i]].MaxY
		if gapAfter > gapThreshold {
			return ids
		}
	}
	return map[int]bool{}
}

// detectFooter mirrors detectHeader from the bottom, looking at the
// gap before each line.
func detectFooter(metrics map[int]wordbox.LineMetrics, sortedIDs []int, gapThreshold float64) map[int]bool {
	ids := map[int]bool{}
	n := len(sortedIDs)
	limit := min(headerFooterCap, n-1)
	for i := 0; i < limit; i++ {
		idx := n - 1 - i
		ids[sortedIDs[idx]] = true
		gapBefore := metrics[sortedIDs[idx]].MinY - metrics[sortedIDs[idx-1]].MaxY
		if gapBefore > gapThreshold {
			return ids
		}
	}
	return map[int]bool{}
}

// extendFooterByContent grows footerIDs upward while trailing lines
// look like non-content (page numbers, running heads) rather than body
// text, stopping at the first real-content line.
func extendFooterByContent(boxes []wordbox.Box, metrics map[int]wordbox.LineMetrics, sortedIDs []int, headerIDs, footerIDs map[int]bool) {
	byLine := wordbox.GroupByLine(boxes)
	n := len(sortedIDs)

	start := n - 1
	for start >= 0 && footerIDs[sortedIDs[start]] {
		start--
	}

	scanned := 0
	for i := start; i >= 0 && scanned < contentFooterScanCap; i-- {
		id := sortedIDs[i]
		if headerIDs[id] {
			break
		}
		scanned++
		if !isNonContentLine(byLine[id]) {
			break
		}
		footerIDs[id] = true
	}
}

// isNonContentLine implements the two non-content predicates from the
// content-based footer extension.
func isNonContentLine(line []wordbox.Box) bool {
	var words, hebrew, latin int
	for _, b := range line {
		if b.IsPlaceholder {
			continue
		}
		words++
		switch classifyForLayout(b.Text) {
		case "hebrew":
			hebrew++
		case "latin":
			latin++
		}
	}
	if words <= 3 && hebrew == 0 {
		return true
	}
	if latin >= 3 && hebrew <= 1 {
		return true
	}
	return false
}

// classifyForLayout is a minimal script split (hebrew/latin/other)
// local to layout's content heuristics; it deliberately does not
// import the script package's full classifier to avoid re-flagging
// section markers and punctuation as content here.
func classifyForLayout(s string) string {
	var hebrew, latin bool
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			hebrew = true
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			latin = true
		}
	}
	switch {
	case hebrew:
		return "hebrew"
	case latin:
		return "latin"
	default:
		return "other"
	}
}

// percentileWidth returns the pth percentile (nearest-rank) of line
// widths among ids.
func percentileWidth(metrics map[int]wordbox.LineMetrics, ids []int, p float64) float64 {
	if len(ids) == 0 {
		return 0
	}
	widths := make([]float64, len(ids))
	for i, id := range ids {
		widths[i] = metrics[id].Width()
	}
	sort.Float64s(widths)
	rank := int(p/100*float64(len(widths)-1) + 0.5)
	if rank >= len(widths) {
		rank = len(widths) - 1
	}
	return widths[rank]
}

// breakParagraphs walks the body lines in Y order and groups them into
// paragraphs per the short-line / paragraph-number-change rules.
func breakParagraphs(metrics map[int]wordbox.LineMetrics, bodyIDs []int, medianGap, refWidth float64) []wordbox.Paragraph {
	if len(bodyIDs) == 0 {
		return nil
	}

	var paragraphs []wordbox.Paragraph
	var current []int

	for i, id := range bodyIDs {
		current = append(current, id)
		m := metrics[id]
		isShort := m.Width() < shortLineFactor*refWidth
		isLast := i == len(bodyIDs)-1

		endParagraph := isShort || isLast
		if !endParagraph {
			next := metrics[bodyIDs[i+1]]
			gapToNext := next.MinY - m.MaxY
			if next.ParagraphNo != m.ParagraphNo && gapToNext > paragraphGapFactor*medianGap {
				endParagraph = true
			}
		}

		if endParagraph {
			paragraphs = append(paragraphs, wordbox.Paragraph{LineIDs: current})
			current = nil
		}
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, wordbox.Paragraph{LineIDs: current})
	}
	return paragraphs
}

// assignRole runs section-number detection on a paragraph's first line
// and sets Role/SectionNumber accordingly.
func assignRole(p *wordbox.Paragraph, metrics map[int]wordbox.LineMetrics) {
	p.Role = wordbox.RoleBody
	if len(p.LineIDs) == 0 {
		return
	}
	m := metrics[p.LineIDs[0]]

	if num, ok := matchSectionNumber(m.FirstWord); ok {
		p.Role = wordbox.RoleSectionHeader
		p.SectionNumber = num
		return
	}
	if m.SecondWord != "" {
		if num, ok := matchSectionNumber(m.FirstWord + m.SecondWord); ok {
			p.Role = wordbox.RoleSectionHeader
			p.SectionNumber = num
		}
	}
}

func matchSectionNumber(candidate string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	for _, re := range sectionNumberPatterns {
		if re.MatchString(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// isCentered reports whether every line of p is short and close to the
// page's horizontal center.
func isCentered(p wordbox.Paragraph, metrics map[int]wordbox.LineMetrics, refWidth, pageCenter float64) bool {
	if len(p.LineIDs) == 0 {
		return false
	}
	for _, id := range p.LineIDs {
		m := metrics[id]
		if m.Width() >= shortLineFactor*refWidth {
			return false
		}
		if abs(m.MidX()-pageCenter) >= centerBandFactor*refWidth {
			return false
		}
	}
	return true
}

func pageXRange(metrics map[int]wordbox.LineMetrics, ids []int) (float64, float64) {
	if len(ids) == 0 {
		return 0, 0
	}
	minX, maxX := metrics[ids[0]].MinX, metrics[ids[0]].MaxX
	for _, id := range ids[1:] {
		m := metrics[id]
		if m.MinX < minX {
			minX = m.MinX
		}
		if m.MaxX > maxX {
			maxX = m.MaxX
		}
	}
	return minX, maxX
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
