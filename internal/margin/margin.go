// Package margin finds the vertical boundary separating a page's main
// text column from a left-side annotation column, a layout typical of
// right-to-left Hebrew pages with Latin or numeric margin notes.
package margin

import (
	"sort"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// minBoxesToDetect is the minimum box count below which no detection
// is attempted.
const minBoxesToDetect = 10

// bandLow and bandHigh bound the fraction of page width in which the
// margin boundary is expected to fall.
const (
	bandLow     = 0.30
	bandHigh    = 0.45
	minGapRatio = 0.03
	widthFudge  = 1.1
)

// Detect flags boxes[i].IsMargin in place for every box left of the
// detected boundary. If fewer than minBoxesToDetect boxes are present,
// or no sufficiently large gap is found in the search band, no boxes
// are flagged.
func Detect(boxes []wordbox.Box) {
	if len(boxes) < minBoxesToDetect {
		return
	}

	maxX := boxes[0].Frame.X
	for _, b := range boxes[1:] {
		if b.Frame.X > maxX {
			maxX = b.Frame.X
		}
	}
	tsvWidth := maxX * widthFudge

	edges := make([]float64, len(boxes))
	for i, b := range boxes {
		edges[i] = b.Frame.X
	}
	sort.Float64s(edges)

	low := bandLow * tsvWidth
	high := bandHigh * tsvWidth

	bestGap := -1.0
	boundary := 0.0
	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		mid := (prev + cur) / 2
		if mid < low || mid > high {
			continue
		}
		gap := cur - prev
		if gap > bestGap {
			bestGap = gap
			boundary = mid
		}
	}

	if bestGap <= minGapRatio*tsvWidth {
		return
	}

	for i := range boxes {
		if boxes[i].Frame.X < boundary {
			boxes[i].IsMargin = true
		}
	}
}
