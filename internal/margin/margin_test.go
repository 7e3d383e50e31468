package margin

import (
	"testing"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

func mkBox(x float64) wordbox.Box {
	return wordbox.NewBox("w", wordbox.Frame{X: x, Width: 10, Height: 10}, 1, 0)
}

func TestDetectTwoClusters(t *testing.T) {
	var boxes []wordbox.Box
	// Margin cluster near the left edge.
	for i := 0; i < 10; i++ {
		boxes = append(boxes, mkBox(float64(30+i)))
	}
	// Main-text cluster past the gap.
	for i := 0; i < 10; i++ {
		boxes = append(boxes, mkBox(float64(350+i)))
	}
	// A word further right establishes maxX so the search band covers
	// the gap between the two clusters above.
	boxes = append(boxes, mkBox(500))

	Detect(boxes)

	for i := 0; i < 10; i++ {
		if !boxes[i].IsMargin {
			t.Errorf("box %d (x=%v) expected margin", i, boxes[i].Frame.X)
		}
	}
	for i := 10; i < len(boxes); i++ {
		if boxes[i].IsMargin {
			t.Errorf("box %d (x=%v) expected not margin", i, boxes[i].Frame.X)
		}
	}
}

func TestDetectTooFewBoxes(t *testing.T) {
	boxes := []wordbox.Box{mkBox(100), mkBox(800)}
	Detect(boxes)
	for _, b := range boxes {
		if b.IsMargin {
			t.Fatal("expected no margin detection with < 10 boxes")
		}
	}
}

func TestDetectNoGap(t *testing.T) {
	var boxes []wordbox.Box
	for i := 0; i < 20; i++ {
		boxes = append(boxes, mkBox(float64(300+i*2)))
	}
	Detect(boxes)
	for _, b := range boxes {
		if b.IsMargin {
			t.Fatal("expected no margin when no band gap exceeds threshold")
		}
	}
}
