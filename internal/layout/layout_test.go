package layout

import (
	"context"
	"testing"

	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

func lineBox(text string, lineID, wordNum int, x, y, w float64) wordbox.Box {
	return wordbox.NewBox(text, wordbox.Frame{X: x, Y: y, Width: w, Height: 10}, lineID, wordNum)
}

func TestAnalyzeHeaderGapScenario(t *testing.T) {
	var boxes []wordbox.Box
	ys := []float64{10, 200, 230, 260, 290}
	for i, y := range ys {
		lineID := i + 1
		boxes = append(boxes,
			lineBox("שלום", lineID, 0, 0, y, 40),
			lineBox("עולם", lineID, 1, 50, y, 40),
			lineBox("טוב", lineID, 2, 100, y, 40),
		)
	}

	structure := Analyze(context.Background(), boxes)

	if !structure.HeaderIDs[1] {
		t.Fatal("expected line 1 (Y=10) to be marked header")
	}
	for id := 2; id <= 5; id++ {
		if structure.HeaderIDs[id] {
			t.Fatalf("expected line %d to not be header", id)
		}
	}
}

func TestMatchSectionNumber(t *testing.T) {
	cases := []struct {
		first, second string
		wantNum       string
		wantMatch     bool
	}{
		{"א.", "", "א.", true},
		{"1", ".", "1.", true},
		{"(א)", "", "(א)", true},
		{"שלום", "", "", false},
	}
	for _, c := range cases {
		num, ok := matchSectionNumber(c.first)
		if !ok && c.second != "" {
			num, ok = matchSectionNumber(c.first + c.second)
		}
		if ok != c.wantMatch || num != c.wantNum {
			t.Errorf("firstWord=%q secondWord=%q: got (%q, %v), want (%q, %v)",
				c.first, c.second, num, ok, c.wantNum, c.wantMatch)
		}
	}
}

func TestAnalyzeFewerThanTwoLinesIsSingleBodyParagraph(t *testing.T) {
	boxes := []wordbox.Box{lineBox("שלום", 1, 0, 0, 0, 40)}
	structure := Analyze(context.Background(), boxes)
	if len(structure.Paragraphs) != 1 || structure.Paragraphs[0].Role != wordbox.RoleBody {
		t.Fatalf("expected a single body paragraph, got %+v", structure.Paragraphs)
	}
}

func TestAnalyzeParagraphLineIDsDisjoint(t *testing.T) {
	var boxes []wordbox.Box
	for i := 1; i <= 6; i++ {
		y := float64(i * 40)
		boxes = append(boxes, lineBox("שלום עולם טוב מאוד", i, 0, 0, y, 300))
	}
	structure := Analyze(context.Background(), boxes)

	seen := map[int]bool{}
	for _, p := range structure.Paragraphs {
		if len(p.LineIDs) == 0 {
			t.Fatal("paragraph has no line ids")
		}
		for _, id := range p.LineIDs {
			if seen[id] {
				t.Fatalf("line id %d appears in more than one paragraph", id)
			}
			seen[id] = true
		}
	}
}
