package ocringest

import (
	"fmt"
	"strings"
	"testing"
)

func TestNormalizeReversedParens(t *testing.T) {
	cases := map[string]string{
		")3(":  "(3)",
		")א(":  "(א)",
		")3":   "(3)",
		"(3)":  "(3)",
		")ab(": ")ab(",
	}
	for in, want := range cases {
		if got := normalizeReversedParens(in); got != want {
			t.Errorf("normalizeReversedParens(%q) = %q, want %q", in, got, want)
		}
	}
}

func tsvRow(level, block, par, line, word int, left, top, width, height, conf float64, text string) string {
	return fmt.Sprintf("%d\t1\t%d\t%d\t%d\t%d\t%v\t%v\t%v\t%v\t%v\t%s",
		level, block, par, line, word, left, top, width, height, conf, text)
}

func TestParseAndFilterLatinAlwaysKept(t *testing.T) {
	input := tsvRow(5, 1, 1, 1, 1, 0, 0, 50, 20, 1, "hello") + "\n"
	boxes := ParseAndFilter(strings.NewReader(input))
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if boxes[0].IsPlaceholder {
		t.Fatal("expected LatinOnly word to be kept regardless of confidence")
	}
	if boxes[0].Text != "hello" {
		t.Fatalf("text = %q, want hello", boxes[0].Text)
	}
}

func TestParseAndFilterLowConfidenceHebrewPlaceholder(t *testing.T) {
	input := tsvRow(5, 1, 1, 1, 1, 0, 0, 50, 20, 3, "שלום") + "\n"
	boxes := ParseAndFilter(strings.NewReader(input))
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	if !boxes[0].IsPlaceholder || boxes[0].Text != "[...]" {
		t.Fatalf("expected placeholder, got %+v", boxes[0])
	}
}

func TestParseAndFilterSkipsMalformedRows(t *testing.T) {
	input := "not\tenough\tcolumns\n"
	boxes := ParseAndFilter(strings.NewReader(input))
	if len(boxes) != 0 {
		t.Fatalf("expected 0 boxes for malformed row, got %d", len(boxes))
	}
}

func TestParseAndFilterIgnoresNonWordLevel(t *testing.T) {
	input := tsvRow(1, 1, 1, 1, 1, 0, 0, 50, 20, 99, "page") + "\n"
	boxes := ParseAndFilter(strings.NewReader(input))
	if len(boxes) != 0 {
		t.Fatalf("expected 0 boxes for non-word-level row, got %d", len(boxes))
	}
}

func TestParseAndFilterDropsOverlappingDuplicate(t *testing.T) {
	input := tsvRow(5, 1, 1, 1, 1, 0, 0, 100, 30, 90, "hello") + "\n" +
		tsvRow(5, 1, 1, 1, 2, 5, 2, 90, 28, 90, "hallo") + "\n"
	boxes := ParseAndFilter(strings.NewReader(input))
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box after duplicate suppression, got %d", len(boxes))
	}
	if boxes[0].Text != "hello" {
		t.Fatalf("expected first box to survive, got %q", boxes[0].Text)
	}
}

func TestParseAndFilterAssignsWordNumAscending(t *testing.T) {
	input := tsvRow(5, 1, 1, 1, 1, 0, 0, 50, 20, 90, "one") + "\n" +
		tsvRow(5, 1, 1, 1, 2, 60, 0, 50, 20, 90, "two") + "\n"
	boxes := ParseAndFilter(strings.NewReader(input))
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	if boxes[0].WordNum != 0 || boxes[1].WordNum != 1 {
		t.Fatalf("expected ascending WordNum 0,1, got %d,%d", boxes[0].WordNum, boxes[1].WordNum)
	}
}
