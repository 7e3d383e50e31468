package script

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Class
	}{
		{"hebrew word", "שלום", Hebrew},
		{"hebrew mixed", "שלוםZ", HebrewMixed},
		{"latin only", "hello", LatinOnly},
		{"number", "1234", Number},
		{"punctuation", "...", Punctuation},
		{"section hebrew letter", "א.", SectionMarker},
		{"section parenthesized", "(א)", SectionMarker},
		{"section digit", "1.", SectionMarker},
		{"plain hebrew not section", "שלום", Hebrew},
		{"garbage run", "aaaa", Garbage},
		{"garbage majority run", "aaaaaab", Garbage},
		{"single punct garbage", ".", Garbage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in)
			if got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassifyStripsBidi(t *testing.T) {
	in := "‎שלום‏"
	if got := Classify(in); got != Hebrew {
		t.Errorf("Classify(%q) = %v, want %v", in, got, Hebrew)
	}
}

func TestMaxRun(t *testing.T) {
	if r := maxRun("aabbbcc"); r != 3 {
		t.Errorf("maxRun = %d, want 3", r)
	}
}
