package tokenizer

import (
	"strings"
	"testing"
)

func testVocab(t *testing.T) *Vocab {
	t.Helper()
	lines := []string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]", "[MASK]",
		"hello", "world", "שלום", "##לום", "ש",
	}
	v, err := LoadVocab(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("LoadVocab: %v", err)
	}
	return v
}

func TestRoundTripSingleID(t *testing.T) {
	v := testVocab(t)
	tok := New(v)
	for _, w := range []string{"hello", "world", "שלום"} {
		if !v.IsInVocab(w) {
			t.Fatalf("expected %q in vocab", w)
		}
		ids := tok.tokenizeWord(w)
		if len(ids) != 1 {
			t.Fatalf("tokenizeWord(%q) = %v, want single id", w, ids)
		}
		id, _ := v.ID(w)
		if ids[0] != id {
			t.Fatalf("tokenizeWord(%q) = %d, want %d", w, ids[0], id)
		}
	}
}

func TestGreedyLongestMatch(t *testing.T) {
	v := testVocab(t)
	tok := New(v)
	// "שלוםלום" is not a whole vocabulary entry; greedy longest match
	// takes "שלום" (not the shorter "ש") first, then "##לום".
	ids := tok.tokenizeWord("שלוםלום")
	wantFirst, _ := v.ID("שלום")
	wantSecond, _ := v.ID("##לום")
	if len(ids) != 2 || ids[0] != wantFirst || ids[1] != wantSecond {
		t.Fatalf("tokenizeWord(שלוםלום) = %v, want [%d %d]", ids, wantFirst, wantSecond)
	}
}

func TestUnknownWordFallsBackToUNK(t *testing.T) {
	v := testVocab(t)
	tok := New(v)
	ids := tok.tokenizeWord("zzz")
	if len(ids) != 1 || ids[0] != v.UnkID() {
		t.Fatalf("tokenizeWord(zzz) = %v, want [UNK]", ids)
	}
}

func TestEncodePadsToMaxLen(t *testing.T) {
	v := testVocab(t)
	tok := New(v)
	enc := tok.Encode("hello world", 8)
	if len(enc.InputIDs) != 8 || len(enc.AttentionMask) != 8 || len(enc.TokenTypeIDs) != 8 {
		t.Fatalf("expected length-8 sequences, got %+v", enc)
	}
	// [CLS] hello world [SEP] [PAD] [PAD] [PAD] [PAD]
	want := []int{v.ClsID(), 5, 6, v.SepID(), v.PadID(), v.PadID(), v.PadID(), v.PadID()}
	for i, w := range want {
		if enc.InputIDs[i] != w {
			t.Fatalf("InputIDs[%d] = %d, want %d", i, enc.InputIDs[i], w)
		}
	}
	for i := 0; i < 4; i++ {
		if enc.AttentionMask[i] != 1 {
			t.Fatalf("AttentionMask[%d] = %d, want 1", i, enc.AttentionMask[i])
		}
	}
	for i := 4; i < 8; i++ {
		if enc.AttentionMask[i] != 0 {
			t.Fatalf("AttentionMask[%d] = %d, want 0", i, enc.AttentionMask[i])
		}
	}
}

func TestEncodeWithMaskFirstOccurrenceOnly(t *testing.T) {
	v := testVocab(t)
	tok := New(v)
	enc := tok.EncodeWithMask("hello world hello", "hello", 10)
	if len(enc.MaskPositions) != 1 {
		t.Fatalf("expected 1 mask position, got %v", enc.MaskPositions)
	}
	pos := enc.MaskPositions[0]
	if enc.InputIDs[pos] != v.MaskID() {
		t.Fatalf("expected mask id at position %d", pos)
	}
	// Second "hello" (position 3 in token stream: CLS,[MASK],world,hello,SEP)
	// must remain the real token id, not masked.
	helloID, _ := v.ID("hello")
	found := false
	for i, id := range enc.InputIDs {
		if i != pos && id == helloID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unmasked hello token to remain, got %v", enc.InputIDs)
	}
}

func TestEncodeWithMaskNoMatch(t *testing.T) {
	v := testVocab(t)
	tok := New(v)
	enc := tok.EncodeWithMask("hello world", "missing", 10)
	if len(enc.MaskPositions) != 0 {
		t.Fatalf("expected no mask positions, got %v", enc.MaskPositions)
	}
}

func TestIsHebrewToken(t *testing.T) {
	if !IsHebrewToken("##לום") {
		t.Fatal("expected Hebrew token to be detected")
	}
	if IsHebrewToken("hello") {
		t.Fatal("expected non-Hebrew token to be rejected")
	}
}
