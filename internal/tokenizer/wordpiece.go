package tokenizer

import "strings"

// maxWordChars is the length above which a word is tokenized directly
// to [UNK] without attempting WordPiece matching.
const maxWordChars = 100

// Tokenizer wraps a Vocab with WordPiece tokenization and masked
// encoding for a masked-LM input pipeline.
type Tokenizer struct {
	vocab *Vocab
}

// New wraps vocab in a Tokenizer.
func New(vocab *Vocab) *Tokenizer {
	return &Tokenizer{vocab: vocab}
}

// Vocab returns the underlying vocabulary.
func (t *Tokenizer) Vocab() *Vocab { return t.vocab }

// tokenizeWord runs greedy longest-match-first WordPiece on a single
// already-lowercased word, returning its token ids.
func (t *Tokenizer) tokenizeWord(word string) []int {
	runes := []rune(word)
	if len(runes) > maxWordChars {
		return []int{t.vocab.UnkID()}
	}

	if id, ok := t.vocab.ID(word); ok {
		return []int{id}
	}

	var ids []int
	s := 0
	for s < len(runes) {
		e := len(runes)
		matchedID := -1
		for e > s {
			candidate := string(runes[s:e])
			if s == 0 {
				if id, ok := t.vocab.ID(candidate); ok {
					matchedID = id
					break
				}
			} else {
				if id, ok := t.vocab.ID("##" + candidate); ok {
					matchedID = id
					break
				}
			}
			e--
		}
		if matchedID == -1 {
			return []int{t.vocab.UnkID()}
		}
		ids = append(ids, matchedID)
		s = e
	}
	return ids
}

// Tokenize whitespace-splits text and concatenates each word's
// WordPiece ids.
func (t *Tokenizer) Tokenize(text string) []int {
	var ids []int
	for _, w := range strings.Fields(text) {
		ids = append(ids, t.tokenizeWord(strings.ToLower(w))...)
	}
	return ids
}

// Encoding is the fixed-length input triple a masked LM consumes.
type Encoding struct {
	InputIDs      []int
	AttentionMask []int
	TokenTypeIDs  []int
	// MaskPositions holds the indices (in the padded arrays) of any
	// [MASK] tokens produced by EncodeWithMask; empty for Encode.
	MaskPositions []int
}

// Encode builds [CLS] + tokenize(text), truncated so the total with a
// trailing [SEP] fits within maxLen, then pads to exactly maxLen.
func (t *Tokenizer) Encode(text string, maxLen int) Encoding {
	ids := append([]int{t.vocab.ClsID()}, t.Tokenize(text)...)
	if len(ids) > maxLen-1 {
		ids = ids[:maxLen-1]
	}
	ids = append(ids, t.vocab.SepID())
	return t.pad(ids, maxLen)
}

// EncodeWithMask behaves like Encode, but the first whitespace-split
// word matching wordToMask (case-insensitively) has every one of its
// WordPiece tokens replaced by [MASK]. Later identical words are left
// untouched. Returns the mask token positions in the padded arrays.
func (t *Tokenizer) EncodeWithMask(text string, wordToMask string, maxLen int) Encoding {
	words := strings.Fields(text)
	target := strings.ToLower(wordToMask)

	ids := []int{t.vocab.ClsID()}
	masked := false
	var maskPositions []int
	for _, w := range words {
		lower := strings.ToLower(w)
		wordIDs := t.tokenizeWord(lower)
		if !masked && lower == target {
			for range wordIDs {
				maskPositions = append(maskPositions, len(ids))
				ids = append(ids, t.vocab.MaskID())
			}
			masked = true
			continue
		}
		ids = append(ids, wordIDs...)
	}

	if len(ids) > maxLen-1 {
		ids = ids[:maxLen-1]
	}
	ids = append(ids, t.vocab.SepID())

	enc := t.pad(ids, maxLen)

	// Keep only mask positions that survived truncation/padding.
	var kept []int
	for _, p := range maskPositions {
		if p < len(enc.InputIDs) && enc.InputIDs[p] == t.vocab.MaskID() {
			kept = append(kept, p)
		}
	}
	enc.MaskPositions = kept
	return enc
}

func (t *Tokenizer) pad(ids []int, maxLen int) Encoding {
	inputIDs := make([]int, maxLen)
	attention := make([]int, maxLen)
	tokenTypes := make([]int, maxLen)

	for i := 0; i < maxLen; i++ {
		if i < len(ids) {
			inputIDs[i] = ids[i]
			attention[i] = 1
		} else {
			inputIDs[i] = t.vocab.PadID()
			attention[i] = 0
		}
	}
	return Encoding{InputIDs: inputIDs, AttentionMask: attention, TokenTypeIDs: tokenTypes}
}

// IsInVocab delegates to the underlying vocabulary.
func (t *Tokenizer) IsInVocab(word string) bool { return t.vocab.IsInVocab(word) }
