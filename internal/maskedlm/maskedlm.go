// Package maskedlm adapts an external masked-language-model runtime
// into the two operations the reconstruction pipeline needs:
// predicting a masked word's replacement, and falling back to a fixed
// confusion-pair substitution when the model is silent. The model
// itself — weights, tensor runtime — is out of scope; this package
// only specifies and implements the client side of the contract.
package maskedlm

import (
	"context"
	"sort"

	"github.com/hebrewscanner/reconstruct/internal/tokenizer"
	"github.com/hebrewscanner/reconstruct/internal/wordbox"
)

// TopK is the number of highest-probability tokens materialized per
// masked-LM call.
const TopK = 20

// MaxLen is the fixed sequence length used to encode model inputs.
const MaxLen = 128

// ConfusionPair is an unordered pair of Hebrew letters known to be
// visually confusable by the OCR engine.
type ConfusionPair [2]rune

// DefaultConfusionPairs is the fixed set from the language-model
// post-processor's confusion-fallback phase.
var DefaultConfusionPairs = []ConfusionPair{
	{'ר', 'ד'},
	{'ב', 'כ'},
	{'ו', 'ז'},
	{'ה', 'ח'},
	{'ם', 'ס'},
	{'ן', 'ו'},
}

// Engine is the tensor-level collaborator this package wraps: given
// three equal-length input sequences, it returns logits of shape
// [1, maxLen, vocabSize] for a single forward pass. One logical model
// instance serves many callers; Engine implementations must be safe
// for concurrent use or must serialize internally.
type Engine interface {
	// Infer runs one forward pass and returns a [maxLen][vocabSize]
	// logits matrix (the leading batch dimension of 1 is implicit).
	Infer(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int) ([][]float32, error)
	// Ready reports whether the engine is initialized and able to
	// serve Infer calls right now.
	Ready() bool
}

// Adapter is the dependency-injected handle C6 uses; it is not a
// process-wide singleton, but exactly-once-initialized and safe to
// share across concurrently-processed pages.
type Adapter struct {
	engine         Engine
	tokenizer      *tokenizer.Tokenizer
	confusionPairs []ConfusionPair
}

// New builds an Adapter around engine and tok. engine may be nil to
// model an LM-unavailable deployment: IsReady reports false and
// PredictMasked always returns (nil, nil).
func New(engine Engine, tok *tokenizer.Tokenizer) *Adapter {
	return &Adapter{engine: engine, tokenizer: tok}
}

// IsReady reports whether the underlying engine can currently serve
// predictions.
func (a *Adapter) IsReady() bool {
	return a.engine != nil && a.engine.Ready()
}

// SetConfusionPairs overrides the confusion-pair set CorrectByConfusion
// falls back to when none is supplied directly, e.g. from a corpus
// file tuned for a different OCR engine (internal/corpus).
func (a *Adapter) SetConfusionPairs(pairs []ConfusionPair) {
	a.confusionPairs = pairs
}

// ConfusionPairs returns the adapter's configured confusion-pair set,
// falling back to DefaultConfusionPairs if none was set.
func (a *Adapter) ConfusionPairs() []ConfusionPair {
	if a.confusionPairs != nil {
		return a.confusionPairs
	}
	return DefaultConfusionPairs
}

// PredictMasked encodes lineText with wordToMask replaced by [MASK]
// and returns the top-K predictions at that position. Returns (nil,
// nil) if the model is not ready or wordToMask does not occur in
// lineText; returns a non-nil error only for engine-level failures
// (callers treat these as "leave the box untouched").
func (a *Adapter) PredictMasked(ctx context.Context, lineText, wordToMask string) (*wordbox.MaskPrediction, error) {
	if !a.IsReady() {
		return nil, nil
	}

	enc := a.tokenizer.EncodeWithMask(lineText, wordToMask, MaxLen)
	if len(enc.MaskPositions) == 0 {
		return nil, nil
	}
	maskPos := enc.MaskPositions[0]

	logits, err := a.engine.Infer(ctx, enc.InputIDs, enc.AttentionMask, enc.TokenTypeIDs)
	if err != nil {
		return nil, err
	}
	if maskPos >= len(logits) {
		return nil, nil
	}

	probs := softmax(logits[maskPos])
	return topKPrediction(probs, a.tokenizer.Vocab(), TopK), nil
}

// softmax applies a numerically-stable softmax over row.
func softmax(row []float32) []float32 {
	max := row[0]
	for _, v := range row[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float32, len(row))
	var sum float32
	for i, v := range row {
		e := expf32(v - max)
		out[i] = e
		sum += e
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// topKPrediction selects the k highest-probability entries, dropping
// ids with no vocabulary entry, and sums the Hebrew-token mass.
func topKPrediction(probs []float32, vocab *tokenizer.Vocab, k int) *wordbox.MaskPrediction {
	type scored struct {
		id   int
		prob float32
	}
	scoredAll := make([]scored, 0, len(probs))
	for id, p := range probs {
		if _, ok := vocab.Token(id); ok {
			scoredAll = append(scoredAll, scored{id: id, prob: p})
		}
	}
	sort.Slice(scoredAll, func(i, j int) bool {
		return scoredAll[i].prob > scoredAll[j].prob
	})
	if len(scoredAll) > k {
		scoredAll = scoredAll[:k]
	}

	pred := &wordbox.MaskPrediction{}
	var hebrewMass float64
	for _, s := range scoredAll {
		tok, _ := vocab.Token(s.id)
		pred.TopK = append(pred.TopK, wordbox.TokenProb{Token: tok, Probability: s.prob})
		if tokenizer.IsHebrewToken(tok) {
			hebrewMass += float64(s.prob)
		}
	}
	pred.HebrewProbability = hebrewMass
	return pred
}

// CorrectByConfusion tries every position/pair substitution in pairs
// against word. If word is already a vocabulary entry, no correction
// is attempted. Returns the sole resulting in-vocabulary candidate, or
// ("", false) if zero or more than one candidate was produced.
func (a *Adapter) CorrectByConfusion(word string, pairs []ConfusionPair) (string, bool) {
	if a.tokenizer.IsInVocab(word) {
		return "", false
	}

	runes := []rune(word)
	candidates := make(map[string]bool)
	for i, r := range runes {
		for _, pair := range pairs {
			var replacement rune
			switch r {
			case pair[0]:
				replacement = pair[1]
			case pair[1]:
				replacement = pair[0]
			default:
				continue
			}
			candidate := make([]rune, len(runes))
			copy(candidate, runes)
			candidate[i] = replacement
			candStr := string(candidate)
			if a.tokenizer.IsInVocab(candStr) {
				candidates[candStr] = true
			}
		}
	}

	if len(candidates) != 1 {
		return "", false
	}
	for c := range candidates {
		return c, true
	}
	return "", false
}
