package maskedlm

import (
	"context"
	"sync/atomic"
)

// MockEngine is an Engine for tests, mirroring the teacher's
// providers.MockClient: deterministic, configurable, and it counts
// calls instead of talking to a real model.
type MockEngine struct {
	// VocabSize must match the tokenizer's vocabulary size.
	VocabSize int
	// LogitsFor, if set, returns the logits row for a given mask
	// position's input id context; tests typically return a fixed
	// row regardless of input.
	LogitsFor func(inputIDs []int) [][]float32

	readyState atomic.Bool
	calls      atomic.Int64
}

// NewMockEngine returns a ready MockEngine.
func NewMockEngine(vocabSize int) *MockEngine {
	e := &MockEngine{VocabSize: vocabSize}
	e.readyState.Store(true)
	return e
}

// SetReady toggles readiness for testing LM-unavailable scenarios.
func (e *MockEngine) SetReady(ready bool) { e.readyState.Store(ready) }

// Ready reports the configured readiness.
func (e *MockEngine) Ready() bool { return e.readyState.Load() }

// Calls returns the number of Infer invocations so far.
func (e *MockEngine) Calls() int64 { return e.calls.Load() }

// Infer returns a deterministic logits matrix: either from LogitsFor,
// or uniform zeros (which softmax turns into a uniform distribution).
func (e *MockEngine) Infer(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int) ([][]float32, error) {
	e.calls.Add(1)
	if e.LogitsFor != nil {
		return e.LogitsFor(inputIDs), nil
	}
	rows := make([][]float32, len(inputIDs))
	for i := range rows {
		rows[i] = make([]float32, e.VocabSize)
	}
	return rows, nil
}
