package maskedlm

import (
	"context"
	"sync"
)

// SerializingEngine wraps an Engine that holds mutable internal state
// (a GPU/tensor-runtime context) and cannot itself tolerate concurrent
// forward passes. It serializes all Infer calls behind a mutex so the
// Adapter can be shared safely across concurrently-processed pages
// (§5: "the model holds mutable internal state").
type SerializingEngine struct {
	mu    sync.Mutex
	inner Engine
}

// NewSerializingEngine wraps inner.
func NewSerializingEngine(inner Engine) *SerializingEngine {
	return &SerializingEngine{inner: inner}
}

// Ready delegates to the wrapped engine.
func (s *SerializingEngine) Ready() bool {
	return s.inner.Ready()
}

// Infer serializes access to the wrapped engine's Infer method.
func (s *SerializingEngine) Infer(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Infer(ctx, inputIDs, attentionMask, tokenTypeIDs)
}
