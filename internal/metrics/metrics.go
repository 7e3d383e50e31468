// Package metrics tracks small in-process counters for one export run:
// how many words were placeheld, how many LM calls were made, and how
// many watermark paragraphs were removed. There is no persistence or
// aggregation service here, unlike the teacher's DefraDB-backed query
// layer — this is process-local instrumentation for a CLI run.
package metrics

import "sync/atomic"

// Counters is safe for concurrent use across the page-level
// concurrency C6/C7 run under.
type Counters struct {
	placeholders      atomic.Int64
	lmCalls           atomic.Int64
	lmFailures        atomic.Int64
	confusionApplied  atomic.Int64
	watermarksRemoved atomic.Int64
}

// New returns a fresh, zeroed Counters.
func New() *Counters {
	return &Counters{}
}

// IncPlaceholder records one word box becoming (or staying) a
// placeholder.
func (c *Counters) IncPlaceholder() {
	if c != nil {
		c.placeholders.Add(1)
	}
}

// IncLMCall records one masked-LM inference call.
func (c *Counters) IncLMCall() {
	if c != nil {
		c.lmCalls.Add(1)
	}
}

// IncLMFailure records one masked-LM inference call that returned an
// error.
func (c *Counters) IncLMFailure() {
	if c != nil {
		c.lmFailures.Add(1)
	}
}

// IncConfusionApplied records one confusion-pair correction applied.
func (c *Counters) IncConfusionApplied() {
	if c != nil {
		c.confusionApplied.Add(1)
	}
}

// AddWatermarksRemoved records n watermark paragraphs removed by the
// multi-page assembler.
func (c *Counters) AddWatermarksRemoved(n int) {
	if c != nil {
		c.watermarksRemoved.Add(int64(n))
	}
}

// Snapshot is a point-in-time read of every counter.
type Snapshot struct {
	Placeholders      int64
	LMCalls           int64
	LMFailures        int64
	ConfusionApplied  int64
	WatermarksRemoved int64
}

// Snapshot reads the current counter values. A nil receiver returns a
// zero Snapshot.
func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Placeholders:      c.placeholders.Load(),
		LMCalls:           c.lmCalls.Load(),
		LMFailures:        c.lmFailures.Load(),
		ConfusionApplied:  c.confusionApplied.Load(),
		WatermarksRemoved: c.watermarksRemoved.Load(),
	}
}
