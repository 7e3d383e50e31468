package metrics

import "testing"

func TestCountersSnapshot(t *testing.T) {
	c := New()
	c.IncPlaceholder()
	c.IncPlaceholder()
	c.IncLMCall()
	c.IncLMFailure()
	c.IncConfusionApplied()
	c.AddWatermarksRemoved(3)

	snap := c.Snapshot()
	if snap.Placeholders != 2 || snap.LMCalls != 1 || snap.LMFailures != 1 ||
		snap.ConfusionApplied != 1 || snap.WatermarksRemoved != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestNilCountersAreNoOps(t *testing.T) {
	var c *Counters
	c.IncPlaceholder()
	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Fatalf("expected zero snapshot for nil counters, got %+v", snap)
	}
}
