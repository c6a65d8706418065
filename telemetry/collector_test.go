package telemetry

import "testing"

func TestCollectorWindows(t *testing.T) {
	c := NewCollector("cpu", 1.0)

	if c.ShouldFlush(0.5) {
		t.Error("window should not be complete after half its length")
	}
	if !c.ShouldFlush(1.0) {
		t.Error("window should be complete at its length")
	}

	for i := 0; i < 3; i++ {
		c.RecordFrame()
	}
	c.RecordStepError()
	c.RecordReset()
	c.RecordReadback(ParticleStats{Count: 4, Falling: 2})
	latest := ParticleStats{Count: 4, Falling: 1, Settled: 3}
	c.RecordReadback(latest)

	s := c.Flush(60, 1.0, 0.1, 2, latest)

	if s.Backend != "cpu" || s.WindowStartFrame != 0 || s.WindowEndFrame != 60 {
		t.Errorf("window identity = %q %d..%d", s.Backend, s.WindowStartFrame, s.WindowEndFrame)
	}
	if s.Frames != 3 || s.StepErrors != 1 || s.Resets != 1 || s.Readbacks != 2 {
		t.Errorf("counters = %+v", s)
	}
	if s.MovingFraction != 0.25 {
		t.Errorf("moving fraction = %v, want 0.25", s.MovingFraction)
	}
	if s.MovingFractionAvg != 0.375 {
		t.Errorf("moving fraction avg = %v, want 0.375", s.MovingFractionAvg)
	}
	if s.ActiveColliders != 2 || s.Particles != 4 {
		t.Errorf("colliders/particles = %d/%d", s.ActiveColliders, s.Particles)
	}

	// Counters reset and the next window starts where this one ended.
	if c.ShouldFlush(1.5) {
		t.Error("new window should start at the flush time")
	}
	next := c.Flush(120, 2.0, 0.2, 2, latest)
	if next.Frames != 0 || next.Readbacks != 0 || next.WindowStartFrame != 60 {
		t.Errorf("second window = %+v", next)
	}
}

func TestCollectorDefaultWindow(t *testing.T) {
	if got := NewCollector("texture", 0).WindowSec(); got != 10 {
		t.Errorf("default window = %v, want 10", got)
	}
}
