// Package telemetry collects per-window particle statistics and frame
// timings and writes them as CSV.
package telemetry

// Collector accumulates frame events within fixed windows of simulation time
// and produces WindowStats.
type Collector struct {
	backend   string
	windowSec float64

	windowStartFrame int64
	windowStartTime  float64

	frames      int
	readbacks   int
	stepErrors  int
	resets      int
	movingSum   float64
	movingCount int
}

// NewCollector creates a collector whose windows last windowSec seconds of
// simulation time.
func NewCollector(backend string, windowSec float64) *Collector {
	if windowSec <= 0 {
		windowSec = 10
	}
	return &Collector{backend: backend, windowSec: windowSec}
}

// RecordFrame records one completed simulation step.
func (c *Collector) RecordFrame() { c.frames++ }

// RecordStepError records a step the backend refused.
func (c *Collector) RecordStepError() { c.stepErrors++ }

// RecordReset records a reseed of every particle.
func (c *Collector) RecordReset() { c.resets++ }

// RecordReadback records a readback and folds its moving fraction into the
// window average.
func (c *Collector) RecordReadback(s ParticleStats) {
	c.readbacks++
	c.movingSum += s.MovingFraction()
	c.movingCount++
}

// ShouldFlush reports whether the window ending at simTime is complete.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowSec
}

// Flush produces the stats for the window ending at frame and resets the
// counters. latest is the most recent readback.
func (c *Collector) Flush(frame int64, simTime, timer float64, activeColliders int, latest ParticleStats) WindowStats {
	stats := WindowStats{
		Backend:          c.backend,
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTimeSec:       simTime,
		Timer:            timer,

		Frames:     c.frames,
		Readbacks:  c.readbacks,
		StepErrors: c.stepErrors,
		Resets:     c.resets,

		ActiveColliders: activeColliders,

		Particles:      latest.Count,
		Settled:        latest.Settled,
		Falling:        latest.Falling,
		Rising:         latest.Rising,
		MovingFraction: latest.MovingFraction(),
		HeightMean:     latest.HeightMean,
		HeightStd:      latest.HeightStd,
		HeightP10:      latest.HeightP10,
		HeightP50:      latest.HeightP50,
		HeightP90:      latest.HeightP90,
		SpeedMean:      latest.SpeedMean,
		SpeedMax:       latest.SpeedMax,
	}
	if c.movingCount > 0 {
		stats.MovingFractionAvg = c.movingSum / float64(c.movingCount)
	}

	c.windowStartFrame = frame
	c.windowStartTime = simTime
	c.frames = 0
	c.readbacks = 0
	c.stepErrors = 0
	c.resets = 0
	c.movingSum = 0
	c.movingCount = 0

	return stats
}

// WindowSec returns the window length in simulation seconds.
func (c *Collector) WindowSec() float64 { return c.windowSec }
