package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gpgpu/kernel"
)

// ParticleStats summarises one readback of particle state.
type ParticleStats struct {
	Count   int
	Settled int // |w| below the settled threshold
	Falling int // w > 0, moving down
	Rising  int // w < 0, rebounding after a floor bounce

	HeightMean float64
	HeightStd  float64
	HeightP10  float64
	HeightP50  float64
	HeightP90  float64

	SpeedMean float64 // Mean |w| over moving particles
	SpeedMax  float64
}

// ComputeParticleStats classifies particles and computes height and speed
// distributions. positions holds 4 floats per particle.
func ComputeParticleStats(positions []float32) ParticleStats {
	n := len(positions) / 4
	s := ParticleStats{Count: n}
	if n == 0 {
		return s
	}

	heights := make([]float64, n)
	speeds := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y, w := positions[i*4+1], positions[i*4+3]
		heights[i] = float64(y)
		switch {
		case kernel.Settled(w):
			s.Settled++
			continue
		case w > 0:
			s.Falling++
		default:
			s.Rising++
		}
		speeds = append(speeds, math.Abs(float64(w)))
	}

	s.HeightMean, s.HeightStd = stat.PopMeanStdDev(heights, nil)
	sort.Float64s(heights)
	s.HeightP10 = stat.Quantile(0.10, stat.LinInterp, heights, nil)
	s.HeightP50 = stat.Quantile(0.50, stat.LinInterp, heights, nil)
	s.HeightP90 = stat.Quantile(0.90, stat.LinInterp, heights, nil)

	if len(speeds) > 0 {
		s.SpeedMean = stat.Mean(speeds, nil)
		for _, v := range speeds {
			s.SpeedMax = math.Max(s.SpeedMax, v)
		}
	}
	return s
}

// CountStates classifies particles without computing distributions. It is
// cheap enough to run on every readback.
func CountStates(positions []float32) ParticleStats {
	s := ParticleStats{Count: len(positions) / 4}
	for i := 0; i < s.Count; i++ {
		switch w := positions[i*4+3]; {
		case kernel.Settled(w):
			s.Settled++
		case w > 0:
			s.Falling++
		default:
			s.Rising++
		}
	}
	return s
}

// MovingFraction is the share of particles not settled.
func (s ParticleStats) MovingFraction() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Falling+s.Rising) / float64(s.Count)
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID            string  `csv:"run_id"`
	Backend          string  `csv:"backend"`
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Timer            float64 `csv:"timer"`

	// Activity during the window
	Frames     int `csv:"frames"`
	Readbacks  int `csv:"readbacks"`
	StepErrors int `csv:"step_errors"`
	Resets     int `csv:"resets"`

	ActiveColliders int `csv:"active_colliders"`

	// Particle state at window end
	Particles      int     `csv:"particles"`
	Settled        int     `csv:"settled"`
	Falling        int     `csv:"falling"`
	Rising         int     `csv:"rising"`
	MovingFraction float64 `csv:"moving_fraction"`
	HeightMean     float64 `csv:"height_mean"`
	HeightStd      float64 `csv:"height_std"`
	HeightP10      float64 `csv:"height_p10"`
	HeightP50      float64 `csv:"height_p50"`
	HeightP90      float64 `csv:"height_p90"`
	SpeedMean      float64 `csv:"speed_mean"`
	SpeedMax       float64 `csv:"speed_max"`

	// Mean moving fraction over every readback in the window
	MovingFractionAvg float64 `csv:"moving_fraction_avg"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", s.Backend),
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("timer", s.Timer),
		slog.Int("frames", s.Frames),
		slog.Int("readbacks", s.Readbacks),
		slog.Int("step_errors", s.StepErrors),
		slog.Int("resets", s.Resets),
		slog.Int("active_colliders", s.ActiveColliders),
		slog.Int("particles", s.Particles),
		slog.Int("settled", s.Settled),
		slog.Int("falling", s.Falling),
		slog.Int("rising", s.Rising),
		slog.Float64("moving_fraction", s.MovingFraction),
		slog.Float64("moving_fraction_avg", s.MovingFractionAvg),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("height_std", s.HeightStd),
		slog.Float64("height_p50", s.HeightP50),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_max", s.SpeedMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
