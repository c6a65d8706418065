package sim

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gpgpu/colliders"
	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/origins"
	"github.com/pthm-cable/gpgpu/telemetry"
)

// Options configures a simulation run.
type Options struct {
	LogStats       bool    // Log window stats via slog
	StatsWindowSec float64 // Overrides telemetry.stats_window when > 0
	OutputDir      string  // CSV and config snapshot directory, empty disables output
	Headless       bool    // No GL context; forces the cpu backend
}

// Simulation owns one particle system and advances it one frame per Update.
type Simulation struct {
	cfg *config.Config

	backend   Backend
	colliders *colliders.Registry
	pointer   ecs.Entity

	origins   []float32
	positions []float32 // last readback
	packed    []float32 // collider uniform data for the current frame

	timer      float32
	timerSpeed float32
	simTime    float64
	frame      int64
	paused     bool

	readbackInterval int
	lastReadback     int64
	latest           telemetry.ParticleStats

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// New builds a simulation from cfg. GPU backends need a current GL context.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	n := cfg.Derived.ParticleCount
	seeds, err := origins.Generate(cfg.Origins.Shape, n, float32(cfg.Origins.Scale), cfg.Simulation.Seed)
	if err != nil {
		return nil, err
	}

	positions := make([]float32, len(seeds))
	copy(positions, seeds)

	var backend Backend
	if opts.Headless && cfg.Simulation.Backend != config.BackendCPU {
		slog.Info("headless run uses a cpu backend", "configured", cfg.Simulation.Backend)
		backend, err = NewHeadlessBackend(cfg, positions, seeds)
	} else {
		backend, err = NewBackend(cfg, positions, seeds)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", cfg.Simulation.Backend, err)
	}

	reg, err := colliders.FromConfig(cfg)
	if err != nil {
		backend.Unload()
		return nil, err
	}

	s := &Simulation{
		cfg:              cfg,
		backend:          backend,
		colliders:        reg,
		origins:          seeds,
		positions:        positions,
		timerSpeed:       cfg.Derived.TimerSpeed32,
		readbackInterval: cfg.Render.ReadbackInterval,
		lastReadback:     -1,
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:         opts.LogStats,
	}
	s.latest = telemetry.CountStates(positions)

	if cfg.Pointer.Enabled {
		if s.pointer, err = reg.SpawnPointer(float32(cfg.Pointer.Radius)); err != nil {
			backend.Unload()
			return nil, fmt.Errorf("pointer collider: %w", err)
		}
	}

	window := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		window = opts.StatsWindowSec
	}
	s.collector = telemetry.NewCollector(backend.Name(), window)

	if s.outputManager, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		backend.Unload()
		return nil, err
	}
	if err := s.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	slog.Info("simulation created",
		"backend", backend.Name(),
		"particles", backend.Count(),
		"colliders", reg.Len(),
		"slots", reg.Capacity(),
		"origins", cfg.Origins.Shape,
		"run_id", s.outputManager.RunID(),
	)
	return s, nil
}

// Update advances the simulation by dt seconds: one kernel pass, an optional
// readback and, when a window closes, a telemetry flush. Paused simulations
// do nothing.
func (s *Simulation) Update(dt float32) {
	if s.paused {
		return
	}
	s.perfCollector.StartFrame()

	s.perfCollector.StartPhase(telemetry.PhaseColliders)
	s.colliders.Update(float32(s.simTime))
	s.packed = s.colliders.Pack(s.packed)

	s.perfCollector.StartPhase(telemetry.PhaseSimulate)
	s.timer += dt * s.timerSpeed
	if err := s.backend.Step(s.timer, s.packed); err != nil {
		s.collector.RecordStepError()
		slog.Warn("simulation step failed", "frame", s.frame, "error", err)
	} else {
		s.collector.RecordFrame()
	}
	s.simTime += float64(dt)
	s.frame++

	s.perfCollector.StartPhase(telemetry.PhaseReadback)
	if s.frame%int64(s.readbackInterval) == 0 {
		s.readback()
	}

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perfCollector.EndFrame()
}

func (s *Simulation) readback() {
	if err := s.backend.Positions(s.positions); err != nil {
		slog.Warn("readback failed", "frame", s.frame, "error", err)
		return
	}
	s.lastReadback = s.frame
	s.latest = telemetry.CountStates(s.positions)
	s.collector.RecordReadback(s.latest)
}

// flushTelemetry closes the stats window when it is due.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.simTime) {
		return
	}
	if s.lastReadback != s.frame {
		s.readback()
	}

	full := telemetry.ComputeParticleStats(s.positions)
	stats := s.collector.Flush(s.frame, s.simTime, float64(s.timer), s.colliders.Len(), full)
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats.ToCSV(s.backend.Name(), s.frame)); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// SetPointer moves the pointer collider to p and switches it on or off.
// It is a no-op when the pointer is disabled in the config.
func (s *Simulation) SetPointer(p mgl32.Vec3, active bool) {
	if s.pointer.IsZero() {
		return
	}
	if active {
		if err := s.colliders.Move(s.pointer, p); err != nil {
			slog.Warn("moving pointer collider", "error", err)
			return
		}
	}
	if err := s.colliders.SetPointerActive(s.pointer, active); err != nil {
		slog.Warn("toggling pointer collider", "error", err)
	}
}

// ResetAll puts every particle back on its origin at rest.
func (s *Simulation) ResetAll() error {
	copy(s.positions, s.origins)
	if err := s.backend.Reset(s.positions); err != nil {
		return err
	}
	s.lastReadback = s.frame
	s.latest = telemetry.CountStates(s.positions)
	s.collector.RecordReset()
	slog.Info("particles reset", "frame", s.frame, "particles", s.backend.Count())
	return nil
}

// SetStatsCallback sets a function called with each flushed window.
func (s *Simulation) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// TogglePause flips the paused state and returns it.
func (s *Simulation) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// Paused reports whether Update is suspended.
func (s *Simulation) Paused() bool { return s.paused }

// Positions returns the last readback. The slice is reused between frames.
func (s *Simulation) Positions() []float32 { return s.positions }

// Latest returns the state counts from the last readback.
func (s *Simulation) Latest() telemetry.ParticleStats { return s.latest }

// PerfStats returns the rolling frame timings.
func (s *Simulation) PerfStats() telemetry.PerfStats { return s.perfCollector.Stats() }

// RecordPresent marks a presented frame for the FPS figure.
func (s *Simulation) RecordPresent() { s.perfCollector.RecordPresent() }

// Colliders returns the collider registry.
func (s *Simulation) Colliders() *colliders.Registry { return s.colliders }

// PackedColliders returns the collider data used by the last Update.
func (s *Simulation) PackedColliders() []float32 { return s.packed }

// Backend returns the backend the simulation runs on.
func (s *Simulation) Backend() Backend { return s.backend }

// SetTimerSpeed changes how fast the kernel timer advances per second.
func (s *Simulation) SetTimerSpeed(v float32) { s.timerSpeed = v }

// TimerSpeed returns the timer advance per second.
func (s *Simulation) TimerSpeed() float32 { return s.timerSpeed }

// Timer returns the kernel clock.
func (s *Simulation) Timer() float32 { return s.timer }

// SimTime returns seconds simulated so far.
func (s *Simulation) SimTime() float64 { return s.simTime }

// Frame returns the number of frames simulated.
func (s *Simulation) Frame() int64 { return s.frame }

// Unload releases the backend and closes output files.
func (s *Simulation) Unload() {
	s.backend.Unload()
	if err := s.outputManager.Close(); err != nil {
		slog.Error("closing output", "error", err)
	}
}
