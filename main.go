package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/game"
	"github.com/pthm-cable/gpgpu/sim"
)

func init() {
	// GL calls must come from the thread that created the context.
	runtime.LockOSThread()
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics (forces the cpu backend)")
	backend := flag.String("backend", "", "Override simulation.backend: cpu, texture or feedback")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Origin layout seed (0 = use config)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *backend != "" {
		cfg.Simulation.Backend = *backend
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if err := cfg.Refresh(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	opts := sim.Options{
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
	}

	if *headless {
		runHeadless(cfg, opts, *maxFrames)
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "GPGPU Particles")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape clears the inspector selection.
	rl.SetExitKey(rl.KeyNull)

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "backend", cfg.Simulation.Backend, "error", err)
		return
	}
	defer g.Unload()

	slog.Info("starting simulation",
		"backend", cfg.Simulation.Backend,
		"particles", cfg.Derived.ParticleCount,
		"max_frames", *maxFrames,
	)

	for !rl.WindowShouldClose() {
		g.Update(rl.GetFrameTime())
		g.Draw()

		if *maxFrames > 0 && int(g.Frame()) >= *maxFrames {
			slog.Info("max frames reached", "frame", g.Frame())
			break
		}
	}
}

// headlessDT is the fixed frame time of headless runs.
const headlessDT = float32(1.0 / 60.0)

func runHeadless(cfg *config.Config, opts sim.Options, maxFrames int) {
	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer s.Unload()

	slog.Info("starting headless simulation",
		"seed", cfg.Simulation.Seed,
		"particles", cfg.Derived.ParticleCount,
		"max_frames", maxFrames,
	)

	for {
		s.Update(headlessDT)

		if maxFrames > 0 && int(s.Frame()) >= maxFrames {
			slog.Info("max frames reached", "frame", s.Frame(), "sim_time", s.SimTime())
			return
		}
	}
}
