package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/gpgpu/colliders"
	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/kernel"
	"github.com/pthm-cable/gpgpu/origins"
	"github.com/pthm-cable/gpgpu/telemetry"
)

const frameDT = float32(1.0 / 60)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := "simulation:\n  backend: texture\n  texture_size: 8\n  parallel: false\n" +
		"telemetry:\n  stats_window: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func seeds(t *testing.T, cfg *config.Config) []float32 {
	t.Helper()
	out, err := origins.Generate(cfg.Origins.Shape, cfg.Derived.ParticleCount, float32(cfg.Origins.Scale), cfg.Simulation.Seed)
	require.NoError(t, err)
	return out
}

func TestCPUBackendRejectsBadData(t *testing.T) {
	_, err := NewCPUBackend(2, 2, make([]float32, 16), make([]float32, 12), false)
	assert.ErrorIs(t, err, ErrSize)

	_, err = NewCPUBackend(0, 0, nil, nil, false)
	assert.ErrorIs(t, err, ErrSize)

	_, err = NewCPUBufferBackend(make([]float32, 8), make([]float32, 4), false)
	assert.ErrorIs(t, err, ErrSize)
}

func TestCPUBackendStepMatchesKernel(t *testing.T) {
	positions := []float32{
		0.1, 0.2, 0.3, 0,
		0.5, -1.0, 0.0, 0.02,
		0.0, -1.9, 0.1, 0.2,
		0.3, -1.0, 0.0, 0,
	}
	origin := make([]float32, len(positions))
	flat := []float32{0.3, -1.0, 0.1, 0.5}

	for _, parallel := range []bool{false, true} {
		b, err := NewCPUBackend(2, 2, positions, origin, parallel)
		require.NoError(t, err)
		require.Equal(t, 4, b.Count())

		src, dst, org := kernel.NewImage(2, 2), kernel.NewImage(2, 2), kernel.NewImage(2, 2)
		copy(src.Pix, positions)
		require.NoError(t, kernel.Run(src, dst, org, 0.25, kernel.Colliders(flat)))

		require.NoError(t, b.Step(0.25, flat))
		got := make([]float32, len(positions))
		require.NoError(t, b.Positions(got))
		assert.Equal(t, dst.Pix, got, "parallel=%v", parallel)
	}
}

func TestCPUBackendSwapsEachStep(t *testing.T) {
	positions := []float32{0, 0, 0, 0.01}
	b, err := NewCPUBufferBackend(positions, make([]float32, 4), false)
	require.NoError(t, err)
	assert.Equal(t, "cpu-buffer", b.Name())

	got := make([]float32, 4)
	var prev float32
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Step(0, nil))
		require.NoError(t, b.Positions(got))
		assert.Greater(t, got[3], prev, "each step builds on the last")
		prev = got[3]
	}

	require.NoError(t, b.Reset(positions))
	require.NoError(t, b.Positions(got))
	assert.Equal(t, positions, got)

	assert.ErrorIs(t, b.Positions(make([]float32, 3)), ErrSize)
	assert.ErrorIs(t, b.Reset(nil), ErrSize)
}

func TestNewBackendUnknownName(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Backend = "vulkan"
	_, err := NewBackend(cfg, nil, nil)
	assert.Error(t, err)
}

func TestHeadlessUsesCPU(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Headless: true})
	require.NoError(t, err)
	defer s.Unload()

	assert.Equal(t, "cpu", s.Backend().Name())
	assert.Equal(t, config.BackendTexture, cfg.Simulation.Backend, "caller's config is untouched")
	assert.Equal(t, 64, s.Backend().Count())
	assert.Equal(t, 64, s.Latest().Settled, "particles start at rest on their origins")
}

func TestHeadlessFeedbackUsesBufferLayout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Backend = config.BackendFeedback
	s, err := New(cfg, Options{Headless: true})
	require.NoError(t, err)
	defer s.Unload()

	assert.Equal(t, "cpu-buffer", s.Backend().Name())
	assert.Equal(t, 64, s.Backend().Count())
}

func TestFirstFrameMatchesKernel(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Headless: true})
	require.NoError(t, err)
	defer s.Unload()

	reg, err := colliders.FromConfig(cfg)
	require.NoError(t, err)
	_, err = reg.SpawnPointer(float32(cfg.Pointer.Radius))
	require.NoError(t, err)
	reg.Update(0)

	start := seeds(t, cfg)
	src, dst, org := kernel.NewImage(8, 8), kernel.NewImage(8, 8), kernel.NewImage(8, 8)
	copy(src.Pix, start)
	copy(org.Pix, start)
	require.NoError(t, kernel.Run(src, dst, org, frameDT*cfg.Derived.TimerSpeed32, reg.Vectors()))

	s.Update(frameDT)
	assert.Equal(t, int64(1), s.Frame())
	assert.Equal(t, dst.Pix, s.Positions())
	assert.Equal(t, reg.Pack(nil), s.PackedColliders())
}

func TestUpdateFlushesWindows(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	s, err := New(cfg, Options{Headless: true, OutputDir: dir})
	require.NoError(t, err)

	var windows []telemetry.WindowStats
	s.SetStatsCallback(func(w telemetry.WindowStats) { windows = append(windows, w) })

	for i := 0; i < 40; i++ {
		s.Update(frameDT)
	}
	s.Unload()

	require.Len(t, windows, 1)
	w := windows[0]
	assert.Equal(t, "cpu", w.Backend)
	assert.Equal(t, 64, w.Particles)
	assert.Equal(t, 3, w.ActiveColliders, "two configured colliders plus the pointer")
	assert.Positive(t, w.Frames)
	assert.Equal(t, w.Frames, w.Readbacks)
	assert.Zero(t, w.StepErrors)

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestResetAllRestoresOrigins(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Headless: true})
	require.NoError(t, err)
	defer s.Unload()

	for i := 0; i < 10; i++ {
		s.Update(frameDT)
	}
	require.NoError(t, s.ResetAll())
	assert.Equal(t, seeds(t, cfg), s.Positions())
	assert.Equal(t, 64, s.Latest().Settled)

	got := make([]float32, 64*4)
	require.NoError(t, s.Backend().Positions(got))
	assert.Equal(t, seeds(t, cfg), got)
}

func TestPauseStopsFrames(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Headless: true})
	require.NoError(t, err)
	defer s.Unload()

	s.Update(frameDT)
	assert.True(t, s.TogglePause())
	s.Update(frameDT)
	assert.Equal(t, int64(1), s.Frame())
	assert.False(t, s.TogglePause())
	s.Update(frameDT)
	assert.Equal(t, int64(2), s.Frame())
}

func TestPointerPacksOnlyWhileActive(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Headless: true})
	require.NoError(t, err)
	defer s.Unload()

	// Two configured colliders take slots 0 and 1; the pointer is slot 2.
	p := mgl32.Vec3{0.5, -1, 0.25}
	s.SetPointer(p, true)
	s.Update(frameDT)
	assert.Equal(t, []float32{0.5, -1, 0.25, 0.3}, s.PackedColliders()[8:12])

	s.SetPointer(p, false)
	s.Update(frameDT)
	assert.Equal(t, []float32{0, 0, 0, 0}, s.PackedColliders()[8:12])
}

func TestSetTimerSpeed(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, Options{Headless: true})
	require.NoError(t, err)
	defer s.Unload()

	assert.Equal(t, cfg.Derived.TimerSpeed32, s.TimerSpeed())
	s.SetTimerSpeed(0)
	s.Update(frameDT)
	assert.Zero(t, s.Timer(), "a zero speed freezes the kernel clock")
	assert.Equal(t, int64(1), s.Frame())
}
