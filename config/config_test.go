package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendTexture, cfg.Simulation.Backend)
	assert.Equal(t, 8, cfg.Simulation.MaxColliders)
	assert.Equal(t, 256*256, cfg.Derived.ParticleCount)
	assert.Len(t, cfg.Colliders, 2)
	assert.Equal(t, float32(1280), cfg.Derived.ScreenW32)
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	user := "simulation:\n  backend: cpu\n  texture_size: 32\ncolliders: []\n"
	require.NoError(t, os.WriteFile(path, []byte(user), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendCPU, cfg.Simulation.Backend)
	assert.Equal(t, 1024, cfg.Derived.ParticleCount)
	assert.Empty(t, cfg.Colliders)
	// Untouched keys keep their defaults.
	assert.Equal(t, 8, cfg.Simulation.MaxColliders)
	assert.Equal(t, "sphere", cfg.Origins.Shape)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "simulation:\n  backend: vulkan\n"},
		{"zero texture", "simulation:\n  texture_size: 0\n"},
		{"too many slots", "simulation:\n  max_colliders: 65\n"},
		{"colliders exceed slots", "simulation:\n  max_colliders: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Simulation, again.Simulation)
	assert.Equal(t, cfg.Colliders, again.Colliders)
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() { global = saved }()

	assert.Panics(t, func() { Cfg() })
	require.NoError(t, Init(""))
	assert.NotPanics(t, func() { Cfg() })
}

func TestCloneAndRefresh(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	c := cfg.Clone()
	c.Colliders[0].Radius = 9
	c.Simulation.TimerSpeed = 0.5
	assert.NotEqual(t, 9.0, cfg.Colliders[0].Radius, "clone owns its collider list")

	require.NoError(t, c.Refresh())
	assert.Equal(t, float32(0.5), c.Derived.TimerSpeed32)
	assert.Equal(t, float32(0.1), cfg.Derived.TimerSpeed32)

	c.Simulation.Backend = "vulkan"
	assert.Error(t, c.Refresh())
}
