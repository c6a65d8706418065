// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/gpgpu/kernel"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Backend names accepted by simulation.backend.
const (
	BackendCPU      = "cpu"
	BackendTexture  = "texture"
	BackendFeedback = "feedback"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Origins    OriginsConfig    `yaml:"origins"`
	Colliders  []ColliderConfig `yaml:"colliders"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Render     RenderConfig     `yaml:"render"`
	Camera     CameraConfig     `yaml:"camera"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds the particle update parameters.
type SimulationConfig struct {
	Backend      string  `yaml:"backend"`       // cpu, texture or feedback
	TextureSize  int     `yaml:"texture_size"`  // Particles = texture_size^2
	MaxColliders int     `yaml:"max_colliders"` // Collider slots compiled into the shaders
	TimerSpeed   float64 `yaml:"timer_speed"`   // Timer advance per second
	Seed         int64   `yaml:"seed"`
	Parallel     bool    `yaml:"parallel"` // CPU backend fans frames out to workers
}

// OriginsConfig selects the rest layout particles reseed to.
type OriginsConfig struct {
	Shape string  `yaml:"shape"` // sphere, cube or plane
	Scale float64 `yaml:"scale"`
}

// ColliderConfig describes one spherical collider.
type ColliderConfig struct {
	Position [3]float64  `yaml:"position"`
	Radius   float64     `yaml:"radius"`
	Orbit    OrbitConfig `yaml:"orbit"`
}

// OrbitConfig moves a collider on a horizontal circle around its position.
// A zero radius keeps the collider fixed.
type OrbitConfig struct {
	Radius float64 `yaml:"radius"`
	Speed  float64 `yaml:"speed"` // Radians per second
	Phase  float64 `yaml:"phase"`
}

// PointerConfig holds the mouse-driven collider.
type PointerConfig struct {
	Enabled bool    `yaml:"enabled"`
	Radius  float64 `yaml:"radius"`
	PlaneY  float64 `yaml:"plane_y"` // Height of the plane the mouse is projected onto
}

// RenderConfig holds drawing parameters.
type RenderConfig struct {
	ReadbackInterval int     `yaml:"readback_interval"` // Frames between GPU readbacks (1 = every frame)
	PointSize        float64 `yaml:"point_size"`
	ShowHUD          bool    `yaml:"show_hud"`
}

// CameraConfig holds the orbit camera defaults.
type CameraConfig struct {
	Distance    float64 `yaml:"distance"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	Yaw         float64 `yaml:"yaw"`   // Radians
	Pitch       float64 `yaml:"pitch"` // Radians
	FOV         float64 `yaml:"fov"`   // Vertical field of view, degrees
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds of simulation per stats row
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ParticleCount int     // TextureSize^2
	TimerSpeed32  float32 // Simulation.TimerSpeed as float32
	ScreenW32     float32 // Screen.Width as float32
	ScreenH32     float32 // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Defaults parses the embedded defaults without validation.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Simulation.Backend {
	case BackendCPU, BackendTexture, BackendFeedback:
	default:
		return fmt.Errorf("simulation.backend %q: want cpu, texture or feedback", c.Simulation.Backend)
	}
	if c.Simulation.TextureSize <= 0 {
		return fmt.Errorf("simulation.texture_size must be positive, got %d", c.Simulation.TextureSize)
	}
	if c.Simulation.MaxColliders < 1 || c.Simulation.MaxColliders > kernel.MaxCollidersLimit {
		return fmt.Errorf("simulation.max_colliders must be in [1, %d], got %d", kernel.MaxCollidersLimit, c.Simulation.MaxColliders)
	}
	slots := len(c.Colliders)
	if c.Pointer.Enabled {
		slots++
	}
	if slots > c.Simulation.MaxColliders {
		return fmt.Errorf("%d colliders configured for %d slots", slots, c.Simulation.MaxColliders)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ParticleCount = c.Simulation.TextureSize * c.Simulation.TextureSize
	c.Derived.TimerSpeed32 = float32(c.Simulation.TimerSpeed)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Render.ReadbackInterval < 1 {
		c.Render.ReadbackInterval = 1
	}
	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = 60
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Colliders = append([]ColliderConfig(nil), c.Colliders...)
	return &out
}

// Refresh validates c and recomputes derived values after fields were
// changed in code.
func (c *Config) Refresh() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
