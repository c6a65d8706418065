// Package game runs the windowed particle view: it drives a sim.Simulation
// once per rendered frame and draws the result with raylib.
package game

import (
	"github.com/pthm-cable/gpgpu/camera"
	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/inspector"
	"github.com/pthm-cable/gpgpu/renderer"
	"github.com/pthm-cable/gpgpu/sim"
	"github.com/pthm-cable/gpgpu/ui"
)

// MaxFrameDT caps the simulated time per frame so a stall does not turn into
// one huge timer jump.
const MaxFrameDT = 1.0 / 20.0

// Game holds the windowed application state.
type Game struct {
	cfg *config.Config
	sim *sim.Simulation

	camera    *camera.Camera
	particles *renderer.ParticleRenderer
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	overlays  *ui.OverlayRegistry
	inspector *inspector.Inspector

	pointerHeld bool

	screenWidth, screenHeight float32
}

// NewGame creates the simulation and view. It needs an open raylib window.
func NewGame(cfg *config.Config, opts sim.Options) (*Game, error) {
	s, err := sim.New(cfg, opts)
	if err != nil {
		return nil, err
	}

	w, h := cfg.Derived.ScreenW32, cfg.Derived.ScreenH32
	cam := camera.New(w, h,
		float32(cfg.Camera.Distance),
		float32(cfg.Camera.Yaw),
		float32(cfg.Camera.Pitch),
		float32(cfg.Camera.FOV),
	)
	cam.SetZoomLimits(float32(cfg.Camera.MinDistance), float32(cfg.Camera.MaxDistance))

	g := &Game{
		cfg:          cfg,
		sim:          s,
		camera:       cam,
		particles:    renderer.NewParticleRenderer(float32(cfg.Render.PointSize)),
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(int32(w)-230, int32(h)-140, 220),
		overlays:     ui.NewOverlayRegistry(),
		inspector:    inspector.NewInspector(int32(w), int32(h)),
		screenWidth:  w,
		screenHeight: h,
	}
	g.overlays.SetEnabled(ui.OverlayHUD, cfg.Render.ShowHUD)
	g.overlays.SetEnabled(ui.OverlayColliders, true)
	g.overlays.SetEnabled(ui.OverlayFloor, true)
	return g, nil
}

// Update handles input and advances the simulation by the frame time.
func (g *Game) Update(frameTime float32) {
	g.handleInput()
	g.sim.Update(min(frameTime, MaxFrameDT))
}

// Frame returns the number of frames simulated.
func (g *Game) Frame() int64 { return g.sim.Frame() }

// Unload releases GPU resources and closes output files.
func (g *Game) Unload() {
	g.sim.Unload()
}
