package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gpgpu/renderer"
	"github.com/pthm-cable/gpgpu/sim"
	"github.com/pthm-cable/gpgpu/ui"
)

const title = "GPGPU Particles"

// Draw renders one frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	if g.overlays.IsEnabled(ui.OverlayStateView) {
		g.drawStateView()
	} else {
		g.drawScene()
	}

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		g.drawHUD()
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.sim.PerfStats())
	}
	if g.overlays.IsEnabled(ui.OverlayInspector) {
		g.inspector.Draw(g.sim.Colliders())
	}
	g.hud.DrawControls(int32(g.screenHeight), append(g.overlays.Legend(),
		"[R] Reset", "[Enter] Pause", "[Space] Pointer", "[RMB] Orbit"))

	rl.EndDrawing()
	g.sim.RecordPresent()
}

func (g *Game) drawScene() {
	rl.BeginMode3D(renderer.Camera3D(g.camera))

	if g.overlays.IsEnabled(ui.OverlayFloor) {
		renderer.DrawFloor(20, 0.5)
	}
	g.particles.Draw(g.sim.Positions())
	if g.overlays.IsEnabled(ui.OverlayColliders) {
		selected := -1
		if g.overlays.IsEnabled(ui.OverlayInspector) {
			selected = g.inspector.SelectedSlot(g.sim.Colliders())
		}
		renderer.DrawColliders(g.sim.Colliders().Vectors(), selected)
	}

	rl.EndMode3D()
}

// drawStateView runs the kernel on the current state straight to the screen.
// Only the texture backend keeps state in a texture the fragment kernel can
// read.
func (g *Game) drawStateView() {
	tb, ok := g.sim.Backend().(*sim.TextureBackend)
	if !ok {
		rl.DrawText("state view needs the texture backend", 10, int32(g.screenHeight)/2, 20, rl.Gray)
		return
	}
	if err := tb.DrawState(g.sim.Timer(), g.sim.PackedColliders(), int(g.screenWidth), int(g.screenHeight)); err != nil {
		slog.Warn("state view failed", "error", err)
	}
}

func (g *Game) drawHUD() {
	reg := g.sim.Colliders()
	g.hud.Draw(ui.HUDData{
		Title:        title,
		Backend:      g.sim.Backend().Name(),
		Stats:        g.sim.Latest(),
		Frame:        g.sim.Frame(),
		Timer:        g.sim.Timer(),
		FPS:          rl.GetFPS(),
		Paused:       g.sim.Paused(),
		Colliders:    reg.Len(),
		Slots:        reg.Capacity(),
		Pointer:      g.pointerHeld,
		SettledColor: renderer.ColorSettled,
		FallingColor: renderer.ColorFalling,
		RisingColor:  renderer.ColorRising,
	})
}
