package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/gpgpu/ui"
)

// Mouse sensitivity for camera orbit, radians per pixel.
const orbitSensitivity = 0.005

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		g.sim.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := g.sim.ResetAll(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}

	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}

	g.handleCameraInput()
	g.handlePointer()

	if g.overlays.IsEnabled(ui.OverlayInspector) {
		mouse := rl.GetMousePosition()
		g.inspector.HandleInput(mouse.X, mouse.Y, g.sim.Colliders(), g.camera, float32(g.cfg.Pointer.PlaneY))
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.inspector.Resize(int32(w), int32(h))
	g.perfPanel.SetPosition(int32(w)-230, int32(h)-140)
}

// handleCameraInput orbits on right drag and zooms on wheel or +/-.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Orbit(-d.X*orbitSensitivity, d.Y*orbitSensitivity)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handlePointer moves the pointer collider with the mouse while Space is held.
func (g *Game) handlePointer() {
	if !g.cfg.Pointer.Enabled {
		return
	}
	held := rl.IsKeyDown(rl.KeySpace)
	if !held && !g.pointerHeld {
		return
	}
	g.pointerHeld = held

	var p mgl32.Vec3
	ok := false
	if held {
		mouse := rl.GetMousePosition()
		p, ok = g.camera.ScreenToPlane(mouse.X, mouse.Y, float32(g.cfg.Pointer.PlaneY))
	}
	g.sim.SetPointer(p, ok)
}
