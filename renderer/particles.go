// Package renderer draws the particle volume and its colliders in 3D.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gpgpu/camera"
	"github.com/pthm-cable/gpgpu/kernel"
)

// Particle colours by state.
var (
	ColorSettled = rl.Color{R: 120, G: 170, B: 255, A: 200}
	ColorFalling = rl.Color{R: 255, G: 160, B: 60, A: 230}
	ColorRising  = rl.Color{R: 120, G: 230, B: 120, A: 230}
)

// ParticleState classifies a particle by its w component.
type ParticleState uint8

const (
	StateSettled ParticleState = iota
	StateFalling
	StateRising
)

// Classify returns the state a particle with fall velocity w is in.
func Classify(w float32) ParticleState {
	switch {
	case kernel.Settled(w):
		return StateSettled
	case w > 0:
		return StateFalling
	default:
		return StateRising
	}
}

// Color returns the draw colour for a state.
func (s ParticleState) Color() rl.Color {
	switch s {
	case StateFalling:
		return ColorFalling
	case StateRising:
		return ColorRising
	default:
		return ColorSettled
	}
}

// ParticleRenderer draws particles as short vertical strokes, long enough
// to stay visible at any zoom without point-size support.
type ParticleRenderer struct {
	PointSize float32
}

// NewParticleRenderer creates a renderer drawing strokes of pointSize.
func NewParticleRenderer(pointSize float32) *ParticleRenderer {
	if pointSize <= 0 {
		pointSize = 0.01
	}
	return &ParticleRenderer{PointSize: pointSize}
}

// Draw renders positions (4 floats per particle). It must be called inside
// rl.BeginMode3D.
func (r *ParticleRenderer) Draw(positions []float32) {
	half := r.PointSize / 2
	for i := 0; i+3 < len(positions); i += 4 {
		x, y, z := positions[i], positions[i+1], positions[i+2]
		color := Classify(positions[i+3]).Color()
		rl.DrawLine3D(rl.Vector3{X: x, Y: y - half, Z: z}, rl.Vector3{X: x, Y: y + half, Z: z}, color)
	}
}

// Camera3D converts an orbit camera to raylib's camera for BeginMode3D.
func Camera3D(cam *camera.Camera) rl.Camera3D {
	p := cam.Position()
	up := cam.Up()
	return rl.Camera3D{
		Position:   rl.Vector3{X: p.X(), Y: p.Y(), Z: p.Z()},
		Target:     rl.Vector3{X: cam.Target.X(), Y: cam.Target.Y(), Z: cam.Target.Z()},
		Up:         rl.Vector3{X: up.X(), Y: up.Y(), Z: up.Z()},
		Fovy:       cam.FOV,
		Projection: rl.CameraPerspective,
	}
}
