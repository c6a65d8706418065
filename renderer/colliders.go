package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/gpgpu/kernel"
)

var (
	ColorCollider         = rl.Color{R: 255, G: 80, B: 120, A: 255}
	ColorColliderSelected = rl.Color{R: 255, G: 230, B: 80, A: 255}
	ColorFloor            = rl.Color{R: 60, G: 70, B: 80, A: 255}
)

// DrawColliders draws every non-empty collider slot as a wire sphere.
// selected is the slot to highlight, or -1. Must be called inside
// rl.BeginMode3D.
func DrawColliders(colliders []mgl32.Vec4, selected int) {
	for i, c := range colliders {
		if c.W() <= 0 {
			continue
		}
		color := ColorCollider
		if i == selected {
			color = ColorColliderSelected
		}
		rl.DrawSphereWires(rl.Vector3{X: c.X(), Y: c.Y(), Z: c.Z()}, c.W(), 8, 12, color)
	}
}

// DrawFloor draws a grid at the height particles bounce off.
func DrawFloor(slices int32, spacing float32) {
	rl.PushMatrix()
	rl.Translatef(0, kernel.Floor, 0)
	rl.DrawGrid(slices, spacing)
	rl.PopMatrix()
}
