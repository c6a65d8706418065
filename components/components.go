// Package components defines ECS components for colliders.
package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Slot is the collider's index in the packed uniform array. Slots are
// stable for the collider's lifetime so the kernel sees colliders in a fixed
// order.
type Slot struct {
	Index int `inspect:"label"`
}

// Sphere is the collider's current shape in world space.
type Sphere struct {
	Center mgl32.Vec3 `inspect:"label,fmt:%.2f"`
	Radius float32    `inspect:"bar,max:2"`
}

// Vec4 returns the (x, y, z, radius) form the kernel consumes.
func (s Sphere) Vec4() mgl32.Vec4 {
	return s.Center.Vec4(s.Radius)
}

// Orbit moves a collider on a horizontal circle around Anchor.
// A zero Radius pins the collider at Anchor.
type Orbit struct {
	Anchor mgl32.Vec3 `inspect:"label,fmt:%.2f"`
	Radius float32    `inspect:"bar,max:3"`
	Speed  float32    `inspect:"label,fmt:%.2f rad/s"`
	Phase  float32    `inspect:"angle"`
}

// At returns the orbit position at time t.
func (o Orbit) At(t float32) mgl32.Vec3 {
	if o.Radius == 0 {
		return o.Anchor
	}
	a := float64(o.Speed*t + o.Phase)
	return o.Anchor.Add(mgl32.Vec3{
		float32(math.Cos(a)) * o.Radius,
		0,
		float32(math.Sin(a)) * o.Radius,
	})
}

// Pointer marks the collider that follows the mouse.
type Pointer struct {
	Active bool `inspect:"bool"`
}
