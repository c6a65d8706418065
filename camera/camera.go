// Package camera provides an orbit camera for viewing the particle volume.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the camera off the poles, where the view's up vector
// degenerates.
const maxPitch = math.Pi/2 - 0.01

// Camera orbits Target at Distance, looking at it from Yaw (around +Y) and
// Pitch (above the XZ plane).
type Camera struct {
	Target   mgl32.Vec3
	Yaw      float32 // Radians
	Pitch    float32 // Radians
	Distance float32

	// Zoom constraints
	MinDistance, MaxDistance float32

	FOV       float32 // Vertical field of view, degrees
	Near, Far float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	home pose
}

// pose is the part of the camera Reset restores.
type pose struct {
	Target                   mgl32.Vec3
	Yaw, Pitch, Distance     float32
	MinDistance, MaxDistance float32
}

func (c *Camera) currentPose() pose {
	return pose{
		Target:      c.Target,
		Yaw:         c.Yaw,
		Pitch:       c.Pitch,
		Distance:    c.Distance,
		MinDistance: c.MinDistance,
		MaxDistance: c.MaxDistance,
	}
}

// New creates a camera looking at the origin.
func New(viewportW, viewportH, distance, yaw, pitch, fov float32) *Camera {
	c := &Camera{
		Yaw:         yaw,
		Pitch:       clamp(pitch, -maxPitch, maxPitch),
		Distance:    distance,
		MinDistance: distance / 4,
		MaxDistance: distance * 4,
		FOV:         fov,
		Near:        0.01,
		Far:         1000,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
	}
	c.home = c.currentPose()
	return c
}

// SetZoomLimits sets the distance range and clamps the current distance.
func (c *Camera) SetZoomLimits(minDistance, maxDistance float32) {
	c.MinDistance, c.MaxDistance = minDistance, maxDistance
	c.home.MinDistance, c.home.MaxDistance = minDistance, maxDistance
	c.Distance = clamp(c.Distance, minDistance, maxDistance)
}

// Position returns the eye position in world space.
func (c *Camera) Position() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// Up is the world up vector.
func (c *Camera) Up() mgl32.Vec3 { return mgl32.Vec3{0, 1, 0} }

// View returns the world-to-eye matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, c.Up())
}

// Projection returns the perspective matrix for the viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Orbit rotates the camera by the given angles in radians.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 2*math.Pi))
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

// ZoomBy divides the distance by factor: factors above 1 move closer.
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance = clamp(c.Distance/factor, c.MinDistance, c.MaxDistance)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to the pose it was created with.
func (c *Camera) Reset() {
	h := c.home
	c.Target = h.Target
	c.Yaw, c.Pitch, c.Distance = h.Yaw, h.Pitch, h.Distance
	c.MinDistance, c.MaxDistance = h.MinDistance, h.MaxDistance
}

// WorldToScreen projects p to screen pixels (origin top-left). ok is false
// when p is behind the camera or outside the depth range.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32, ok bool) {
	win := mgl32.Project(p, c.View(), c.Projection(), 0, 0, int(c.ViewportW), int(c.ViewportH))
	if win.Z() < 0 || win.Z() > 1 {
		return 0, 0, false
	}
	return win.X(), c.ViewportH - win.Y(), true
}

// ScreenToRay returns the world-space ray through screen pixel (sx, sy).
func (c *Camera) ScreenToRay(sx, sy float32) (origin, dir mgl32.Vec3, err error) {
	view, proj := c.View(), c.Projection()
	w, h := int(c.ViewportW), int(c.ViewportH)
	wy := c.ViewportH - sy

	near, err := mgl32.UnProject(mgl32.Vec3{sx, wy, 0}, view, proj, 0, 0, w, h)
	if err != nil {
		return origin, dir, err
	}
	far, err := mgl32.UnProject(mgl32.Vec3{sx, wy, 1}, view, proj, 0, 0, w, h)
	if err != nil {
		return origin, dir, err
	}
	return near, far.Sub(near).Normalize(), nil
}

// ScreenToPlane intersects the ray through (sx, sy) with the horizontal plane
// y = planeY. ok is false when the ray is parallel to the plane or points
// away from it.
func (c *Camera) ScreenToPlane(sx, sy, planeY float32) (mgl32.Vec3, bool) {
	origin, dir, err := c.ScreenToRay(sx, sy)
	if err != nil || absf(dir.Y()) < 1e-6 {
		return mgl32.Vec3{}, false
	}
	t := (planeY - origin.Y()) / dir.Y()
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
