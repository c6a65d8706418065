// Package kernel holds the per-particle simulation function shared by every
// backend: the Go reference implementation and the GLSL text that the GPU
// variants compile from it.
package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Simulation constants. The GLSL templates render the same values.
const (
	SettledEpsilon  = 0.001 // |w| below this means the particle is settled
	NoiseAmplitude  = 0.005 // scale of the drift field for settled particles
	Gravity         = 0.005 // fall velocity gained per step
	Floor           = -2.0  // height below which a falling particle bounces
	Restitution     = -0.3  // velocity multiplier on bounce
	RearmVelocity   = 0.01  // w assigned after a collider push
	ReseedThreshold = 0.97  // Rand above this resets to origin (~3% per frame)

	DefaultMaxColliders = 8
	MaxCollidersLimit   = 64
)

// Rand is the cheap sine hash used as the reseed trigger. It is not a real
// random source; it only decorrelates particles frame to frame. Every step
// rounds to float32 as the GLSL rand does, so the 43758 multiplier amplifies
// the same rounding on both sides.
func Rand(co mgl32.Vec2) float32 {
	d := float32(co[0]*12.9898) + float32(co[1]*78.233)
	v := float32(math.Sin(float64(d))) * 43758.5453
	return v - float32(math.Floor(float64(v)))
}

// ShouldReseed reports whether the particle with seed coordinate co is reset
// to its origin this frame.
func ShouldReseed(co mgl32.Vec2, timer float32) bool {
	return Rand(mgl32.Vec2{co[0] + timer, co[1] + timer}) > ReseedThreshold
}

// Settled reports whether w marks a particle at rest.
func Settled(w float32) bool {
	return w < SettledEpsilon && w > -SettledEpsilon
}

// Step advances one particle by one frame.
//
// Every noise term reads the coordinates as they were before this step, with
// the timer folded into the x phase only; the stored x never drifts by timer.
func Step(pos mgl32.Vec4, timer float32, colliders []mgl32.Vec4) mgl32.Vec4 {
	x := pos[0] + timer
	y := pos[1]
	z := pos[2]

	if Settled(pos[3]) {
		pos[0] += sin(y*3) * cos(z*11) * NoiseAmplitude
		pos[1] += sin(x*5) * cos(z*13) * NoiseAmplitude
		pos[2] += sin(x*7) * cos(y*17) * NoiseAmplitude
	} else {
		pos[1] -= pos[3]
		pos[3] += Gravity
		if pos[1] < Floor {
			pos[1] += pos[3]
			pos[3] *= Restitution
		}
	}

	for _, c := range colliders {
		d := pos.Vec3().Sub(c.Vec3())
		l := d.Len()
		if c[3]-l > 0 {
			push := pushDirection(d, l).Mul(c[3])
			pos[0] += push[0]
			pos[1] += push[1]
			pos[2] += push[2]
			pos[3] = RearmVelocity
		}
	}

	return pos
}

// Advance applies the reseed rule and otherwise the kernel.
func Advance(pos, origin mgl32.Vec4, co mgl32.Vec2, timer float32, colliders []mgl32.Vec4) mgl32.Vec4 {
	if ShouldReseed(co, timer) {
		return mgl32.Vec4{origin[0], origin[1], origin[2], 0}
	}
	return Step(pos, timer, colliders)
}

// pushDirection is the unit vector away from the collider centre. A particle
// sitting exactly on the centre has no direction; it is pushed straight up.
func pushDirection(d mgl32.Vec3, l float32) mgl32.Vec3 {
	if l == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return d.Mul(1 / l)
}

func sin(v float32) float32 { return float32(math.Sin(float64(v))) }
func cos(v float32) float32 { return float32(math.Cos(float64(v))) }
