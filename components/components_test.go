package components

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestOrbitAt(t *testing.T) {
	o := Orbit{Anchor: mgl32.Vec3{1, 2, 3}, Radius: 2, Speed: 1}

	assert.True(t, o.At(0).ApproxEqual(mgl32.Vec3{3, 2, 3}))
	assert.True(t, o.At(math.Pi/2).ApproxEqualThreshold(mgl32.Vec3{1, 2, 5}, 1e-5))

	for _, tm := range []float32{0.3, 1.7, 12} {
		p := o.At(tm)
		assert.Equal(t, float32(2), p.Y(), "orbits stay horizontal")
		assert.InDelta(t, 2, p.Sub(o.Anchor).Len(), 1e-5)
	}
}

func TestOrbitPinned(t *testing.T) {
	o := Orbit{Anchor: mgl32.Vec3{1, 0, 0}, Speed: 5}
	assert.Equal(t, o.Anchor, o.At(3))
}

func TestSphereVec4(t *testing.T) {
	s := Sphere{Center: mgl32.Vec3{1, 2, 3}, Radius: 0.5}
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 0.5}, s.Vec4())
}
