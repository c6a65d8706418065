package kernel

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepSettledNoColliders(t *testing.T) {
	tests := []struct {
		name  string
		pos   mgl32.Vec4
		timer float32
	}{
		{"origin", mgl32.Vec4{0, 0, 0, 0}, 0},
		{"offset", mgl32.Vec4{0.3, -0.7, 1.1, 0}, 0.25},
		{"tiny w", mgl32.Vec4{-1.2, 0.4, 0.05, 0.0009}, 3.5},
		{"tiny negative w", mgl32.Vec4{0.9, 1.9, -0.4, -0.0005}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Step(tt.pos, tt.timer, nil)

			x := float64(tt.pos[0] + tt.timer)
			y := float64(tt.pos[1])
			z := float64(tt.pos[2])
			want := mgl32.Vec4{
				tt.pos[0] + float32(math.Sin(y*3))*float32(math.Cos(z*11))*NoiseAmplitude,
				tt.pos[1] + float32(math.Sin(x*5))*float32(math.Cos(z*13))*NoiseAmplitude,
				tt.pos[2] + float32(math.Sin(x*7))*float32(math.Cos(y*17))*NoiseAmplitude,
				tt.pos[3],
			}

			assert.Equal(t, tt.pos[3], got[3], "w must not change for a settled particle")
			for i := 0; i < 3; i++ {
				assert.InDelta(t, want[i], got[i], 1e-6)
				assert.InDelta(t, tt.pos[i], got[i], NoiseAmplitude+1e-6)
			}
		})
	}
}

func TestStepSettledDeterministic(t *testing.T) {
	pos := mgl32.Vec4{0.12, 0.34, 0.56, 0}
	assert.Equal(t, Step(pos, 1.5, nil), Step(pos, 1.5, nil))
	assert.NotEqual(t, Step(pos, 1.5, nil), Step(pos, 2.5, nil), "timer phases the noise")
}

func TestStepTimerDoesNotDriftX(t *testing.T) {
	// sin(y*3) is zero at y = 0, so x must come back unchanged whatever the timer.
	got := Step(mgl32.Vec4{0.5, 0, 0.2, 0}, 100, nil)
	assert.Equal(t, float32(0.5), got[0])
}

func TestStepFalling(t *testing.T) {
	tests := []struct {
		name string
		pos  mgl32.Vec4
	}{
		{"starting fall", mgl32.Vec4{0, 1, 0, 0.01}},
		{"fast fall", mgl32.Vec4{0.2, 0.5, -0.3, 0.4}},
		{"rising after bounce", mgl32.Vec4{0, -1.9, 0, -0.05}},
		{"near floor", mgl32.Vec4{0, -1.8, 0, 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.GreaterOrEqual(t, tt.pos[1]-tt.pos[3], float32(Floor))

			got := Step(tt.pos, 0.7, nil)

			assert.Equal(t, tt.pos[1]-tt.pos[3], got[1])
			assert.Equal(t, tt.pos[3]+Gravity, got[3])
			assert.Equal(t, tt.pos[0], got[0])
			assert.Equal(t, tt.pos[2], got[2])
		})
	}
}

func TestStepBounce(t *testing.T) {
	pos := mgl32.Vec4{0.1, -1.95, 0.2, 0.2}
	fallen := pos[1] - pos[3]
	require.Less(t, fallen, float32(Floor))

	got := Step(pos, 0, nil)

	w := pos[3] + Gravity
	assert.Equal(t, fallen+w, got[1], "the fall is undone with the incremented velocity")
	assert.Equal(t, w*Restitution, got[3])
	assert.InDelta(t, -0.3*(0.2+0.005), got[3], 1e-6)
	assert.Less(t, got[3], float32(0), "velocity is inverted")
}

func TestStepColliderPushOut(t *testing.T) {
	tests := []struct {
		name     string
		pos      mgl32.Vec4
		collider mgl32.Vec4
	}{
		{"settled inside", mgl32.Vec4{0.2, 0, 0, 0}, mgl32.Vec4{0, 0, 0, 1}},
		{"falling inside", mgl32.Vec4{1, 1.2, 1, 0.05}, mgl32.Vec4{1, 1, 1, 0.5}},
		{"off-axis", mgl32.Vec4{0.3, 0.3, 0.3, 0}, mgl32.Vec4{0.1, 0.2, 0.1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Step(tt.pos, 0, []mgl32.Vec4{tt.collider})

			dist := got.Vec3().Sub(tt.collider.Vec3()).Len()
			assert.GreaterOrEqual(t, dist+1e-5, tt.collider[3])
			assert.Equal(t, float32(RearmVelocity), got[3])
		})
	}
}

func TestStepColliderOutsideIsInert(t *testing.T) {
	pos := mgl32.Vec4{3, 0, 0, 0}
	colliders := []mgl32.Vec4{{0, 0, 0, 1}, {}, {}}
	assert.Equal(t, Step(pos, 0.4, nil), Step(pos, 0.4, colliders))
}

func TestStepZeroSlotsAreInert(t *testing.T) {
	pos := mgl32.Vec4{0, 0, 0, 0}
	colliders := make([]mgl32.Vec4, DefaultMaxColliders)
	assert.Equal(t, Step(pos, 0, nil), Step(pos, 0, colliders))
}

func TestStepParticleAtColliderCentre(t *testing.T) {
	got := Step(mgl32.Vec4{0, 0, 0, 0}, 0, []mgl32.Vec4{{0, 0, 0, 1}})
	assert.Equal(t, mgl32.Vec4{0, 1, 0, RearmVelocity}, got)
}

func TestStepCollidersApplyInOrder(t *testing.T) {
	colliders := []mgl32.Vec4{
		{0, 0, 0, 1},     // pushes the particle from x=0.5 to about x=1.5
		{1.6, 0, 0, 0.5}, // which is now inside the second collider
	}
	got := Step(mgl32.Vec4{0.5, 0, 0, 0}, 0, colliders)
	assert.InDelta(t, 1.0, got[0], 0.01, "second push moves it back towards -x")
	assert.GreaterOrEqual(t, got.Vec3().Sub(colliders[1].Vec3()).Len(), float32(0.5))
	assert.Equal(t, float32(RearmVelocity), got[3])
}

func TestRandRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Rand(mgl32.Vec2{float32(i) * 0.013, float32(i) * 0.007})
		require.GreaterOrEqual(t, v, float32(0))
		require.Less(t, v, float32(1))
	}
}

func TestReseedProbability(t *testing.T) {
	const size = 128
	img := NewImage(size, size)
	reseeds := 0
	for i := 0; i < img.Len(); i++ {
		if ShouldReseed(img.Seed(i), 0.5) {
			reseeds++
		}
	}
	frac := float64(reseeds) / float64(img.Len())
	assert.InDelta(t, 1-ReseedThreshold, frac, 0.01)
}

func TestAdvanceReseedsToOrigin(t *testing.T) {
	origin := mgl32.Vec4{4, 5, 6, 9}
	pos := mgl32.Vec4{1, 2, 3, 0.2}

	var co mgl32.Vec2
	found := false
	for i := 0; i < 10000 && !found; i++ {
		co = mgl32.Vec2{float32(i) / 10000, 0.25}
		found = ShouldReseed(co, 0)
	}
	require.True(t, found)

	got := Advance(pos, origin, co, 0, []mgl32.Vec4{{1, 2, 3, 10}})
	assert.Equal(t, mgl32.Vec4{4, 5, 6, 0}, got, "origin w is dropped and colliders are skipped")
}

func TestAdvanceEndToEnd(t *testing.T) {
	// One settled particle at the centre of a unit collider, timer 0.
	co := mgl32.Vec2{0.5, 0.5}
	require.False(t, ShouldReseed(co, 0))

	got := Advance(mgl32.Vec4{}, mgl32.Vec4{}, co, 0, []mgl32.Vec4{{0, 0, 0, 1}})
	assert.Equal(t, float32(RearmVelocity), got[3])
	assert.InDelta(t, 1, got.Vec3().Len(), 1e-6, "moved out by exactly the radius")
}

func TestSettled(t *testing.T) {
	assert.True(t, Settled(0))
	assert.True(t, Settled(0.0009))
	assert.True(t, Settled(-0.0009))
	assert.False(t, Settled(0.001))
	assert.False(t, Settled(-0.001))
	assert.False(t, Settled(RearmVelocity))
}

func TestRandRoundsToFloat32(t *testing.T) {
	// Values follow float32 arithmetic throughout; float64 gives 0.1845
	// and 0.8558 for the same inputs.
	assert.Equal(t, float32(0.18359375), Rand(mgl32.Vec2{0.5, 0.5}))
	assert.Equal(t, float32(0.796875), Rand(mgl32.Vec2{0.1, 1.0}))
	assert.Equal(t, float32(0), Rand(mgl32.Vec2{}))
}
