package kernel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledImage(w, h int) *Image {
	img := NewImage(w, h)
	for i := 0; i < img.Len(); i++ {
		f := float32(i)
		img.Set(i, mgl32.Vec4{f * 0.01, 1 - f*0.002, f * -0.003, 0})
	}
	return img
}

func TestImageSeedIsTexelCentre(t *testing.T) {
	img := NewImage(4, 2)
	assert.Equal(t, mgl32.Vec2{0.125, 0.25}, img.Seed(0))
	assert.Equal(t, mgl32.Vec2{0.875, 0.25}, img.Seed(3))
	assert.Equal(t, mgl32.Vec2{0.125, 0.75}, img.Seed(4))
}

func TestBufferSeedIsPosition(t *testing.T) {
	buf := NewBuffer(2)
	buf.Set(1, mgl32.Vec4{3, 4, 5, 6})
	assert.Equal(t, mgl32.Vec2{3, 4}, buf.Seed(1))
	assert.Equal(t, mgl32.Vec4{3, 4, 5, 6}, buf.At(1))
	assert.Equal(t, 2, buf.Len())
}

func TestRunMatchesAdvance(t *testing.T) {
	src := filledImage(8, 8)
	origin := filledImage(8, 8)
	dst := NewImage(8, 8)
	colliders := []mgl32.Vec4{{0.1, 0.9, 0, 0.3}}

	require.NoError(t, Run(src, dst, origin, 0.3, colliders))

	for i := 0; i < src.Len(); i++ {
		want := Advance(src.Load(i), origin.At(i), src.Seed(i), 0.3, colliders)
		require.Equal(t, want, dst.At(i), "particle %d", i)
	}
}

func TestRunBackendsDifferOnlyInSeed(t *testing.T) {
	img := filledImage(16, 16)
	buf := &Buffer{Data: append([]float32(nil), img.Pix...)}
	origin := NewBuffer(img.Len())

	imgOut := NewImage(16, 16)
	bufOut := NewBuffer(img.Len())
	require.NoError(t, Run(img, imgOut, origin, 1, nil))
	require.NoError(t, Run(buf, bufOut, origin, 1, nil))

	for i := 0; i < img.Len(); i++ {
		if ShouldReseed(img.Seed(i), 1) || ShouldReseed(buf.Seed(i), 1) {
			continue
		}
		assert.Equal(t, imgOut.At(i), bufOut.At(i))
	}
}

func TestRunParallelMatchesRun(t *testing.T) {
	src := filledImage(128, 64)
	origin := filledImage(128, 64)
	serial := NewImage(128, 64)
	parallel := NewImage(128, 64)
	colliders := []mgl32.Vec4{{0.5, 0.5, -0.5, 0.4}, {}, {1, 0, 0, 0.2}}

	require.NoError(t, Run(src, serial, origin, 2.25, colliders))
	require.NoError(t, RunParallel(src, parallel, origin, 2.25, colliders))
	assert.Equal(t, serial.Pix, parallel.Pix)
}

func TestRunErrors(t *testing.T) {
	a := NewBuffer(4)
	b := NewBuffer(4)
	short := NewBuffer(3)

	assert.ErrorIs(t, Run(a, a, b, 0, nil), ErrAliased)
	assert.ErrorIs(t, Run(a, short, b, 0, nil), ErrSizeMismatch)
	assert.ErrorIs(t, Run(a, b, short, 0, nil), ErrSizeMismatch)
	assert.ErrorIs(t, RunParallel(a, b, short, 0, nil), ErrSizeMismatch)
}

func TestColliders(t *testing.T) {
	got := Colliders([]float32{1, 2, 3, 4, 0, 0, 0, 0})
	assert.Equal(t, []mgl32.Vec4{{1, 2, 3, 4}, {}}, got)
}

func TestImageTreatsEveryTexelAsSettled(t *testing.T) {
	falling := mgl32.Vec4{0.1, 1.0, 0.2, 0.2}

	img := NewImage(1, 1)
	img.Set(0, falling)
	out := NewImage(1, 1)
	require.False(t, ShouldReseed(img.Seed(0), 0))
	require.NoError(t, Run(img, out, NewImage(1, 1), 0, nil))

	assert.Equal(t, falling, img.At(0), "stored state keeps w")
	want := Step(mgl32.Vec4{0.1, 1.0, 0.2, 0}, 0, nil)
	assert.Equal(t, want, out.At(0))
	assert.Zero(t, out.At(0)[3])
	assert.NotEqual(t, falling[1]-falling[3], out.At(0)[1], "no fall step")

	buf := NewBuffer(1)
	buf.Set(0, falling)
	bufOut := NewBuffer(1)
	require.False(t, ShouldReseed(buf.Seed(0), 0))
	require.NoError(t, Run(buf, bufOut, NewBuffer(1), 0, nil))
	got := bufOut.At(0)
	assert.InDelta(t, 0.8, got[1], 1e-6, "buffers keep falling")
	assert.InDelta(t, 0.2+Gravity, got[3], 1e-6)
}

func TestImageKeepsColliderPush(t *testing.T) {
	img := NewImage(1, 1)
	img.Set(0, mgl32.Vec4{0, -1, 0, 0})
	out := NewImage(1, 1)
	require.NoError(t, Run(img, out, NewImage(1, 1), 0, []mgl32.Vec4{{0, -1.1, 0, 0.5}}))
	assert.Equal(t, float32(RearmVelocity), out.At(0)[3], "a push still writes w for this frame")
}
