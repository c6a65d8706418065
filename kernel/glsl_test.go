package kernel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonIsParameterisedByColliderCount(t *testing.T) {
	src, err := Common(5)
	require.NoError(t, err)
	assert.Contains(t, src, "uniform vec4 colliders[5];")
	assert.Contains(t, src, "i < 5;")
	assert.Contains(t, src, "vec4 runSimulation(vec4 pos)")
	assert.Contains(t, src, "43758.5453")
}

func TestSourcesRenderConstants(t *testing.T) {
	src, err := FragmentSource(DefaultMaxColliders)
	require.NoError(t, err)

	for _, want := range []string{
		"#version 330",
		"uniform sampler2D tPositions;",
		"uniform sampler2D origin;",
		"uniform vec2 resolution;",
		"pos.w < 0.001 && pos.w > -0.001",
		"pos.w += 0.005;",
		"pos.y < -2.0",
		"pos.w *= -0.3;",
		"pos.w = 0.01;",
		"> 0.97",
		"pos.w = 0.0;",
		"finalColor = pos;",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "{{")
}

func TestFeedbackSources(t *testing.T) {
	vs, err := FeedbackVertexSource(3)
	require.NoError(t, err)
	assert.Contains(t, vs, "in vec4 position;")
	assert.Contains(t, vs, "in vec4 origin;")
	assert.Contains(t, vs, "rand(position.xy + timer)")
	assert.Contains(t, vs, "gl_Position = pos;")
	assert.NotContains(t, vs, "pos.w = 0.0;", "the vertex pass keeps the fall velocity")
	assert.Contains(t, vs, "uniform vec4 colliders[3];")

	fs := FeedbackFragmentSource()
	assert.True(t, strings.HasPrefix(fs, "#version 330 core"))
}

func TestSourceRejectsColliderCount(t *testing.T) {
	for _, n := range []int{0, -1, MaxCollidersLimit + 1} {
		_, err := FragmentSource(n)
		assert.Error(t, err, "n=%d", n)
	}
}

func TestGLSLFloat(t *testing.T) {
	assert.Equal(t, "-2.0", glslFloat(-2))
	assert.Equal(t, "0.005", glslFloat(0.005))
	assert.Equal(t, "-0.3", glslFloat(-0.3))
	assert.Equal(t, "1.0", glslFloat(1))
}
