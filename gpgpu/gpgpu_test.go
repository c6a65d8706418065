package gpgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests cover the checks that run before any GL call, so they need no
// context.

func readyShader2(origins int) *SimulationShader2 {
	return &SimulationShader2{program: 7, maxColliders: 8, originCount: origins, colliders: make([]float32, 32)}
}

func TestCheckPass(t *testing.T) {
	src := &ParticleBuffer{id: 1, count: 16}
	dst := &ParticleBuffer{id: 2, count: 16}

	tests := []struct {
		name    string
		shader  *SimulationShader2
		source  *ParticleBuffer
		target  *ParticleBuffer
		wantErr error
	}{
		{"ok", readyShader2(16), src, dst, nil},
		{"nil shader", nil, src, dst, ErrNoShader},
		{"unlinked shader", &SimulationShader2{}, src, dst, ErrNoShader},
		{"nil source", readyShader2(16), nil, dst, ErrBufferNotReady},
		{"unloaded target", readyShader2(16), src, &ParticleBuffer{}, ErrBufferNotReady},
		{"empty source", readyShader2(16), &ParticleBuffer{id: 3}, dst, ErrBufferNotReady},
		{"aliased", readyShader2(16), src, src, ErrBufferMismatch},
		{"count mismatch", readyShader2(16), src, &ParticleBuffer{id: 4, count: 8}, ErrBufferMismatch},
		{"missing origins", readyShader2(4), src, dst, ErrBufferMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPass(tt.shader, tt.source, tt.target)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPassRejectsBeforeGL(t *testing.T) {
	g := &GPGPU2{}
	err := g.Pass(readyShader2(4), &ParticleBuffer{id: 1, count: 4}, nil)
	assert.ErrorIs(t, err, ErrBufferNotReady)
	assert.Zero(t, g.Passes(), "a rejected pass is not counted")
}

func TestTexturePassRejectsUnreadyInputs(t *testing.T) {
	g := NewGPGPU()
	assert.ErrorIs(t, g.Pass(nil, nil), ErrNoShader)
	assert.ErrorIs(t, g.Out(&SimulationShader{}, 10, 10), ErrNoShader)

	var target *Target
	assert.False(t, target.Ready())
	assert.ErrorIs(t, target.Read(nil), ErrTargetNotReady)
}

func TestUniformName(t *testing.T) {
	assert.Equal(t, "colliders", uniformName("colliders[0]"))
	assert.Equal(t, "timer", uniformName("timer"))
	assert.Equal(t, "m[0].x", uniformName("m[0].x"))
}

func TestUniformLookup(t *testing.T) {
	s := &SimulationShader2{uniforms: map[string]int32{"timer": 0, "colliders": 3}}
	assert.Equal(t, int32(0), s.Uniform("timer"))
	assert.Equal(t, int32(3), s.Uniform("colliders"))
	assert.Equal(t, int32(-1), s.Uniform("origin"))
}

func TestPackColliders(t *testing.T) {
	dst := []float32{9, 9, 9, 9, 9, 9, 9, 9}
	packColliders(dst, []float32{1, 2, 3, 4})
	assert.Equal(t, []float32{1, 2, 3, 4, 0, 0, 0, 0}, dst)

	packColliders(dst, []float32{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3})
	assert.Equal(t, []float32{1, 1, 1, 1, 2, 2, 2, 2}, dst, "extra colliders are dropped")

	packColliders(dst, nil)
	assert.Equal(t, make([]float32, 8), dst)
}

func TestSettersChainAndPad(t *testing.T) {
	s := &SimulationShader{maxColliders: 2, colliders: make([]float32, 8)}
	s.SetTimer(1.5).SetColliders([]float32{0, 0, 0, 1})
	assert.Equal(t, float32(1.5), s.timer)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 0}, s.colliders)

	s2 := readyShader2(0)
	s2.SetTimer(2)
	s2.SetColliders([]float32{1, 2, 3, 4})
	assert.Equal(t, float32(2), s2.timer)
	assert.Equal(t, float32(4), s2.colliders[3])
	assert.Equal(t, float32(0), s2.colliders[4])
}
