package gpgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ParticleBuffer is a GPU vertex buffer of vec4 particle positions: the
// "position" attribute read by one feedback pass and written by another.
type ParticleBuffer struct {
	id    uint32
	count int
}

// NewParticleBuffer uploads data (4 floats per particle) into a new buffer.
func NewParticleBuffer(data []float32) (*ParticleBuffer, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("gpgpu: particle data has %d floats, want a positive multiple of 4", len(data))
	}
	b := &ParticleBuffer{count: len(data) / 4}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_COPY)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b, nil
}

// ID returns the GL buffer name.
func (b *ParticleBuffer) ID() uint32 { return b.id }

// Count returns the number of particles held.
func (b *ParticleBuffer) Count() int { return b.count }

// Ready reports whether the buffer holds position data.
func (b *ParticleBuffer) Ready() bool { return b != nil && b.id != 0 && b.count > 0 }

// Read copies the buffer into dst, which must hold Count()*4 floats.
func (b *ParticleBuffer) Read(dst []float32) error {
	if !b.Ready() {
		return ErrBufferNotReady
	}
	if len(dst) != b.count*4 {
		return fmt.Errorf("gpgpu: read buffer has %d floats, want %d", len(dst), b.count*4)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.GetBufferSubData(gl.ARRAY_BUFFER, 0, len(dst)*4, gl.Ptr(dst))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// Write replaces the buffer contents with data (Count()*4 floats).
func (b *ParticleBuffer) Write(data []float32) error {
	if !b.Ready() {
		return ErrBufferNotReady
	}
	if len(data) != b.count*4 {
		return fmt.Errorf("gpgpu: write data has %d floats, want %d", len(data), b.count*4)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*4, gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// Unload deletes the buffer.
func (b *ParticleBuffer) Unload() {
	if b == nil || b.id == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
	b.count = 0
}
