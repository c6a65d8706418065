package gpgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GPGPU2 runs a vertex-stage kernel as a compute pass: source positions go in
// as attribute 0, gl_Position is captured into target, and rasterization is
// discarded.
type GPGPU2 struct {
	vao      uint32
	feedback uint32
	passes   uint64
}

// NewGPGPU2 creates the transform feedback object and the vertex array the
// pass binds its attributes on.
func NewGPGPU2() *GPGPU2 {
	g := &GPGPU2{}
	gl.GenVertexArrays(1, &g.vao)
	gl.GenTransformFeedbacks(1, &g.feedback)
	return g
}

// Pass advances every particle in source into target. A pass that cannot run
// returns an error and issues no GL calls.
func (g *GPGPU2) Pass(shader *SimulationShader2, source, target *ParticleBuffer) error {
	if err := checkPass(shader, source, target); err != nil {
		return err
	}

	gl.BindVertexArray(g.vao)
	shader.Bind()

	gl.EnableVertexAttribArray(AttribPosition)
	gl.BindBuffer(gl.ARRAY_BUFFER, source.ID())
	gl.VertexAttribPointer(AttribPosition, 4, gl.FLOAT, false, 16, gl.PtrOffset(0))

	gl.BindTransformFeedback(gl.TRANSFORM_FEEDBACK, g.feedback)
	gl.BindBufferBase(gl.TRANSFORM_FEEDBACK_BUFFER, 0, target.ID())
	gl.Enable(gl.RASTERIZER_DISCARD)
	gl.BeginTransformFeedback(gl.POINTS)

	gl.DrawArrays(gl.POINTS, 0, int32(source.Count()))

	gl.EndTransformFeedback()
	gl.Disable(gl.RASTERIZER_DISCARD)

	// Release the capture binding so target can be bound as ARRAY_BUFFER
	// next frame, and the feedback object so later draws don't record into it.
	gl.BindBufferBase(gl.TRANSFORM_FEEDBACK_BUFFER, 0, 0)
	gl.BindTransformFeedback(gl.TRANSFORM_FEEDBACK, 0)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)

	g.passes++
	return nil
}

// Passes returns the number of passes issued so far.
func (g *GPGPU2) Passes() uint64 { return g.passes }

// Unload deletes the feedback object and vertex array.
func (g *GPGPU2) Unload() {
	if g.feedback != 0 {
		gl.DeleteTransformFeedbacks(1, &g.feedback)
		g.feedback = 0
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
}

// checkPass validates a feedback pass before any GL state is touched.
func checkPass(shader *SimulationShader2, source, target *ParticleBuffer) error {
	if !shader.Ready() {
		return ErrNoShader
	}
	if !source.Ready() {
		return fmt.Errorf("%w: source", ErrBufferNotReady)
	}
	if !target.Ready() {
		return fmt.Errorf("%w: target", ErrBufferNotReady)
	}
	if source.ID() == target.ID() {
		return fmt.Errorf("%w: source and target are the same buffer", ErrBufferMismatch)
	}
	if source.Count() != target.Count() {
		return fmt.Errorf("%w: source has %d particles, target %d", ErrBufferMismatch, source.Count(), target.Count())
	}
	if shader.OriginCount() < source.Count() {
		return fmt.Errorf("%w: %d origins for %d particles", ErrBufferMismatch, shader.OriginCount(), source.Count())
	}
	return nil
}
