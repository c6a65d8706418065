package gpgpu

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// GPGPU runs a simulation shader over a full-screen quad. Each call draws a
// single quad covering the output exactly, so every texel of the output is
// the shader's result for that texel.
type GPGPU struct {
	// passes counts draws issued, for telemetry.
	passes uint64
}

// NewGPGPU creates the render-to-texture orchestrator. raylib's batch owns
// the quad geometry and the orthographic projection set up by
// BeginTextureMode, so nothing is allocated per pass.
func NewGPGPU() *GPGPU {
	return &GPGPU{}
}

// Pass renders shader into target.
func (g *GPGPU) Pass(shader *SimulationShader, target *Target) error {
	if !shader.Ready() {
		return ErrNoShader
	}
	if !target.Ready() {
		return ErrTargetNotReady
	}

	rl.BeginTextureMode(target.RenderTexture())
	g.draw(shader, target.Width(), target.Height())
	rl.EndTextureMode()
	return nil
}

// Out renders shader to the default framebuffer, covering width x height
// pixels. It is the debug view of the raw state.
func (g *GPGPU) Out(shader *SimulationShader, width, height int) error {
	if !shader.Ready() {
		return ErrNoShader
	}
	g.draw(shader, width, height)
	return nil
}

// Passes returns the number of passes issued so far.
func (g *GPGPU) Passes() uint64 { return g.passes }

func (g *GPGPU) draw(shader *SimulationShader, width, height int) {
	rl.BeginShaderMode(shader.shader)
	shader.apply(width, height)

	// State goes out verbatim, w included in alpha, so blending stays off
	// until raylib has flushed the quad in EndShaderMode.
	gl.Disable(gl.BLEND)
	rl.DrawRectangle(0, 0, int32(width), int32(height), rl.White)
	rl.EndShaderMode()
	gl.Enable(gl.BLEND)

	g.passes++
}
