package gpgpu

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/pthm-cable/gpgpu/kernel"
)

// SimulationShader is the fragment-stage kernel: it samples tPositions and
// origin at the texel being written and outputs the next state as colour.
type SimulationShader struct {
	shader       rl.Shader
	maxColliders int

	positionsLoc  int32
	originLoc     int32
	timerLoc      int32
	collidersLoc  int32
	resolutionLoc int32

	positions rl.Texture2D
	origins   rl.Texture2D
	timer     float32
	colliders []float32
}

// NewSimulationShader builds the fragment kernel for maxColliders collider
// slots. A compile failure is logged and returned; no shader is returned with
// an error.
func NewSimulationShader(maxColliders int) (*SimulationShader, error) {
	if maxColliders == 0 {
		maxColliders = kernel.DefaultMaxColliders
	}
	fs, err := kernel.FragmentSource(maxColliders)
	if err != nil {
		return nil, err
	}

	// raylib swaps a failed stage for its default shader, which would make a
	// broken kernel look like a working one. Compile it here first to get the
	// info log and fail properly.
	probe, err := compileShader(gl.FRAGMENT_SHADER, fs)
	if err != nil {
		return nil, err
	}
	gl.DeleteShader(probe)

	shader := rl.LoadShaderFromMemory("", fs)
	if shader.ID == 0 {
		return nil, fmt.Errorf("%w: raylib rejected simulation shader", ErrProgramLink)
	}

	s := &SimulationShader{
		shader:        shader,
		maxColliders:  maxColliders,
		positionsLoc:  rl.GetShaderLocation(shader, "tPositions"),
		originLoc:     rl.GetShaderLocation(shader, "origin"),
		timerLoc:      rl.GetShaderLocation(shader, "timer"),
		collidersLoc:  rl.GetShaderLocation(shader, "colliders"),
		resolutionLoc: rl.GetShaderLocation(shader, "resolution"),
		colliders:     make([]float32, maxColliders*4),
	}
	if s.positionsLoc < 0 || s.timerLoc < 0 || s.resolutionLoc < 0 {
		rl.UnloadShader(shader)
		return nil, fmt.Errorf("%w: simulation shader is missing kernel uniforms", ErrProgramLink)
	}
	return s, nil
}

// SetPositionsTexture sets the state texture sampled by the next pass.
func (s *SimulationShader) SetPositionsTexture(positions rl.Texture2D) *SimulationShader {
	s.positions = positions
	return s
}

// SetOriginsTexture sets the rest positions used for reseeding.
func (s *SimulationShader) SetOriginsTexture(origins rl.Texture2D) *SimulationShader {
	s.origins = origins
	return s
}

// SetColliders sets the flat (x, y, z, radius) collider array. Slots past
// len(colliders)/4 are zeroed.
func (s *SimulationShader) SetColliders(colliders []float32) *SimulationShader {
	packColliders(s.colliders, colliders)
	return s
}

// SetTimer sets the clock that phases the noise and the reseed hash.
func (s *SimulationShader) SetTimer(timer float32) *SimulationShader {
	s.timer = timer
	return s
}

// MaxColliders returns the collider capacity compiled into the shader.
func (s *SimulationShader) MaxColliders() int { return s.maxColliders }

// Ready reports whether the shader holds a program.
func (s *SimulationShader) Ready() bool { return s != nil && s.shader.ID != 0 }

// apply uploads the stored values. It must run inside BeginShaderMode: raylib
// only binds sampler textures for the batch drawn with this shader active.
func (s *SimulationShader) apply(width, height int) {
	rl.SetShaderValue(s.shader, s.resolutionLoc, []float32{float32(width), float32(height)}, rl.ShaderUniformVec2)
	rl.SetShaderValue(s.shader, s.timerLoc, []float32{s.timer}, rl.ShaderUniformFloat)
	if s.collidersLoc >= 0 {
		rl.SetShaderValueV(s.shader, s.collidersLoc, s.colliders, rl.ShaderUniformVec4, int32(s.maxColliders))
	}
	rl.SetShaderValueTexture(s.shader, s.positionsLoc, s.positions)
	if s.originLoc >= 0 {
		rl.SetShaderValueTexture(s.shader, s.originLoc, s.origins)
	}
}

// Unload releases the program.
func (s *SimulationShader) Unload() {
	if s.Ready() {
		rl.UnloadShader(s.shader)
		s.shader = rl.Shader{}
	}
}
