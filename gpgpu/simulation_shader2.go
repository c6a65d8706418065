package gpgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/pthm-cable/gpgpu/kernel"
)

// SimulationShader2 is the vertex-stage kernel. Its gl_Position is captured
// by transform feedback; nothing is rasterized.
type SimulationShader2 struct {
	program      uint32
	maxColliders int
	uniforms     map[string]int32

	originBuffer uint32
	originCount  int

	timer     float32
	colliders []float32
}

// NewSimulationShader2 compiles and links the feedback kernel for
// maxColliders collider slots. Compile and link failures are logged and
// returned; no shader is returned with an error.
func NewSimulationShader2(maxColliders int) (*SimulationShader2, error) {
	if maxColliders == 0 {
		maxColliders = kernel.DefaultMaxColliders
	}
	vsSource, err := kernel.FeedbackVertexSource(maxColliders)
	if err != nil {
		return nil, err
	}

	vs, err := compileShader(gl.VERTEX_SHADER, vsSource)
	if err != nil {
		return nil, err
	}
	fs, err := compileShader(gl.FRAGMENT_SHADER, kernel.FeedbackFragmentSource())
	if err != nil {
		gl.DeleteShader(vs)
		return nil, err
	}

	program, err := linkProgram(vs, fs, func(program uint32) {
		gl.BindAttribLocation(program, AttribPosition, gl.Str("position\x00"))
		gl.BindAttribLocation(program, AttribOrigin, gl.Str("origin\x00"))

		varyings, free := gl.Strs("gl_Position\x00")
		gl.TransformFeedbackVaryings(program, 1, varyings, gl.SEPARATE_ATTRIBS)
		free()
	})
	if err != nil {
		return nil, err
	}

	s := &SimulationShader2{
		program:      program,
		maxColliders: maxColliders,
		uniforms:     activeUniforms(program),
		colliders:    make([]float32, maxColliders*4),
	}
	gl.GenBuffers(1, &s.originBuffer)
	return s, nil
}

// Program returns the GL program name.
func (s *SimulationShader2) Program() uint32 { return s.program }

// MaxColliders returns the collider capacity compiled into the program.
func (s *SimulationShader2) MaxColliders() int { return s.maxColliders }

// Ready reports whether the shader holds a linked program.
func (s *SimulationShader2) Ready() bool { return s != nil && s.program != 0 }

// Uniform returns the location of the named uniform, or -1 when the program
// has no such active uniform.
func (s *SimulationShader2) Uniform(name string) int32 {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	return -1
}

// SetColliders stores the flat (x, y, z, radius) collider array for the next
// Bind. Slots past len(colliders)/4 are zeroed.
func (s *SimulationShader2) SetColliders(colliders []float32) {
	packColliders(s.colliders, colliders)
}

// SetTimer stores the clock for the next Bind.
func (s *SimulationShader2) SetTimer(timer float32) {
	s.timer = timer
}

// SetOriginData uploads the rest positions (4 floats per particle).
func (s *SimulationShader2) SetOriginData(data []float32) error {
	if len(data)%4 != 0 {
		return fmt.Errorf("gpgpu: origin data has %d floats, not a multiple of 4", len(data))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, s.originBuffer)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	s.originCount = len(data) / 4
	return nil
}

// OriginCount returns the number of origins uploaded.
func (s *SimulationShader2) OriginCount() int { return s.originCount }

// Bind makes the program current, uploads the stored uniforms and attaches
// the origin buffer. It expects the caller's vertex array to be bound.
func (s *SimulationShader2) Bind() {
	gl.UseProgram(s.program)
	if loc := s.Uniform("timer"); loc >= 0 {
		gl.Uniform1f(loc, s.timer)
	}
	if loc := s.Uniform("colliders"); loc >= 0 {
		gl.Uniform4fv(loc, int32(s.maxColliders), &s.colliders[0])
	}

	gl.EnableVertexAttribArray(AttribOrigin)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.originBuffer)
	gl.VertexAttribPointer(AttribOrigin, 4, gl.FLOAT, false, 16, gl.PtrOffset(0))
}

// Unload deletes the program and origin buffer.
func (s *SimulationShader2) Unload() {
	if s == nil {
		return
	}
	if s.originBuffer != 0 {
		gl.DeleteBuffers(1, &s.originBuffer)
		s.originBuffer = 0
	}
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
}
