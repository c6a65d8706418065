// Package gpgpu runs the particle kernel on the GPU. GPGPU drives a
// render-to-texture pass over SimulationShader; GPGPU2 drives a transform
// feedback pass over SimulationShader2. Both expect the raylib window (and so
// its GL context) to exist and must be called from the thread that owns it.
package gpgpu

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Attribute locations bound before linking the feedback program.
const (
	AttribPosition = 0
	AttribOrigin   = 1
)

var (
	glOnce sync.Once
	glErr  error
)

// InitGL loads the OpenGL function table for the current context. It is safe
// to call more than once; only the first call does any work.
func InitGL() error {
	glOnce.Do(func() {
		if err := gl.Init(); err != nil {
			glErr = fmt.Errorf("%w: %v", ErrGLInit, err)
			return
		}
		slog.Info("opengl initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	})
	return glErr
}

// compileShader compiles one stage. On failure the info log is logged and
// returned inside an ErrShaderCompile.
func compileShader(stage uint32, source string) (uint32, error) {
	shader := gl.CreateShader(stage)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		log = strings.TrimRight(log, "\x00")
		slog.Error("shader failed to compile", "stage", stageName(stage), "log", log)
		return 0, fmt.Errorf("%w: %s: %s", ErrShaderCompile, stageName(stage), log)
	}
	return shader, nil
}

// linkProgram links an already attached program. prelink runs after the
// shaders are attached and before linking, for attribute and varying setup.
func linkProgram(vertex, fragment uint32, prelink func(program uint32)) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	if prelink != nil {
		prelink(program)
	}
	gl.LinkProgram(program)

	// Flagged for deletion; freed with the program.
	gl.DeleteShader(vertex)
	gl.DeleteShader(fragment)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		log = strings.TrimRight(log, "\x00")
		slog.Error("shader program failed to link", "log", log)
		return 0, fmt.Errorf("%w: %s", ErrProgramLink, log)
	}
	return program, nil
}

// activeUniforms enumerates the program's active uniforms into a
// name -> location table.
func activeUniforms(program uint32) map[string]int32 {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	uniforms := make(map[string]int32, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLen, &length, &size, &xtype, &buf[0])
		name := uniformName(string(buf[:length]))
		uniforms[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}
	return uniforms
}

// uniformName strips the array suffix GL reports for array uniforms, so
// "colliders[0]" is stored as "colliders".
func uniformName(raw string) string {
	return strings.TrimSuffix(raw, "[0]")
}

func stageName(stage uint32) string {
	switch stage {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	default:
		return fmt.Sprintf("0x%x", stage)
	}
}

// packColliders copies flat collider data into dst, zeroing unused slots.
// Extra input beyond len(dst) is dropped.
func packColliders(dst, colliders []float32) {
	n := copy(dst, colliders)
	clear(dst[n:])
}
