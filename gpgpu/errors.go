package gpgpu

import "errors"

var (
	// ErrShaderCompile is returned when a shader stage fails to compile.
	ErrShaderCompile = errors.New("gpgpu: shader failed to compile")
	// ErrProgramLink is returned when a program fails to link.
	ErrProgramLink = errors.New("gpgpu: program failed to link")
	// ErrNoShader is returned when a pass is given a shader without a usable program.
	ErrNoShader = errors.New("gpgpu: shader has no usable program")
	// ErrTargetNotReady is returned when a render target has no framebuffer.
	ErrTargetNotReady = errors.New("gpgpu: render target not ready")
	// ErrBufferNotReady is returned when a feedback pass is given a buffer
	// without position data.
	ErrBufferNotReady = errors.New("gpgpu: position buffer not ready")
	// ErrBufferMismatch is returned when source and target buffers cannot be
	// paired for a feedback pass.
	ErrBufferMismatch = errors.New("gpgpu: source and target buffers mismatch")
	// ErrGLInit is returned when the OpenGL function table cannot be loaded.
	ErrGLInit = errors.New("gpgpu: OpenGL init failed")
)
