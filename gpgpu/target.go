package gpgpu

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Target is a float RGBA render target: one RGBA32F texture attached to a
// framebuffer. Each texel holds one particle's (x, y, z, w).
//
// raylib's LoadRenderTexture only allocates 8-bit colour, so the texture and
// framebuffer are created directly and wrapped as a RenderTexture2D for
// BeginTextureMode.
type Target struct {
	rt rl.RenderTexture2D
}

// NewTarget creates a width x height float target. data is optional initial
// state (4 floats per texel, row-major from the bottom row).
func NewTarget(width, height int, data []float32) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpgpu: invalid target size %dx%d", width, height)
	}
	if data != nil && len(data) != width*height*4 {
		return nil, fmt.Errorf("gpgpu: target data has %d floats, want %d", len(data), width*height*4)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if data != nil {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(data))
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteTextures(1, &tex)
		return nil, fmt.Errorf("%w: framebuffer status 0x%x", ErrTargetNotReady, status)
	}

	return &Target{rt: rl.RenderTexture2D{
		ID: fbo,
		Texture: rl.Texture2D{
			ID:      tex,
			Width:   int32(width),
			Height:  int32(height),
			Mipmaps: 1,
			Format:  rl.UncompressedR32g32b32a32,
		},
	}}, nil
}

// Texture returns the colour attachment, for sampling in a later pass.
func (t *Target) Texture() rl.Texture2D { return t.rt.Texture }

// RenderTexture returns the raylib view of the target.
func (t *Target) RenderTexture() rl.RenderTexture2D { return t.rt }

func (t *Target) Width() int  { return int(t.rt.Texture.Width) }
func (t *Target) Height() int { return int(t.rt.Texture.Height) }

// Len returns the number of texels (particles).
func (t *Target) Len() int { return t.Width() * t.Height() }

// Ready reports whether the target still owns a framebuffer.
func (t *Target) Ready() bool { return t != nil && t.rt.ID != 0 && t.rt.Texture.ID != 0 }

// Read copies the texels into dst, which must hold Len()*4 floats.
func (t *Target) Read(dst []float32) error {
	if !t.Ready() {
		return ErrTargetNotReady
	}
	if len(dst) != t.Len()*4 {
		return fmt.Errorf("gpgpu: read buffer has %d floats, want %d", len(dst), t.Len()*4)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.rt.Texture.ID)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.FLOAT, gl.Ptr(dst))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// Write replaces the texels with data (Len()*4 floats).
func (t *Target) Write(data []float32) error {
	if !t.Ready() {
		return ErrTargetNotReady
	}
	if len(data) != t.Len()*4 {
		return fmt.Errorf("gpgpu: write data has %d floats, want %d", len(data), t.Len()*4)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.rt.Texture.ID)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.Width()), int32(t.Height()), gl.RGBA, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// Unload releases the framebuffer and texture.
func (t *Target) Unload() {
	if t == nil {
		return
	}
	if t.rt.ID != 0 {
		gl.DeleteFramebuffers(1, &t.rt.ID)
	}
	if t.rt.Texture.ID != 0 {
		gl.DeleteTextures(1, &t.rt.Texture.ID)
	}
	t.rt = rl.RenderTexture2D{}
}

// PingPong alternates two targets so each frame reads the previous frame's
// output and writes the other one.
type PingPong struct {
	targets [2]*Target
	read    int
}

// NewPingPong creates two width x height targets, both holding data.
func NewPingPong(width, height int, data []float32) (*PingPong, error) {
	a, err := NewTarget(width, height, data)
	if err != nil {
		return nil, err
	}
	b, err := NewTarget(width, height, data)
	if err != nil {
		a.Unload()
		return nil, err
	}
	return &PingPong{targets: [2]*Target{a, b}}, nil
}

// Source is the target holding the current state.
func (p *PingPong) Source() *Target { return p.targets[p.read] }

// Dest is the target the next pass writes.
func (p *PingPong) Dest() *Target { return p.targets[1-p.read] }

// Swap makes Dest the new Source.
func (p *PingPong) Swap() { p.read = 1 - p.read }

// Unload releases both targets.
func (p *PingPong) Unload() {
	p.targets[0].Unload()
	p.targets[1].Unload()
}
