package sim

import (
	"fmt"

	"github.com/pthm-cable/gpgpu/gpgpu"
)

// TextureBackend runs the fragment kernel over a ping-ponged pair of float
// textures.
type TextureBackend struct {
	gpgpu   *gpgpu.GPGPU
	shader  *gpgpu.SimulationShader
	state   *gpgpu.PingPong
	origins *gpgpu.Target
}

// NewTextureBackend uploads positions and origins into width x height float
// textures and compiles the kernel for maxColliders slots.
func NewTextureBackend(width, height int, positions, origins []float32, maxColliders int) (*TextureBackend, error) {
	if err := checkData(width*height, positions, origins); err != nil {
		return nil, err
	}
	if err := gpgpu.InitGL(); err != nil {
		return nil, err
	}

	shader, err := gpgpu.NewSimulationShader(maxColliders)
	if err != nil {
		return nil, err
	}
	state, err := gpgpu.NewPingPong(width, height, positions)
	if err != nil {
		shader.Unload()
		return nil, err
	}
	originTarget, err := gpgpu.NewTarget(width, height, origins)
	if err != nil {
		state.Unload()
		shader.Unload()
		return nil, err
	}

	return &TextureBackend{
		gpgpu:   gpgpu.NewGPGPU(),
		shader:  shader,
		state:   state,
		origins: originTarget,
	}, nil
}

func (b *TextureBackend) Name() string { return "texture" }
func (b *TextureBackend) Count() int   { return b.state.Source().Len() }

func (b *TextureBackend) Step(timer float32, colliders []float32) error {
	b.bind(timer, colliders)
	if err := b.gpgpu.Pass(b.shader, b.state.Dest()); err != nil {
		return err
	}
	b.state.Swap()
	return nil
}

// DrawState runs the kernel on the current state straight to the screen,
// covering width x height pixels, without advancing anything.
func (b *TextureBackend) DrawState(timer float32, colliders []float32, width, height int) error {
	b.bind(timer, colliders)
	return b.gpgpu.Out(b.shader, width, height)
}

func (b *TextureBackend) bind(timer float32, colliders []float32) {
	b.shader.
		SetPositionsTexture(b.state.Source().Texture()).
		SetOriginsTexture(b.origins.Texture()).
		SetColliders(colliders).
		SetTimer(timer)
}

func (b *TextureBackend) Positions(dst []float32) error {
	return b.state.Source().Read(dst)
}

func (b *TextureBackend) Reset(positions []float32) error {
	return b.state.Source().Write(positions)
}

// Passes returns the number of GPU passes issued.
func (b *TextureBackend) Passes() uint64 { return b.gpgpu.Passes() }

func (b *TextureBackend) Unload() {
	b.origins.Unload()
	b.state.Unload()
	b.shader.Unload()
}

// FeedbackBackend runs the vertex kernel with transform feedback between two
// particle buffers.
type FeedbackBackend struct {
	gpgpu   *gpgpu.GPGPU2
	shader  *gpgpu.SimulationShader2
	buffers [2]*gpgpu.ParticleBuffer
	read    int
}

// NewFeedbackBackend uploads positions into two buffers and origins into the
// kernel's origin attribute, and compiles the kernel for maxColliders slots.
func NewFeedbackBackend(positions, origins []float32, maxColliders int) (*FeedbackBackend, error) {
	if err := checkData(len(positions)/4, positions, origins); err != nil {
		return nil, err
	}
	if err := gpgpu.InitGL(); err != nil {
		return nil, err
	}

	shader, err := gpgpu.NewSimulationShader2(maxColliders)
	if err != nil {
		return nil, err
	}
	if err := shader.SetOriginData(origins); err != nil {
		shader.Unload()
		return nil, err
	}

	b := &FeedbackBackend{gpgpu: gpgpu.NewGPGPU2(), shader: shader}
	for i := range b.buffers {
		buf, err := gpgpu.NewParticleBuffer(positions)
		if err != nil {
			b.Unload()
			return nil, fmt.Errorf("particle buffer %d: %w", i, err)
		}
		b.buffers[i] = buf
	}
	return b, nil
}

func (b *FeedbackBackend) Name() string { return "feedback" }
func (b *FeedbackBackend) Count() int   { return b.buffers[b.read].Count() }

func (b *FeedbackBackend) Step(timer float32, colliders []float32) error {
	b.shader.SetTimer(timer)
	b.shader.SetColliders(colliders)
	if err := b.gpgpu.Pass(b.shader, b.buffers[b.read], b.buffers[1-b.read]); err != nil {
		return err
	}
	b.read = 1 - b.read
	return nil
}

func (b *FeedbackBackend) Positions(dst []float32) error {
	return b.buffers[b.read].Read(dst)
}

func (b *FeedbackBackend) Reset(positions []float32) error {
	return b.buffers[b.read].Write(positions)
}

// Passes returns the number of GPU passes issued.
func (b *FeedbackBackend) Passes() uint64 { return b.gpgpu.Passes() }

func (b *FeedbackBackend) Unload() {
	for _, buf := range b.buffers {
		buf.Unload()
	}
	b.gpgpu.Unload()
	b.shader.Unload()
}
