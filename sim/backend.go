// Package sim runs the particle simulation one frame at a time on a chosen
// backend and feeds telemetry from it.
package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/kernel"
)

// ErrSize is returned when particle data does not match a backend's count.
var ErrSize = errors.New("sim: particle data size mismatch")

// Backend advances particle state by one frame per Step. Each successful
// Step swaps source and target, so the next Step reads what this one wrote.
type Backend interface {
	// Name identifies the backend in logs and telemetry.
	Name() string
	// Count is the number of particles.
	Count() int
	// Step runs one frame with the given clock and flat collider array.
	Step(timer float32, colliders []float32) error
	// Positions copies the current state into dst (4 floats per particle).
	Positions(dst []float32) error
	// Reset overwrites the current state.
	Reset(positions []float32) error
	// Unload releases any resources held.
	Unload()
}

// NewBackend creates the backend cfg.Simulation.Backend names, starting from
// positions with origins as the reseed targets. GPU backends need a current
// GL context.
func NewBackend(cfg *config.Config, positions, origins []float32) (Backend, error) {
	size := cfg.Simulation.TextureSize
	switch cfg.Simulation.Backend {
	case config.BackendCPU:
		return NewCPUBackend(size, size, positions, origins, cfg.Simulation.Parallel)
	case config.BackendTexture:
		return NewTextureBackend(size, size, positions, origins, cfg.Simulation.MaxColliders)
	case config.BackendFeedback:
		return NewFeedbackBackend(positions, origins, cfg.Simulation.MaxColliders)
	default:
		return nil, fmt.Errorf("sim: unknown backend %q", cfg.Simulation.Backend)
	}
}

// NewHeadlessBackend creates the CPU backend standing in for the GPU backend
// cfg names: the buffer layout for feedback, the image layout otherwise.
func NewHeadlessBackend(cfg *config.Config, positions, origins []float32) (*CPUBackend, error) {
	if cfg.Simulation.Backend == config.BackendFeedback {
		return NewCPUBufferBackend(positions, origins, cfg.Simulation.Parallel)
	}
	size := cfg.Simulation.TextureSize
	return NewCPUBackend(size, size, positions, origins, cfg.Simulation.Parallel)
}

// CPUBackend runs the kernel in Go. It uses the image layout of the texture
// backend or the buffer layout of the feedback backend, so its output matches
// the GPU variant it stands in for.
type CPUBackend struct {
	name     string
	parallel bool

	src, dst  kernel.Storage
	srcData   []float32
	dstData   []float32
	origin    kernel.Storage
	colliders []mgl32.Vec4
}

// NewCPUBackend creates a CPU backend over a width x height image.
func NewCPUBackend(width, height int, positions, origins []float32, parallel bool) (*CPUBackend, error) {
	n := width * height
	if err := checkData(n, positions, origins); err != nil {
		return nil, err
	}
	src, dst, origin := kernel.NewImage(width, height), kernel.NewImage(width, height), kernel.NewImage(width, height)
	copy(src.Pix, positions)
	copy(origin.Pix, origins)
	return &CPUBackend{
		name:     "cpu",
		parallel: parallel,
		src:      src,
		dst:      dst,
		srcData:  src.Pix,
		dstData:  dst.Pix,
		origin:   origin,
	}, nil
}

// NewCPUBufferBackend creates a CPU backend over a flat vertex buffer.
func NewCPUBufferBackend(positions, origins []float32, parallel bool) (*CPUBackend, error) {
	n := len(positions) / 4
	if err := checkData(n, positions, origins); err != nil {
		return nil, err
	}
	src, dst, origin := kernel.NewBuffer(n), kernel.NewBuffer(n), kernel.NewBuffer(n)
	copy(src.Data, positions)
	copy(origin.Data, origins)
	return &CPUBackend{
		name:     "cpu-buffer",
		parallel: parallel,
		src:      src,
		dst:      dst,
		srcData:  src.Data,
		dstData:  dst.Data,
		origin:   origin,
	}, nil
}

func (b *CPUBackend) Name() string { return b.name }
func (b *CPUBackend) Count() int   { return b.src.Len() }

func (b *CPUBackend) Step(timer float32, colliders []float32) error {
	b.colliders = unpack(b.colliders, colliders)
	run := kernel.Run
	if b.parallel {
		run = kernel.RunParallel
	}
	if err := run(b.src, b.dst, b.origin, timer, b.colliders); err != nil {
		return err
	}
	b.src, b.dst = b.dst, b.src
	b.srcData, b.dstData = b.dstData, b.srcData
	return nil
}

func (b *CPUBackend) Positions(dst []float32) error {
	if len(dst) != len(b.srcData) {
		return fmt.Errorf("%w: have %d floats, want %d", ErrSize, len(dst), len(b.srcData))
	}
	copy(dst, b.srcData)
	return nil
}

func (b *CPUBackend) Reset(positions []float32) error {
	if len(positions) != len(b.srcData) {
		return fmt.Errorf("%w: have %d floats, want %d", ErrSize, len(positions), len(b.srcData))
	}
	copy(b.srcData, positions)
	return nil
}

func (b *CPUBackend) Unload() {}

// unpack reuses dst to hold flat as vectors.
func unpack(dst []mgl32.Vec4, flat []float32) []mgl32.Vec4 {
	n := len(flat) / 4
	if cap(dst) < n {
		dst = make([]mgl32.Vec4, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = mgl32.Vec4{flat[i*4], flat[i*4+1], flat[i*4+2], flat[i*4+3]}
	}
	return dst
}

func checkData(n int, positions, origins []float32) error {
	if n <= 0 {
		return fmt.Errorf("%w: no particles", ErrSize)
	}
	if len(positions) != n*4 || len(origins) != n*4 {
		return fmt.Errorf("%w: %d particles, %d position floats, %d origin floats",
			ErrSize, n, len(positions), len(origins))
	}
	return nil
}
