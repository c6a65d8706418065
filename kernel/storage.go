package kernel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrSizeMismatch is returned when source, target and origin storages do not
// hold the same number of particles.
var ErrSizeMismatch = errors.New("kernel: storage size mismatch")

// ErrAliased is returned when source and target are the same storage.
var ErrAliased = errors.New("kernel: source and target alias")

// Storage is particle state addressed by index. The two implementations mirror
// where the GPU variants keep state: texels of an image, or vertices of a
// buffer. They differ in which coordinate seeds the reseed hash.
type Storage interface {
	Len() int
	At(i int) mgl32.Vec4
	// Load returns particle i as the kernel reads it.
	Load(i int) mgl32.Vec4
	Set(i int, v mgl32.Vec4)
	// Seed returns the 2D coordinate hashed by the reseed rule.
	Seed(i int) mgl32.Vec2
}

// Image stores particles as RGBA float texels, row-major.
type Image struct {
	Width, Height int
	Pix           []float32
}

// NewImage allocates a zeroed width x height image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]float32, width*height*4)}
}

func (m *Image) Len() int { return m.Width * m.Height }

func (m *Image) At(i int) mgl32.Vec4 {
	p := m.Pix[i*4 : i*4+4 : i*4+4]
	return mgl32.Vec4{p[0], p[1], p[2], p[3]}
}

// Load drops the stored velocity: the fragment pass treats every texel as
// settled, so texture state only drifts and is pushed, never falls.
func (m *Image) Load(i int) mgl32.Vec4 {
	v := m.At(i)
	v[3] = 0
	return v
}

func (m *Image) Set(i int, v mgl32.Vec4) {
	copy(m.Pix[i*4:i*4+4], v[:])
}

// Seed is the texel-centre UV, the value gl_FragCoord.xy / resolution takes
// when the fragment pass writes texel i.
func (m *Image) Seed(i int) mgl32.Vec2 {
	x := i % m.Width
	y := i / m.Width
	return mgl32.Vec2{
		(float32(x) + 0.5) / float32(m.Width),
		(float32(y) + 0.5) / float32(m.Height),
	}
}

// Buffer stores particles as a flat vec4 vertex array.
type Buffer struct {
	Data []float32
}

// NewBuffer allocates a zeroed buffer for n particles.
func NewBuffer(n int) *Buffer {
	return &Buffer{Data: make([]float32, n*4)}
}

func (b *Buffer) Len() int { return len(b.Data) / 4 }

func (b *Buffer) At(i int) mgl32.Vec4 {
	p := b.Data[i*4 : i*4+4 : i*4+4]
	return mgl32.Vec4{p[0], p[1], p[2], p[3]}
}

// Load returns the stored state unchanged; the vertex pass keeps w.
func (b *Buffer) Load(i int) mgl32.Vec4 { return b.At(i) }

func (b *Buffer) Set(i int, v mgl32.Vec4) {
	copy(b.Data[i*4:i*4+4], v[:])
}

// Seed is the particle's own position.xy, as in the vertex stage.
func (b *Buffer) Seed(i int) mgl32.Vec2 {
	return mgl32.Vec2{b.Data[i*4], b.Data[i*4+1]}
}

// Run advances every particle in src by one frame into dst.
func Run(src, dst, origin Storage, timer float32, colliders []mgl32.Vec4) error {
	if err := check(src, dst, origin); err != nil {
		return err
	}
	runRange(src, dst, origin, timer, colliders, 0, src.Len())
	return nil
}

// parallelThreshold is the minimum particle count to fan out to workers.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 4096

// RunParallel is Run split into contiguous chunks, one per worker. It returns
// after every chunk is written.
func RunParallel(src, dst, origin Storage, timer float32, colliders []mgl32.Vec4) error {
	if err := check(src, dst, origin); err != nil {
		return err
	}
	n := src.Len()
	workers := runtime.GOMAXPROCS(0)
	if n < parallelThreshold || workers < 2 {
		runRange(src, dst, origin, timer, colliders, 0, n)
		return nil
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			runRange(src, dst, origin, timer, colliders, start, end)
		}(start, end)
	}
	wg.Wait()
	return nil
}

func runRange(src, dst, origin Storage, timer float32, colliders []mgl32.Vec4, start, end int) {
	for i := start; i < end; i++ {
		dst.Set(i, Advance(src.Load(i), origin.At(i), src.Seed(i), timer, colliders))
	}
}

func check(src, dst, origin Storage) error {
	if src == dst {
		return ErrAliased
	}
	if src.Len() != dst.Len() || src.Len() != origin.Len() {
		return fmt.Errorf("%w: src=%d dst=%d origin=%d", ErrSizeMismatch, src.Len(), dst.Len(), origin.Len())
	}
	return nil
}

// Colliders unpacks a flat uniform array into vectors.
func Colliders(flat []float32) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(flat)/4)
	for i := range out {
		out[i] = mgl32.Vec4{flat[i*4], flat[i*4+1], flat[i*4+2], flat[i*4+3]}
	}
	return out
}
