// Package origins generates the rest positions particles reseed to.
//
// Every generator writes n particles as flat RGBA floats (x, y, z, 0), the
// layout shared by the origin texture, the origin vertex buffer and the CPU
// backend. Output is deterministic for a given seed.
package origins

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrUnknownShape is returned by Generate for a name with no generator.
var ErrUnknownShape = errors.New("origins: unknown shape")

// Generator fills dst (4 floats per particle) using rng.
type Generator func(dst []float32, scale float32, rng *rand.Rand)

var generators = map[string]Generator{
	"sphere": Sphere,
	"cube":   Cube,
	"plane":  Plane,
}

// Shapes returns the registered shape names in sorted order.
func Shapes() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate returns n origins laid out as shape.
func Generate(shape string, n int, scale float32, seed int64) ([]float32, error) {
	gen, ok := generators[shape]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
	if n <= 0 {
		return nil, fmt.Errorf("origins: particle count must be positive, got %d", n)
	}
	dst := make([]float32, n*4)
	gen(dst, scale, rand.New(rand.NewSource(seed)))
	return dst, nil
}

// Sphere places particles uniformly on the surface of a sphere of radius
// scale centred on the origin.
func Sphere(dst []float32, scale float32, rng *rand.Rand) {
	for i := 0; i+3 < len(dst); i += 4 {
		// Uniform in z and azimuth gives a uniform surface density.
		z := rng.Float64()*2 - 1
		phi := rng.Float64() * 2 * math.Pi
		r := math.Sqrt(1 - z*z)
		dst[i] = float32(r*math.Cos(phi)) * scale
		dst[i+1] = float32(r*math.Sin(phi)) * scale
		dst[i+2] = float32(z) * scale
		dst[i+3] = 0
	}
}

// Cube fills the cube [-scale, scale]^3 uniformly.
func Cube(dst []float32, scale float32, rng *rand.Rand) {
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i] = (rng.Float32()*2 - 1) * scale
		dst[i+1] = (rng.Float32()*2 - 1) * scale
		dst[i+2] = (rng.Float32()*2 - 1) * scale
		dst[i+3] = 0
	}
}

// Plane lays particles on a jittered grid in the y = 0 plane spanning
// [-scale, scale] in x and z.
func Plane(dst []float32, scale float32, rng *rand.Rand) {
	n := len(dst) / 4
	side := int(math.Ceil(math.Sqrt(float64(n))))
	if side == 0 {
		return
	}
	cell := 2 * scale / float32(side)
	for p := 0; p < n; p++ {
		gx, gz := p%side, p/side
		i := p * 4
		dst[i] = -scale + (float32(gx)+rng.Float32())*cell
		dst[i+1] = 0
		dst[i+2] = -scale + (float32(gz)+rng.Float32())*cell
		dst[i+3] = 0
	}
}
