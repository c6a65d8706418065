// Package colliders keeps the ordered, fixed-capacity set of sphere colliders
// the kernel pushes particles out of.
//
// Colliders are ECS entities. Each owns a slot in the packed uniform array;
// free slots are uploaded as zero vectors, which the kernel ignores.
package colliders

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gpgpu/components"
	"github.com/pthm-cable/gpgpu/config"
)

var (
	// ErrFull is returned by Spawn when every slot is taken.
	ErrFull = errors.New("colliders: all slots in use")
	// ErrNotFound is returned for an entity that is not a live collider.
	ErrNotFound = errors.New("colliders: no such collider")
)

// Registry owns the collider world.
type Registry struct {
	world *ecs.World

	mapper    *ecs.Map3[components.Slot, components.Sphere, components.Orbit]
	filter    *ecs.Filter3[components.Slot, components.Sphere, components.Orbit]
	sphereMap *ecs.Map[components.Sphere]
	orbitMap  *ecs.Map[components.Orbit]
	slotMap   *ecs.Map[components.Slot]
	pointer   *ecs.Map[components.Pointer]

	slots []ecs.Entity
	used  []bool
	count int
}

// NewRegistry creates an empty registry with capacity slots.
func NewRegistry(capacity int) (*Registry, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("colliders: capacity must be positive, got %d", capacity)
	}
	world := ecs.NewWorld()
	return &Registry{
		world:     world,
		mapper:    ecs.NewMap3[components.Slot, components.Sphere, components.Orbit](world),
		filter:    ecs.NewFilter3[components.Slot, components.Sphere, components.Orbit](world),
		sphereMap: ecs.NewMap[components.Sphere](world),
		orbitMap:  ecs.NewMap[components.Orbit](world),
		slotMap:   ecs.NewMap[components.Slot](world),
		pointer:   ecs.NewMap[components.Pointer](world),
		slots:     make([]ecs.Entity, capacity),
		used:      make([]bool, capacity),
	}, nil
}

// FromConfig builds a registry sized for cfg.Simulation.MaxColliders holding
// the configured colliders in list order.
func FromConfig(cfg *config.Config) (*Registry, error) {
	r, err := NewRegistry(cfg.Simulation.MaxColliders)
	if err != nil {
		return nil, err
	}
	for i, c := range cfg.Colliders {
		pos := mgl32.Vec3{float32(c.Position[0]), float32(c.Position[1]), float32(c.Position[2])}
		orbit := components.Orbit{
			Radius: float32(c.Orbit.Radius),
			Speed:  float32(c.Orbit.Speed),
			Phase:  float32(c.Orbit.Phase),
		}
		if _, err := r.Spawn(pos, float32(c.Radius), orbit); err != nil {
			return nil, fmt.Errorf("collider %d: %w", i, err)
		}
	}
	return r, nil
}

// Spawn adds a collider at pos in the lowest free slot. orbit.Anchor is set
// to pos. Colliders with a non-zero orbit radius start on their circle.
func (r *Registry) Spawn(pos mgl32.Vec3, radius float32, orbit components.Orbit) (ecs.Entity, error) {
	if radius < 0 {
		return ecs.Entity{}, fmt.Errorf("colliders: negative radius %g", radius)
	}
	slot := r.freeSlot()
	if slot < 0 {
		return ecs.Entity{}, ErrFull
	}

	orbit.Anchor = pos
	sphere := components.Sphere{Center: orbit.At(0), Radius: radius}
	s := components.Slot{Index: slot}
	e := r.mapper.NewEntity(&s, &sphere, &orbit)

	r.slots[slot] = e
	r.used[slot] = true
	r.count++
	return e, nil
}

// SpawnPointer adds the mouse-driven collider. It starts inactive; inactive
// pointers pack as empty slots.
func (r *Registry) SpawnPointer(radius float32) (ecs.Entity, error) {
	e, err := r.Spawn(mgl32.Vec3{}, radius, components.Orbit{})
	if err != nil {
		return e, err
	}
	r.pointer.Add(e, &components.Pointer{})
	return e, nil
}

// Remove deletes a collider and frees its slot.
func (r *Registry) Remove(e ecs.Entity) error {
	if !r.alive(e) {
		return ErrNotFound
	}
	slot := r.slotMap.Get(e).Index
	r.world.RemoveEntity(e)
	r.slots[slot] = ecs.Entity{}
	r.used[slot] = false
	r.count--
	return nil
}

// Move re-anchors a collider at pos.
func (r *Registry) Move(e ecs.Entity, pos mgl32.Vec3) error {
	if !r.alive(e) {
		return ErrNotFound
	}
	orbit := r.orbitMap.Get(e)
	orbit.Anchor = pos
	r.sphereMap.Get(e).Center = pos
	return nil
}

// SetRadius changes a collider's radius.
func (r *Registry) SetRadius(e ecs.Entity, radius float32) error {
	if !r.alive(e) {
		return ErrNotFound
	}
	if radius < 0 {
		return fmt.Errorf("colliders: negative radius %g", radius)
	}
	r.sphereMap.Get(e).Radius = radius
	return nil
}

// SetOrbitSpeed changes how fast a collider travels its orbit.
func (r *Registry) SetOrbitSpeed(e ecs.Entity, speed float32) error {
	if !r.alive(e) {
		return ErrNotFound
	}
	r.orbitMap.Get(e).Speed = speed
	return nil
}

// SetPointerActive switches the pointer collider on or off.
func (r *Registry) SetPointerActive(e ecs.Entity, active bool) error {
	if !r.alive(e) || !r.pointer.Has(e) {
		return ErrNotFound
	}
	r.pointer.Get(e).Active = active
	return nil
}

// Get returns a collider's (x, y, z, radius).
func (r *Registry) Get(e ecs.Entity) (mgl32.Vec4, bool) {
	if !r.alive(e) {
		return mgl32.Vec4{}, false
	}
	return r.sphereMap.Get(e).Vec4(), true
}

// Components returns pointers to a collider's components for display.
// The pointers are valid until the next structural change.
func (r *Registry) Components(e ecs.Entity) []any {
	if !r.alive(e) {
		return nil
	}
	out := []any{r.slotMap.Get(e), r.sphereMap.Get(e), r.orbitMap.Get(e)}
	if r.pointer.Has(e) {
		out = append(out, r.pointer.Get(e))
	}
	return out
}

// Nearest returns the collider whose surface is closest to p.
func (r *Registry) Nearest(p mgl32.Vec3) (ecs.Entity, bool) {
	best, found := ecs.Entity{}, false
	var bestDist float32
	for slot, e := range r.slots {
		if !r.used[slot] {
			continue
		}
		s := r.sphereMap.Get(e)
		d := p.Sub(s.Center).Len() - s.Radius
		if !found || d < bestDist {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

// Pick returns the collider whose sphere the ray from origin along dir hits
// first. dir need not be normalized.
func (r *Registry) Pick(origin, dir mgl32.Vec3) (ecs.Entity, bool) {
	best, found := ecs.Entity{}, false
	var bestT float32
	for slot, e := range r.slots {
		if !r.used[slot] {
			continue
		}
		s := r.sphereMap.Get(e)
		t, ok := raySphere(origin, dir, s.Center, s.Radius)
		if ok && (!found || t < bestT) {
			best, bestT, found = e, t, true
		}
	}
	return best, found
}

// Slot returns a collider's slot index.
func (r *Registry) Slot(e ecs.Entity) (int, bool) {
	if !r.alive(e) {
		return -1, false
	}
	return r.slotMap.Get(e).Index, true
}

// At returns the collider in slot, if any.
func (r *Registry) At(slot int) (ecs.Entity, bool) {
	if slot < 0 || slot >= len(r.slots) || !r.used[slot] {
		return ecs.Entity{}, false
	}
	return r.slots[slot], true
}

// Update moves every orbiting collider to its position at time t.
func (r *Registry) Update(t float32) {
	query := r.filter.Query()
	for query.Next() {
		_, sphere, orbit := query.Get()
		if orbit.Radius != 0 {
			sphere.Center = orbit.At(t)
		}
	}
}

// Len returns the number of live colliders.
func (r *Registry) Len() int { return r.count }

// Capacity returns the number of slots.
func (r *Registry) Capacity() int { return len(r.slots) }

// Pack writes 4*Capacity() floats into dst, growing it if needed, and returns
// it. Each collider lands at its slot; empty slots and inactive pointers are
// zero.
func (r *Registry) Pack(dst []float32) []float32 {
	n := len(r.slots) * 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	clear(dst)

	for slot, e := range r.slots {
		if !r.used[slot] {
			continue
		}
		if r.pointer.Has(e) && !r.pointer.Get(e).Active {
			continue
		}
		v := r.sphereMap.Get(e).Vec4()
		copy(dst[slot*4:slot*4+4], v[:])
	}
	return dst
}

// Vectors returns the packed colliders as vectors, one per slot.
func (r *Registry) Vectors() []mgl32.Vec4 {
	flat := r.Pack(nil)
	out := make([]mgl32.Vec4, len(r.slots))
	for i := range out {
		copy(out[i][:], flat[i*4:i*4+4])
	}
	return out
}

func (r *Registry) alive(e ecs.Entity) bool {
	return !e.IsZero() && r.world.Alive(e) && r.slotMap.Has(e)
}

func (r *Registry) freeSlot() int {
	for i, used := range r.used {
		if !used {
			return i
		}
	}
	return -1
}

// raySphere returns the ray parameter of the nearest intersection in front of
// origin.
func raySphere(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	a := dir.Dot(dir)
	if a == 0 {
		return 0, false
	}
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	if t := (-b - sq) / a; t >= 0 {
		return t, true
	}
	if t := (-b + sq) / a; t >= 0 {
		return t, true
	}
	return 0, false
}
