package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayHUD       OverlayID = "hud"
	OverlayStateView OverlayID = "state_view"
	OverlayColliders OverlayID = "colliders"
	OverlayFloor     OverlayID = "floor"
	OverlayPerf      OverlayID = "perf"
	OverlayInspector OverlayID = "inspector"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // Keyboard key to toggle (0 = no key)
	KeyLabel    string // Key label for display
	Category    string
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayHUD,
		Name:        "HUD",
		Description: "Particle counts, clock and backend",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "info",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Frame Timing",
		Description: "Per-phase frame timings",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "info",
	})

	// The raw state view replaces the 3D scene, so scene overlays switch off.
	r.Register(OverlayDescriptor{
		ID:          OverlayStateView,
		Name:        "State View",
		Description: "Draw the kernel output straight to the screen",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "scene",
		Exclusive:   []OverlayID{OverlayColliders, OverlayFloor},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayColliders,
		Name:        "Colliders",
		Description: "Wireframe collider spheres",
		Key:         rl.KeyC,
		KeyLabel:    "C",
		Category:    "scene",
		Exclusive:   []OverlayID{OverlayStateView},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayFloor,
		Name:        "Floor",
		Description: "Grid at the bounce height",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "scene",
		Exclusive:   []OverlayID{OverlayStateView},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayInspector,
		Name:        "Inspector",
		Description: "Components of the selected collider",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry, disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress toggles the overlay bound to key.
// Returns the overlay ID, its new state, and whether any overlay matched.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// EnabledOverlays returns the enabled overlay IDs in registration order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, desc := range r.descriptors {
		if r.enabled[desc.ID] {
			result = append(result, desc.ID)
		}
	}
	return result
}

// Legend returns the "[K] Name" labels of every overlay with a key.
func (r *OverlayRegistry) Legend() []string {
	var out []string
	for _, desc := range r.descriptors {
		if desc.KeyLabel != "" {
			out = append(out, "["+desc.KeyLabel+"] "+desc.Name)
		}
	}
	return out
}
