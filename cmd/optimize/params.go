package main

import (
	"fmt"

	"github.com/pthm-cable/gpgpu/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters: the timer speed,
// then radius and orbit speed for each configured collider.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector builds the parameter set for the colliders in cfg. Defaults
// come from cfg, clamped into bounds.
func NewParamVector(cfg *config.Config) *ParamVector {
	pv := &ParamVector{}
	pv.add(ParamSpec{Name: "timer_speed", Path: "simulation.timer_speed", Min: 0.01, Max: 1.0, Default: cfg.Simulation.TimerSpeed})
	for i, c := range cfg.Colliders {
		pv.add(ParamSpec{
			Name:    fmt.Sprintf("collider%d_radius", i),
			Path:    fmt.Sprintf("colliders[%d].radius", i),
			Min:     0.05,
			Max:     1.5,
			Default: c.Radius,
		})
		pv.add(ParamSpec{
			Name:    fmt.Sprintf("collider%d_speed", i),
			Path:    fmt.Sprintf("colliders[%d].orbit.speed", i),
			Min:     -3,
			Max:     3,
			Default: c.Orbit.Speed,
		})
	}
	return pv
}

func (pv *ParamVector) add(spec ParamSpec) {
	spec.Default = min(max(spec.Default, spec.Min), spec.Max)
	pv.Specs = append(pv.Specs, spec)
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes its
// derived values. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	i := 0
	cfg.Simulation.TimerSpeed = clamped[i]
	i++
	for c := range cfg.Colliders {
		cfg.Colliders[c].Radius = clamped[i]
		cfg.Colliders[c].Orbit.Speed = clamped[i+1]
		i += 2
	}
	return cfg.Refresh()
}
