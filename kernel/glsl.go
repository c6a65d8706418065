package kernel

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

//go:embed shaders/*
var shaderFS embed.FS

var shaderTemplates = template.Must(
	template.New("shaders").Funcs(template.FuncMap{"glsl": glslFloat}).ParseFS(shaderFS, "shaders/*"),
)

// shaderParams is the data every shader template renders against.
type shaderParams struct {
	MaxColliders    int
	SettledEpsilon  float64
	NoiseAmplitude  float64
	Gravity         float64
	Floor           float64
	Restitution     float64
	RearmVelocity   float64
	ReseedThreshold float64
}

func newShaderParams(maxColliders int) (shaderParams, error) {
	if maxColliders < 1 || maxColliders > MaxCollidersLimit {
		return shaderParams{}, fmt.Errorf("kernel: max colliders %d out of range [1, %d]", maxColliders, MaxCollidersLimit)
	}
	return shaderParams{
		MaxColliders:    maxColliders,
		SettledEpsilon:  SettledEpsilon,
		NoiseAmplitude:  NoiseAmplitude,
		Gravity:         Gravity,
		Floor:           Floor,
		Restitution:     Restitution,
		RearmVelocity:   RearmVelocity,
		ReseedThreshold: ReseedThreshold,
	}, nil
}

// Common returns the uniform declarations, rand and runSimulation shared by
// both shading stages.
func Common(maxColliders int) (string, error) {
	return render("common", maxColliders)
}

// FragmentSource returns the render-to-texture fragment shader. It samples
// tPositions and origin at gl_FragCoord.xy / resolution.
func FragmentSource(maxColliders int) (string, error) {
	return render("simulation.fs", maxColliders)
}

// FeedbackVertexSource returns the vertex shader whose gl_Position is
// captured by transform feedback.
func FeedbackVertexSource(maxColliders int) (string, error) {
	return render("feedback.vs", maxColliders)
}

// FeedbackFragmentSource returns the fragment shader linked with the
// feedback vertex stage. Rasterization is discarded, so it only has to link.
func FeedbackFragmentSource() string {
	s, err := render("feedback.fs", DefaultMaxColliders)
	if err != nil {
		panic(err)
	}
	return s
}

func render(name string, maxColliders int) (string, error) {
	params, err := newShaderParams(maxColliders)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := shaderTemplates.ExecuteTemplate(&sb, name, params); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return sb.String(), nil
}

// glslFloat formats v as a GLSL float literal (always with a decimal point).
func glslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
