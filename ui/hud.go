package ui

import (
	"fmt"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gpgpu/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Backend   string
	Stats     telemetry.ParticleStats
	Frame     int64
	Timer     float32
	FPS       int32
	Paused    bool
	Colliders int
	Slots     int
	Pointer   bool // Pointer collider is following the mouse

	SettledColor, FallingColor, RisingColor rl.Color
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x := int32(10)

	rl.DrawText(data.Title, x, 10, 20, rl.White)
	rl.DrawText(
		fmt.Sprintf("Backend: %s | Particles: %d | FPS: %d", data.Backend, data.Stats.Count, data.FPS),
		x, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Timer: %.3f | Colliders: %d/%d", data.Frame, data.Timer, data.Colliders, data.Slots),
		x, 55, 16, rl.LightGray,
	)

	y := int32(80)
	y = r.DrawColorSwatch(x, y, fmt.Sprintf("Settled %d", data.Stats.Settled), data.SettledColor)
	y = r.DrawColorSwatch(x, y, fmt.Sprintf("Falling %d", data.Stats.Falling), data.FallingColor)
	y = r.DrawColorSwatch(x, y, fmt.Sprintf("Rising  %d", data.Stats.Rising), data.RisingColor)
	y = r.DrawBar(x, y+4, "Moving", float32(data.Stats.MovingFraction()), 260, r.Theme.BarFill)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	if data.Pointer {
		status += " | pointer on"
	}
	rl.DrawText(status, x, y+4, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls []string) {
	rl.DrawText(strings.Join(controls, "  "), 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders frame phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	height := pad*2 + r.Theme.LineHeight*int32(3+len(telemetry.Phases))
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Frame Timing")
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%s (%s..%s)",
		stats.AvgFrameDuration.Round(time.Microsecond),
		stats.MinFrameDuration.Round(time.Microsecond),
		stats.MaxFrameDuration.Round(time.Microsecond)))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%.0f", stats.FPS))

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := r.Theme.BarFill
		if pct > 50 {
			color = rl.Orange
		}
		y = r.DrawBar(x, y, phase, float32(pct/100), p.width-pad*2, color)
	}
}
