// Package inspector shows the components of a selected collider, laid out
// from their inspect struct tags.
package inspector

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gpgpu/camera"
	"github.com/pthm-cable/gpgpu/colliders"
)

// Panel dimensions
const (
	PanelWidth    = 300
	PanelPadding  = 10
	HeaderHeight  = 30
	SectionHeight = 22
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
)

// Inspector manages collider selection and panel rendering.
type Inspector struct {
	selected    ecs.Entity
	hasSelected bool
	panelX      int32
	panelY      int32
}

// NewInspector creates an inspector whose panel hugs the right screen edge.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize moves the panel for a new screen size.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 10
}

// HandleInput selects the collider under a left click. Clicks that miss every
// collider select the one nearest to where the ray meets the y = planeY plane.
// Escape deselects.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, reg *colliders.Registry, cam *camera.Camera, planeY float32) {
	if rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if int32(mouseX) >= closeX && int32(mouseX) <= closeX+20 &&
			int32(mouseY) >= closeY && int32(mouseY) <= closeY+20 {
			ins.Deselect()
			return
		}
		if ins.InPanel(mouseX, mouseY) {
			return
		}
	}

	ins.Pick(mouseX, mouseY, reg, cam, planeY)
}

// Pick selects the collider under screen point (sx, sy) and reports whether
// anything was selected.
func (ins *Inspector) Pick(sx, sy float32, reg *colliders.Registry, cam *camera.Camera, planeY float32) bool {
	origin, dir, err := cam.ScreenToRay(sx, sy)
	if err != nil {
		return false
	}
	if e, ok := reg.Pick(origin, dir); ok {
		ins.Select(e)
		return true
	}
	if p, ok := cam.ScreenToPlane(sx, sy, planeY); ok {
		if e, ok := reg.Nearest(p); ok {
			ins.Select(e)
			return true
		}
	}
	return false
}

// InPanel reports whether a screen point falls on the open panel.
func (ins *Inspector) InPanel(x, y float32) bool {
	return ins.hasSelected &&
		int32(x) >= ins.panelX && int32(x) <= ins.panelX+PanelWidth &&
		int32(y) >= ins.panelY
}

// Select makes e the selected collider.
func (ins *Inspector) Select(e ecs.Entity) {
	ins.selected = e
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
	ins.selected = ecs.Entity{}
}

// Selected returns the currently selected collider.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	return ins.selected, ins.hasSelected
}

// SelectedSlot returns the selected collider's slot, or -1.
func (ins *Inspector) SelectedSlot(reg *colliders.Registry) int {
	if !ins.hasSelected {
		return -1
	}
	slot, ok := reg.Slot(ins.selected)
	if !ok {
		ins.Deselect()
		return -1
	}
	return slot
}

// Draw renders the panel for the selected collider, if any.
func (ins *Inspector) Draw(reg *colliders.Registry) {
	if !ins.hasSelected {
		return
	}
	comps := reg.Components(ins.selected)
	if comps == nil {
		// Removed since it was selected.
		ins.Deselect()
		return
	}

	sections := make([][]Field, len(comps))
	height := int32(HeaderHeight + PanelPadding*2)
	for i, c := range comps {
		sections[i] = ExtractFields(c)
		height += SectionHeight
		for _, f := range sections[i] {
			height += FieldHeight(f)
		}
	}

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(height)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("COLLIDER", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding
	for i, c := range comps {
		ins.drawSectionHeader(x, y, TypeName(c))
		y += SectionHeight
		for _, f := range sections[i] {
			y += DrawField(x, y, f)
		}
	}
}

func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}
