// Collider tuner - interactive preview of the CPU kernel with sliders for
// collider radius, orbit speed and timer speed.
//
// Usage: go run ./cmd/tuner -config config.yaml -out tuned.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/gpgpu/camera"
	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/renderer"
	"github.com/pthm-cable/gpgpu/sim"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = 600
	panelWidth   = windowWidth - previewSize - 30
	sliderWidth  = panelWidth - 80

	// maxTunedColliders bounds how many collider rows fit in the panel.
	maxTunedColliders = 4
)

// tuning holds the slider values.
type tuning struct {
	TimerSpeed float32
	Radius     []float32
	Speed      []float32
}

func fromConfig(cfg *config.Config) tuning {
	t := tuning{TimerSpeed: cfg.Derived.TimerSpeed32}
	for i, c := range cfg.Colliders {
		if i == maxTunedColliders {
			break
		}
		t.Radius = append(t.Radius, float32(c.Radius))
		t.Speed = append(t.Speed, float32(c.Orbit.Speed))
	}
	return t
}

// apply pushes t into the running simulation.
func (t tuning) apply(s *sim.Simulation) {
	s.SetTimerSpeed(t.TimerSpeed)
	reg := s.Colliders()
	for i := range t.Radius {
		e, ok := reg.At(i)
		if !ok {
			continue
		}
		if err := reg.SetRadius(e, t.Radius[i]); err != nil {
			slog.Warn("set radius", "collider", i, "error", err)
		}
		if err := reg.SetOrbitSpeed(e, t.Speed[i]); err != nil {
			slog.Warn("set orbit speed", "collider", i, "error", err)
		}
	}
}

// toConfig returns a copy of base carrying t.
func (t tuning) toConfig(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	cfg.Simulation.TimerSpeed = float64(t.TimerSpeed)
	for i := range t.Radius {
		cfg.Colliders[i].Radius = float64(t.Radius[i])
		cfg.Colliders[i].Orbit.Speed = float64(t.Speed[i])
	}
	return cfg, cfg.Refresh()
}

// yamlSnippet renders the tuned sections for the clipboard.
func (t tuning) yamlSnippet(base *config.Config) (string, error) {
	cfg, err := t.toConfig(base)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(struct {
		Simulation config.SimulationConfig `yaml:"simulation"`
		Colliders  []config.ColliderConfig `yaml:"colliders"`
	}{cfg.Simulation, cfg.Colliders})
	return string(out), err
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	size := flag.Int("size", 96, "Preview texture size (particles = size^2)")
	outPath := flag.String("out", "tuned.yaml", "Where the Save button writes the config")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	base, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	base.Simulation.Backend = config.BackendCPU
	base.Simulation.TextureSize = *size
	base.Pointer.Enabled = false
	if err := base.Refresh(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Collider Tuner")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	s, err := sim.New(base, sim.Options{Headless: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create simulation: %v\n", err)
		os.Exit(1)
	}
	defer s.Unload()

	cam := camera.New(previewSize, previewSize,
		float32(base.Camera.Distance),
		float32(base.Camera.Yaw),
		float32(base.Camera.Pitch),
		float32(base.Camera.FOV),
	)
	cam.SetZoomLimits(float32(base.Camera.MinDistance), float32(base.Camera.MaxDistance))
	particles := renderer.NewParticleRenderer(float32(base.Render.PointSize))

	target := rl.LoadRenderTexture(previewSize, previewSize)
	defer rl.UnloadRenderTexture(target)

	params := fromConfig(base)
	status := ""

	for !rl.WindowShouldClose() {
		// Orbit with right drag inside the preview.
		mouse := rl.GetMousePosition()
		inPreview := mouse.X >= 10 && mouse.X < 10+previewSize && mouse.Y >= 10 && mouse.Y < 10+previewSize
		if inPreview && rl.IsMouseButtonDown(rl.MouseButtonRight) {
			d := rl.GetMouseDelta()
			cam.Orbit(-d.X*0.005, d.Y*0.005)
		}
		if wheel := rl.GetMouseWheelMove(); inPreview && wheel != 0 {
			cam.ZoomBy(1 + wheel*0.1)
		}

		s.Update(min(rl.GetFrameTime(), 1.0/20.0))

		rl.BeginTextureMode(target)
		rl.ClearBackground(rl.Color{R: 12, G: 14, B: 20, A: 255})
		rl.BeginMode3D(renderer.Camera3D(cam))
		renderer.DrawFloor(10, 0.5)
		particles.Draw(s.Positions())
		renderer.DrawColliders(s.Colliders().Vectors(), -1)
		rl.EndMode3D()
		rl.EndTextureMode()

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Render textures are stored bottom-up.
		rl.DrawTexturePro(
			target.Texture,
			rl.Rectangle{X: 0, Y: 0, Width: previewSize, Height: -previewSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		latest := s.Latest()
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Settled: %d  Falling: %d  Rising: %d  Moving: %.1f%%",
			latest.Settled, latest.Falling, latest.Rising, latest.MovingFraction()*100), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Frame: %d  Timer: %.3f  FPS: %d", s.Frame(), s.Timer(), rl.GetFPS()), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Collider Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		changed := false
		v, panelY := slider(panelX, panelY, "Timer speed (noise drift rate)", "%.3f", params.TimerSpeed, 0.01, 1)
		if v != params.TimerSpeed {
			params.TimerSpeed = v
			changed = true
		}

		for i := range params.Radius {
			rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+panelWidth-20, int32(panelY), rl.LightGray)
			panelY += 10
			rl.DrawText(fmt.Sprintf("Collider %d", i), int32(panelX), int32(panelY), 16, rl.DarkGray)
			panelY += 22

			v, panelY = slider(panelX, panelY, "Radius", "%.2f", params.Radius[i], 0.05, 1.5)
			if v != params.Radius[i] {
				params.Radius[i] = v
				changed = true
			}
			v, panelY = slider(panelX, panelY, "Orbit speed (rad/s)", "%.2f", params.Speed[i], -3, 3)
			if v != params.Speed[i] {
				params.Speed[i] = v
				changed = true
			}
		}
		if changed {
			params.apply(s)
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(s.Paused(), "Resume", "Pause")) {
			s.TogglePause()
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Particles") {
			if err := s.ResetAll(); err != nil {
				status = err.Error()
			}
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Defaults") {
			params = fromConfig(base)
			params.apply(s)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Save YAML") {
			status = save(params, base, *outPath)
		}
		panelY += 45

		if status != "" {
			rl.DrawText(status, int32(panelX), int32(panelY), 14, rl.Gray)
		}

		// Instructions
		rl.DrawText("Right drag orbits, wheel zooms, C copies YAML", int32(panelX), windowHeight-30, 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			snippet, err := params.yamlSnippet(base)
			if err != nil {
				status = err.Error()
			} else {
				rl.SetClipboardText(snippet)
				status = "YAML copied to clipboard"
			}
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider bar and returns its value and the next row.
func slider(x, y float32, label, format string, value, lo, hi float32) (float32, float32) {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: sliderWidth, Height: 20},
		fmt.Sprintf("%g", lo), fmt.Sprintf("%g", hi),
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+sliderWidth+10), int32(y+2), 16, rl.DarkGray)
	return v, y + 35
}

func save(params tuning, base *config.Config, path string) string {
	cfg, err := params.toConfig(base)
	if err != nil {
		return err.Error()
	}
	if err := cfg.WriteYAML(path); err != nil {
		return err.Error()
	}
	return "Saved " + path
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
