package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/gpgpu/camera"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		w    float32
		want ParticleState
	}{
		{0, StateSettled},
		{0.0009, StateSettled},
		{-0.0009, StateSettled},
		{0.01, StateFalling},
		{-0.003, StateRising},
	}
	for _, tt := range tests {
		if got := Classify(tt.w); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.w, got, tt.want)
		}
	}
}

func TestStateColors(t *testing.T) {
	if StateSettled.Color() != ColorSettled || StateFalling.Color() != ColorFalling || StateRising.Color() != ColorRising {
		t.Error("state colours do not match the palette")
	}
}

func TestCamera3D(t *testing.T) {
	cam := camera.New(800, 600, 5, 0, 0, 45)
	cam.Target = mgl32.Vec3{0, -1, 0}

	rc := Camera3D(cam)
	if rc.Position.Z != 5 || rc.Position.Y != -1 {
		t.Errorf("position = %+v", rc.Position)
	}
	if rc.Target.Y != -1 || rc.Up.Y != 1 || rc.Fovy != 45 {
		t.Errorf("camera = %+v", rc)
	}
}
