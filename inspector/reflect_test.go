package inspector

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/gpgpu/components"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		kind   reflect.Kind
		widget Widget
		opts   map[string]string
	}{
		{"", reflect.Float32, WidgetLabel, map[string]string{}},
		{"", reflect.Bool, WidgetBool, map[string]string{}},
		{"bar,max:2", reflect.Float32, WidgetBar, map[string]string{"max": "2"}},
		{"label,fmt:%.2f rad/s", reflect.Float32, WidgetLabel, map[string]string{"fmt": "%.2f rad/s"}},
		{"angle", reflect.Float32, WidgetAngle, map[string]string{}},
		{"sparkle", reflect.Int, WidgetLabel, map[string]string{}},
	}
	for _, tt := range tests {
		w, opts := ParseTag(tt.tag, tt.kind)
		if w != tt.widget {
			t.Errorf("ParseTag(%q) widget = %v, want %v", tt.tag, w, tt.widget)
		}
		if len(opts) != len(tt.opts) {
			t.Errorf("ParseTag(%q) options = %v, want %v", tt.tag, opts, tt.opts)
			continue
		}
		for k, v := range tt.opts {
			if opts[k] != v {
				t.Errorf("ParseTag(%q) option %s = %q, want %q", tt.tag, k, opts[k], v)
			}
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value any
		fmt   string
		want  string
	}{
		{mgl32.Vec3{1, 2, 3}, "", "(1.00, 2.00, 3.00)"},
		{mgl32.Vec3{0.5, 0, -1}, "%.1f", "(0.5, 0.0, -1.0)"},
		{float32(0.7), "%.2f rad/s", "0.70 rad/s"},
		{float32(1.234), "", "1.23"},
		{3, "", "3"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.value, tt.fmt); got != tt.want {
			t.Errorf("FormatValue(%v, %q) = %q, want %q", tt.value, tt.fmt, got, tt.want)
		}
	}
}

func TestFieldHeightFallsBackToLabel(t *testing.T) {
	// A bar over a non-float value draws as a label.
	f := Field{Name: "Index", Value: 2, Widget: WidgetBar}
	if got := FieldHeight(f); got != labelHeight {
		t.Errorf("FieldHeight = %d, want %d", got, labelHeight)
	}
}

func TestExtractFieldsFromComponents(t *testing.T) {
	orbit := &components.Orbit{Anchor: mgl32.Vec3{1, 2, 3}, Radius: 0.5, Speed: 1, Phase: 0.25}
	fields := ExtractFields(orbit)
	if len(fields) != 4 {
		t.Fatalf("got %d fields, want 4", len(fields))
	}

	want := []Widget{WidgetLabel, WidgetBar, WidgetLabel, WidgetAngle}
	for i, f := range fields {
		if f.Widget != want[i] {
			t.Errorf("field %s widget = %v, want %v", f.Name, f.Widget, want[i])
		}
	}
	if got := FormatValue(fields[0].Value, fields[0].Options["fmt"]); got != "(1.00, 2.00, 3.00)" {
		t.Errorf("anchor formats as %q", got)
	}
	if got := GetMax(fields[1].Options); got != 3 {
		t.Errorf("radius max = %v, want 3", got)
	}

	ptr := ExtractFields(&components.Pointer{Active: true})
	if len(ptr) != 1 || ptr[0].Widget != WidgetBool || FieldHeight(ptr[0]) != boolHeight {
		t.Errorf("pointer fields = %+v", ptr)
	}

	if ExtractFields(42) != nil {
		t.Error("non-struct should yield no fields")
	}
	var nilSphere *components.Sphere
	if ExtractFields(nilSphere) != nil {
		t.Error("nil pointer should yield no fields")
	}
}

func TestTypeName(t *testing.T) {
	if got := TypeName(&components.Sphere{}); got != "Sphere" {
		t.Errorf("TypeName = %q, want Sphere", got)
	}
	if got := TypeName(nil); got != "" {
		t.Errorf("TypeName(nil) = %q", got)
	}
}
