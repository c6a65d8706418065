package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Widget selects how a component field is drawn.
type Widget int

const (
	WidgetLabel Widget = iota
	WidgetBar
	WidgetAngle
	WidgetBool
)

// Field is one exported component field with its drawing hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// ParseTag reads an `inspect:"widget[,key:value...]"` tag, for example
// `inspect:"bar,max:2"` or `inspect:"label,fmt:%.2f rad/s"`. Untagged bool
// fields draw as checkboxes, everything else as labels.
func ParseTag(tag string, kind reflect.Kind) (Widget, map[string]string) {
	options := make(map[string]string)
	parts := strings.Split(tag, ",")

	widget := WidgetLabel
	switch strings.TrimSpace(parts[0]) {
	case "bar":
		widget = WidgetBar
	case "angle":
		widget = WidgetAngle
	case "bool":
		widget = WidgetBool
	case "":
		if kind == reflect.Bool {
			widget = WidgetBool
		}
	}

	for _, part := range parts[1:] {
		if k, v, ok := strings.Cut(strings.TrimSpace(part), ":"); ok {
			options[k] = v
		}
	}
	return widget, options
}

// ExtractFields lists a component's exported fields. component is usually a
// pointer from colliders.Registry.Components.
func ExtractFields(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var fields []Field
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := v.Field(i)
		widget, options := ParseTag(sf.Tag.Get("inspect"), fv.Kind())
		fields = append(fields, Field{
			Name:    sf.Name,
			Value:   fv.Interface(),
			Widget:  widget,
			Options: options,
		})
	}
	return fields
}

// TypeName returns the component's type name without package or pointer.
func TypeName(component any) string {
	t := reflect.TypeOf(component)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// FormatValue formats a field value. Vectors format element-wise with
// fmtStr applied to each component.
func FormatValue(value any, fmtStr string) string {
	switch v := value.(type) {
	case mgl32.Vec3:
		if fmtStr == "" {
			fmtStr = "%.2f"
		}
		return fmt.Sprintf("("+fmtStr+", "+fmtStr+", "+fmtStr+")", v[0], v[1], v[2])
	case float32:
		if fmtStr == "" {
			fmtStr = "%.2f"
		}
		return fmt.Sprintf(fmtStr, v)
	}
	if fmtStr == "" {
		return fmt.Sprintf("%v", value)
	}
	return fmt.Sprintf(fmtStr, value)
}

// GetMax returns the max option as a float, defaulting to 1.0.
func GetMax(options map[string]string) float32 {
	if maxStr, ok := options["max"]; ok {
		if max, err := strconv.ParseFloat(maxStr, 32); err == nil {
			return float32(max)
		}
	}
	return 1.0
}

// floatValue returns the value of a float32 field.
func floatValue(value any) (float32, bool) {
	v, ok := value.(float32)
	return v, ok
}
