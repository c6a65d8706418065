package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pthm-cable/gpgpu/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Every method is a no-op on nil.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStatsCSV{}); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.RunID() != "" || om.Close() != nil {
		t.Error("nil manager should report nothing")
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(om.RunID()); err != nil {
		t.Errorf("run id %q is not a uuid: %v", om.RunID(), err)
	}

	for i := int64(1); i <= 2; i++ {
		if err := om.WriteTelemetry(WindowStats{Backend: "cpu", WindowEndFrame: i * 60, Particles: 16}); err != nil {
			t.Fatal(err)
		}
		if err := om.WritePerf(PerfStats{}.ToCSV("cpu", i*60)); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"telemetry.csv", "perf.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("%s has %d lines, want header + 2 rows", name, len(lines))
		}
		if !strings.HasPrefix(lines[0], "run_id,backend,") {
			t.Errorf("%s header = %q", name, lines[0])
		}
		if !strings.HasPrefix(lines[1], om.RunID()+",cpu,") {
			t.Errorf("%s row = %q", name, lines[1])
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Error(err)
	}
}
