package telemetry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pythonian23/stablefluid/fluid"
)

func TestRecorderWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf, 1)
	for frame := 1; frame <= 3; frame++ {
		rec := NewRecord(fluid.Stats{Frame: frame, TotalDensity: float64(frame)}, 1500*time.Microsecond)
		if err := r.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "frame,total_density") {
		t.Errorf("header = %q", lines[0])
	}

	got, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 3 || got[2].TotalDensity != 3 || got[0].StepMicros != 1500 {
		t.Errorf("records = %+v", got)
	}
}

func TestRecorderSampling(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf, 5)
	for frame := 1; frame <= 12; frame++ {
		if err := r.Write(Record{Frame: frame}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Frame != 5 || got[1].Frame != 10 {
		t.Errorf("records = %+v, want frames 5 and 10", got)
	}
}

func TestNilRecorder(t *testing.T) {
	r, err := Create("", 1)
	if err != nil || r != nil {
		t.Fatalf("Create(\"\") = %v, %v; want nil, nil", r, err)
	}
	if err := r.Write(Record{Frame: 1}); err != nil {
		t.Errorf("nil Write: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "telemetry.csv")
	r, err := Create(path, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.Write(Record{Frame: 1, MaxSpeed: 2.5}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := Read(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].MaxSpeed != 2.5 {
		t.Errorf("records = %+v", got)
	}
}
