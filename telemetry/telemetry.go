// Package telemetry records per-frame simulation statistics as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pythonian23/stablefluid/fluid"
)

// Record is one CSV row.
type Record struct {
	Frame        int     `csv:"frame"`
	TotalDensity float64 `csv:"total_density"`
	MaxDensity   float64 `csv:"max_density"`
	MaxSpeed     float64 `csv:"max_speed"`
	MeanSpeed    float64 `csv:"mean_speed"`
	Divergence   float64 `csv:"divergence"`
	StepMicros   int64   `csv:"step_us"`
}

// NewRecord pairs frame statistics with the time the frame took.
func NewRecord(s fluid.Stats, step time.Duration) Record {
	return Record{
		Frame:        s.Frame,
		TotalDensity: s.TotalDensity,
		MaxDensity:   s.MaxDensity,
		MaxSpeed:     s.MaxSpeed,
		MeanSpeed:    s.MeanSpeed,
		Divergence:   s.Divergence,
		StepMicros:   step.Microseconds(),
	}
}

// Recorder appends records to a CSV stream, writing the header once.
type Recorder struct {
	w             io.Writer
	closer        io.Closer
	every         int
	headerWritten bool
}

// NewRecorder writes to w, keeping one frame in every.
func NewRecorder(w io.Writer, every int) *Recorder {
	return &Recorder{w: w, every: max(every, 1)}
}

// Create opens path for writing, creating its directory. It returns nil if
// path is empty, and a nil Recorder discards everything.
func Create(path string, every int) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	r := NewRecorder(f, every)
	r.closer = f
	return r, nil
}

// Write appends rec unless its frame is skipped by the sampling interval.
func (r *Recorder) Write(rec Record) error {
	if r == nil || rec.Frame%r.every != 0 {
		return nil
	}

	records := []Record{rec}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the recorder opened one.
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Read parses records previously written by a Recorder.
func Read(rd io.Reader) ([]Record, error) {
	var records []Record
	if err := gocsv.Unmarshal(rd, &records); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return records, nil
}
