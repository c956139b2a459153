// Package config loads simulation settings from YAML, layered over embedded
// defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pythonian23/stablefluid/fluid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every setting of a simulation run.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Solver    SolverConfig    `yaml:"solver"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
	Brush     BrushConfig     `yaml:"brush"`
	Emitters  []EmitterConfig `yaml:"emitters"`
}

// GridConfig holds the interior extents in cells.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SolverConfig holds the fluid coefficients.
type SolverConfig struct {
	DT                float64 `yaml:"dt"`
	Diffusion         float64 `yaml:"diffusion"`
	Iterations        int     `yaml:"iterations"`          // relaxation sweeps per solve
	ScaleByResolution bool    `yaml:"scale_by_resolution"` // velocities in domain lengths per unit time
}

// RenderConfig controls image output.
type RenderConfig struct {
	Frames  int     `yaml:"frames"`
	Delay   int     `yaml:"delay"`   // GIF delay per frame, 100ths of a second
	Palette string  `yaml:"palette"` // colorgrad preset name
	Mode    string  `yaml:"mode"`    // density or speed
	Gain    float64 `yaml:"gain"`    // field value mapped to the top of the palette
	Scale   int     `yaml:"scale"`   // window pixels per cell in the viewer
}

// TelemetryConfig controls the per-frame CSV log.
type TelemetryConfig struct {
	Path  string `yaml:"path"`  // empty disables telemetry
	Every int    `yaml:"every"` // record one frame in N
}

// ServerConfig controls the websocket frame server.
type ServerConfig struct {
	Addr         string  `yaml:"addr"`
	FPS          int     `yaml:"fps"`
	MaxDT        float64 `yaml:"max_dt"`        // largest dt a client may set
	MaxDiffusion float64 `yaml:"max_diffusion"` // largest diffusion a client may set
}

// BrushConfig controls interactive injection.
type BrushConfig struct {
	Mode     string  `yaml:"mode"` // all, velocity or density
	Radius   int     `yaml:"radius"`
	Density  float64 `yaml:"density"`
	Velocity float64 `yaml:"velocity"`
}

// EmitterConfig is a disk that injects density and velocity every frame.
type EmitterConfig struct {
	Name    string  `yaml:"name"`
	X       int     `yaml:"x"`
	Y       int     `yaml:"y"`
	Radius  int     `yaml:"radius"`
	Density float64 `yaml:"density"`
	VX      float64 `yaml:"vx"`
	VY      float64 `yaml:"vy"`
}

// Load reads configuration from a YAML file merged over the embedded
// defaults. If path is empty only the defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overwrites the fields present in data. A list present in data
// replaces the whole list.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Validate reports every setting that cannot drive a simulation.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.Width < 1 || c.Grid.Height < 1 {
		errs = append(errs, fmt.Errorf("grid: extents must be positive, got %dx%d", c.Grid.Width, c.Grid.Height))
	}
	if c.Solver.DT <= 0 {
		errs = append(errs, fmt.Errorf("solver: dt must be positive, got %v", c.Solver.DT))
	}
	if c.Solver.Diffusion < 0 {
		errs = append(errs, fmt.Errorf("solver: diffusion must not be negative, got %v", c.Solver.Diffusion))
	}
	if c.Solver.Iterations < 0 {
		errs = append(errs, fmt.Errorf("solver: iterations must not be negative, got %d", c.Solver.Iterations))
	}
	if c.Render.Frames < 0 || c.Render.Delay < 0 {
		errs = append(errs, fmt.Errorf("render: frames and delay must not be negative"))
	}
	if c.Render.Mode != "density" && c.Render.Mode != "speed" {
		errs = append(errs, fmt.Errorf("render: unknown mode %q", c.Render.Mode))
	}
	if c.Render.Gain <= 0 {
		errs = append(errs, fmt.Errorf("render: gain must be positive, got %v", c.Render.Gain))
	}
	if c.Telemetry.Every < 1 {
		errs = append(errs, fmt.Errorf("telemetry: every must be at least 1, got %d", c.Telemetry.Every))
	}
	if c.Server.MaxDT < 0 || c.Server.MaxDiffusion < 0 {
		errs = append(errs, fmt.Errorf("server: max_dt and max_diffusion must not be negative"))
	}
	switch c.Brush.Mode {
	case "all", "velocity", "density":
	default:
		errs = append(errs, fmt.Errorf("brush: unknown mode %q", c.Brush.Mode))
	}
	for i, e := range c.Emitters {
		if e.Radius < 0 {
			errs = append(errs, fmt.Errorf("emitters[%d] %q: radius must not be negative", i, e.Name))
		}
	}
	return errors.Join(errs...)
}

// Fluid returns the solver configuration.
func (c *Config) Fluid() fluid.Config {
	return fluid.Config{
		Width:             c.Grid.Width,
		Height:            c.Grid.Height,
		Diffusion:         c.Solver.Diffusion,
		Iterations:        c.Solver.Iterations,
		ScaleByResolution: c.Solver.ScaleByResolution,
	}
}

// NewFluid builds a session from the grid and solver sections.
func (c *Config) NewFluid() (*fluid.Fluid, error) {
	return fluid.New(c.Fluid(), c.Solver.DT)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
