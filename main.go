package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pythonian23/stablefluid/config"
	"github.com/pythonian23/stablefluid/fluid"
	"github.com/pythonian23/stablefluid/render"
	"github.com/pythonian23/stablefluid/scene"
	"github.com/pythonian23/stablefluid/telemetry"
)

type frame struct {
	field   fluid.ScalarField
	stats   fluid.Stats
	elapsed time.Duration
}

// simulate advances f for n frames, sending each rendered field on c. It
// stops early once done is closed.
func simulate(f *fluid.Fluid, sc scene.Scene, mode render.Mode, n int, c chan<- frame, done <-chan struct{}) {
	defer close(c)
	for i := 0; i < n; i++ {
		start := time.Now()
		sc.Apply(f)
		f.Simulate()
		elapsed := time.Since(start)
		select {
		case c <- frame{field: render.Field(f, mode), stats: f.Stats(), elapsed: elapsed}:
		case <-done:
			return
		}
	}
}

// closeWith closes c, keeping its error unless *err is already set.
func closeWith(c io.Closer, err *error) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}

func run(cfg *config.Config, out io.Writer) (err error) {
	f, err := cfg.NewFluid()
	if err != nil {
		return err
	}
	pal, err := render.Palette(cfg.Render.Palette)
	if err != nil {
		return err
	}
	mode, err := render.ParseMode(cfg.Render.Mode)
	if err != nil {
		return err
	}
	rec, err := telemetry.Create(cfg.Telemetry.Path, cfg.Telemetry.Every)
	if err != nil {
		return err
	}
	defer closeWith(rec, &err)

	sc := scene.FromConfig(cfg.Emitters)
	anim := render.NewAnimation(cfg.Render.Delay)

	slog.Info("simulating",
		"width", f.Width(),
		"height", f.Height(),
		"frames", cfg.Render.Frames,
		"dt", f.Timestep(),
		"emitters", len(sc.Emitters),
	)

	c := make(chan frame, 16)
	done := make(chan struct{})
	defer close(done)
	go simulate(f, sc, mode, cfg.Render.Frames, c, done)

	start := time.Now()
	i := 0
	for fr := range c {
		anim.Add(render.Frame(fr.field, pal, cfg.Render.Gain))
		if err := rec.Write(telemetry.NewRecord(fr.stats, fr.elapsed)); err != nil {
			return err
		}
		if ((i + 1) & i) == 0 {
			slog.Info("frame", "stats", fr.stats)
		}
		i++
	}

	slog.Info("completed", "frames", anim.Len(), "elapsed", time.Since(start))
	return anim.Encode(out)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "", "Output GIF path (empty = stdout)")
	frames := flag.Int("frames", 0, "Number of frames (0 = use config)")
	telemetryPath := flag.String("telemetry", "", "Per-frame CSV path (empty = use config)")
	writeConfig := flag.String("write-config", "", "Write the effective config to this path and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *frames > 0 {
		cfg.Render.Frames = *frames
	}
	if *telemetryPath != "" {
		cfg.Telemetry.Path = *telemetryPath
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		return
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			slog.Error("failed to create output", "error", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	if err := run(cfg, out); err != nil {
		slog.Error("rendering failed", "error", err)
		os.Exit(1)
	}
}
