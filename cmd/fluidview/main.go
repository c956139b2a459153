// Command fluidview is an interactive desktop viewer. Drag to stir, click to
// drop dye, M cycles the brush mode, V toggles density and speed, C clears,
// space pauses.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pythonian23/stablefluid/config"
	"github.com/pythonian23/stablefluid/fluid"
	"github.com/pythonian23/stablefluid/render"
	"github.com/pythonian23/stablefluid/scene"
)

type Game struct {
	fluid  *fluid.Fluid
	scene  scene.Scene
	brush  scene.Brush
	pal    color.Palette
	gain   float64
	mode   render.Mode
	pixels []byte

	paused   bool
	dragging bool
	last     scene.Point
}

func NewGame(cfg *config.Config) (*Game, error) {
	f, err := cfg.NewFluid()
	if err != nil {
		return nil, err
	}
	brush, err := scene.NewBrush(cfg.Brush)
	if err != nil {
		return nil, err
	}
	pal, err := render.Palette(cfg.Render.Palette)
	if err != nil {
		return nil, err
	}
	mode, err := render.ParseMode(cfg.Render.Mode)
	if err != nil {
		return nil, err
	}
	return &Game{
		fluid: f,
		scene: scene.FromConfig(cfg.Emitters),
		brush: brush,
		pal:   pal,
		gain:  cfg.Render.Gain,
		mode:  mode,
	}, nil
}

// cursor returns the cell under the mouse, in grid coordinates.
func (g *Game) cursor() scene.Point {
	x, y := ebiten.CursorPosition()
	return scene.Point{X: x + 1, Y: y + 1}
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.brush.Mode = g.brush.Mode.Next()
		slog.Info("brush mode", "mode", g.brush.Mode)
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		if g.mode == render.ModeDensity {
			g.mode = render.ModeSpeed
		} else {
			g.mode = render.ModeDensity
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.fluid.Clear()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	}

	p := g.cursor()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.brush.Dab(g.fluid, p)
		g.dragging = true
	case g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if p != g.last {
			g.brush.Stroke(g.fluid, g.last, p)
		}
	default:
		g.dragging = false
	}
	g.last = p

	if g.paused {
		return nil
	}
	g.scene.Apply(g.fluid)
	g.fluid.Simulate()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.pixels = render.RGBA(render.Field(g.fluid, g.mode), g.pal, g.gain, g.pixels)
	screen.WritePixels(g.pixels)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\nTPS: %0.1f", g.brush.Mode, ebiten.ActualTPS()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fluid.Width(), g.fluid.Height()
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	game, err := NewGame(cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	scale := max(cfg.Render.Scale, 1)
	ebiten.SetWindowSize(cfg.Grid.Width*scale, cfg.Grid.Height*scale)
	ebiten.SetWindowTitle("Stable Fluids")

	if err := ebiten.RunGame(game); err != nil {
		slog.Error("viewer exited", "error", err)
		os.Exit(1)
	}
}
