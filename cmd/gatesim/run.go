package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"time"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"github.com/fyerfyer/gate-sandbox/pkg/config"
	"github.com/fyerfyer/gate-sandbox/pkg/engine"
	"github.com/fyerfyer/gate-sandbox/pkg/interaction"
	"github.com/fyerfyer/gate-sandbox/pkg/metrics"
	"github.com/fyerfyer/gate-sandbox/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

// Palette
var (
	colorOn     = color.RGBA{R: 230, G: 77, B: 77, A: 255}
	colorOff    = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	colorBG     = color.RGBA{R: 102, G: 102, B: 102, A: 255}
	colorGate   = color.RGBA{R: 77, G: 77, B: 77, A: 255}
	colorBorder = color.RGBA{R: 140, G: 140, B: 140, A: 255}
)

const helpText = "A/O/X/N spawn gate  I/R add/remove input  Del delete  Space reset  Esc quit"

var spawnKeys = map[ebiten.Key]circuit.GateKind{
	ebiten.KeyA: circuit.And,
	ebiten.KeyO: circuit.Or,
	ebiten.KeyX: circuit.Xor,
	ebiten.KeyN: circuit.Not,
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the sandbox window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
				cfg.Metrics.Addr = addr
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	reg := prometheus.NewRegistry()
	opts := engine.OptionsFromConfig(cfg)
	opts.Logger = logger
	opts.Metrics = metrics.New(reg)

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	g := &game{
		sb:     engine.New(opts),
		dt:     cfg.TickDelta(),
		radius: float32(cfg.Geometry.NodeRadius),
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		ctx:    ctx,
	}
	g.sb.AddInput()
	g.sb.AddInput()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetTPS(cfg.Simulation.TPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running window: %w", err)
	}
	logger.Info("window closed", "ticks", g.sb.Ticks())
	return nil
}

// game adapts a Sandbox to ebiten's Game interface. Screen pixels are
// world coordinates.
type game struct {
	sb     *engine.Sandbox
	dt     time.Duration
	radius float32
	width  int
	height int
	ctx    context.Context

	held [3]bool // Left, right and middle button state at the last tick
}

func (g *game) Update() error {
	if g.ctx != nil && g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	mx, my := ebiten.CursorPosition()
	in := interaction.At(r2.Vec{X: float64(mx), Y: float64(my)})
	in.Left = g.sample(0, ebiten.MouseButtonLeft)
	in.Right = g.sample(1, ebiten.MouseButtonRight)
	in.Middle = g.sample(2, ebiten.MouseButtonMiddle)

	g.handleKeys(in.Pointer)
	g.sb.Tick(in, g.dt)
	return nil
}

func (g *game) sample(i int, b ebiten.MouseButton) interaction.Button {
	held := ebiten.IsMouseButtonPressed(b)
	btn := interaction.Sample(g.held[i], held)
	g.held[i] = held
	return btn
}

func (g *game) handleKeys(p r2.Vec) {
	for key, kind := range spawnKeys {
		if inpututil.IsKeyJustPressed(key) {
			if _, err := g.sb.SpawnGate(kind, p); err != nil {
				g.sb.Logger.Error("spawn failed", "kind", kind, "error", err)
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.sb.AddInput()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sb.RemoveLastInput()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.sb.DeleteUnderPointer(p)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.sb.Reset()
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	v := g.sb.Snapshot()

	for _, gate := range v.Gates {
		w := float32(gate.Max.X - gate.Min.X)
		h := float32(gate.Max.Y - gate.Min.Y)
		x, y := float32(gate.Min.X), float32(gate.Min.Y)
		vector.DrawFilledRect(screen, x, y, w, h, colorGate, false)
		border := colorBorder
		if gate.Dragged {
			border = highlighted(border)
		}
		vector.StrokeRect(screen, x, y, w, h, 2, border, false)
		ebitenutil.DebugPrintAt(screen, gate.Label, int(x+w/2)-len(gate.Label)*3, int(y+h/2)-8)
	}

	for _, e := range v.Edges {
		c := edgeColor(e)
		if e.Hovered {
			c = highlighted(c)
		}
		vector.StrokeLine(screen, float32(e.From.X), float32(e.From.Y), float32(e.To.X), float32(e.To.Y), 5, c, true)
	}

	if v.Preview != nil {
		vector.StrokeLine(screen, float32(v.Preview.From.X), float32(v.Preview.From.Y),
			float32(v.Preview.To.X), float32(v.Preview.To.Y), 3, colorBorder, true)
	}

	for _, n := range v.Nodes {
		c := valueColor(n.Value)
		if n.Hovered || n.Pending {
			c = highlighted(c)
		}
		vector.DrawFilledCircle(screen, float32(n.Position.X), float32(n.Position.Y), g.radius, c, true)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("tick %d  nodes %d  edges %d  gates %d  %.0f TPS",
		v.Tick, len(v.Nodes), len(v.Edges), len(v.Gates), ebiten.ActualTPS()), 8, 8)
	ebitenutil.DebugPrintAt(screen, helpText, 8, g.height-20)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func valueColor(v bool) color.RGBA {
	if v {
		return colorOn
	}
	return colorOff
}

// highlighted brightens a color by a tenth of white
func highlighted(c color.RGBA) color.RGBA {
	lift := func(v uint8) uint8 {
		if v > 255-26 {
			return 255
		}
		return v + 26
	}
	return color.RGBA{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: c.A}
}

// edgeColor shows the source value; while a change is in flight the color
// blends from the old value to the new one along the delay window
func edgeColor(e engine.EdgeView) color.RGBA {
	to := valueColor(e.Value)
	if !e.InFlight {
		return to
	}
	from := valueColor(!e.Value)
	t := e.Progress
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 255}
}
