// Package engine drives one sandbox through its per-tick phases and
// exposes a read-only view of the result for rendering.
package engine

import (
	"fmt"
	"time"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"github.com/fyerfyer/gate-sandbox/pkg/config"
	"github.com/fyerfyer/gate-sandbox/pkg/hittest"
	"github.com/fyerfyer/gate-sandbox/pkg/interaction"
	"github.com/fyerfyer/gate-sandbox/pkg/metrics"
	"github.com/fyerfyer/gate-sandbox/pkg/simulation"
	"github.com/fyerfyer/gate-sandbox/pkg/utils"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// Options configures a Sandbox
type Options struct {
	EdgeDelay time.Duration
	Tester    hittest.Tester
	GateSize  r2.Vec
	Grid      float64
	Column    InputColumn
	Logger    *utils.Logger
	Metrics   *metrics.Metrics
}

// DefaultOptions returns options with the canvas defaults and no logging
func DefaultOptions() Options {
	return Options{
		EdgeDelay: circuit.DefaultEdgeDelay,
		Tester:    hittest.Default(),
		GateSize:  circuit.DefaultGateSize,
		Column:    DefaultInputColumn(),
	}
}

// OptionsFromConfig maps loaded configuration onto sandbox options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.EdgeDelay = cfg.Simulation.EdgeDelay
	opts.Tester = hittest.New(cfg.Geometry.NodeRadius, cfg.Geometry.EdgeWidth)
	opts.GateSize = r2.Vec{X: cfg.Geometry.GateWidth, Y: cfg.Geometry.GateHeight}
	opts.Grid = cfg.Geometry.Grid
	opts.Column.CenterY = float64(cfg.Window.Height) / 2
	return opts
}

// TickReport summarizes what one Tick did
type TickReport struct {
	Tick    int
	Events  interaction.Events
	Relaid  int
	Step    simulation.StepReport
	Swept   circuit.SweepReport
	Settled bool
}

// Sandbox owns a circuit and everything needed to edit and simulate it
type Sandbox struct {
	ID         string
	Circuit    *circuit.Circuit
	State      interaction.State
	Controller *interaction.Controller
	Propagator *simulation.Propagator
	Frontier   *simulation.Frontier
	Column     InputColumn
	GateSize   r2.Vec
	Logger     *utils.Logger
	Metrics    *metrics.Metrics

	inputs  []circuit.NodeID // Input column, top to bottom
	pointer r2.Vec           // Pointer at the last tick
	ticks   int
}

// New creates an empty sandbox
func New(opts Options) *Sandbox {
	id := uuid.NewString()

	logger := opts.Logger
	if logger == nil {
		logger = utils.Discard()
	}
	logger = logger.With("session", id)

	gateSize := opts.GateSize
	if gateSize.X <= 0 || gateSize.Y <= 0 {
		gateSize = circuit.DefaultGateSize
	}

	c := circuit.NewCircuit(opts.EdgeDelay)
	s := &Sandbox{
		ID:         id,
		Circuit:    c,
		Controller: interaction.NewController(opts.Tester, opts.Grid, logger),
		Propagator: simulation.NewPropagator(logger),
		Frontier:   simulation.NewFrontier(c),
		Column:     opts.Column,
		GateSize:   gateSize,
		Logger:     logger,
		Metrics:    opts.Metrics,
	}
	logger.Info("sandbox created", "edge_delay", c.EdgeDelay, "grid", opts.Grid)
	return s
}

// Tick runs one frame: gestures, gate layout, propagation and the
// consistency sweep, in that order
func (s *Sandbox) Tick(in interaction.Input, dt time.Duration) TickReport {
	start := time.Now()
	s.pointer = in.Pointer

	report := TickReport{Tick: s.ticks}
	report.Events = s.Controller.Update(s.Circuit, &s.State, in)

	s.alignInputs()
	report.Relaid = s.Circuit.Relayout()

	report.Step = s.Propagator.Step(s.Circuit, dt)

	report.Swept = s.Circuit.Sweep()
	if !report.Swept.Empty() {
		s.Logger.Sweep("removed dangling entities", "edges", len(report.Swept.Edges), "gates", len(report.Swept.Gates))
	}

	s.Frontier.Update()
	report.Settled = s.Frontier.Settled()
	s.ticks++

	s.Metrics.ObserveGestures(report.Events.Gestures())
	s.Metrics.ObserveSweep(len(report.Swept.Edges), len(report.Swept.Gates))
	s.Metrics.SetEntities(s.Circuit.NodeCount(), s.Circuit.EdgeCount(), s.Circuit.GateCount())
	s.Metrics.ObserveTick(report.Step.Delivered, report.Step.InFlight, time.Since(start))
	return report
}

// Ticks returns the number of ticks run so far
func (s *Sandbox) Ticks() int {
	return s.ticks
}

// SpawnGate creates a default sized gate centered at p and grabs it, so it
// follows the pointer until the left button is released
func (s *Sandbox) SpawnGate(kind circuit.GateKind, p r2.Vec) (circuit.GateID, error) {
	id, err := s.Circuit.CreateGate(kind, p, s.GateSize)
	if err != nil {
		return 0, fmt.Errorf("spawn %s gate: %w", kind, err)
	}
	s.State.Grab(id, r2.Vec{})
	s.Logger.Circuit("gate spawned", "gate", id, "kind", kind, "at", p)
	return id, nil
}

// DeleteUnderPointer deletes the node under p or, failing that, the gate
// under p. A gate-owned node deletes its gate. It returns false when
// nothing was there.
func (s *Sandbox) DeleteUnderPointer(p r2.Vec) bool {
	tester := s.Controller.Tester
	if id, ok := tester.Node(s.Circuit, p); ok {
		if owner, owned := s.Circuit.OwnerOf(id); owned {
			return s.deleteGate(owner.ID)
		}
		if err := s.Circuit.DeleteNode(id); err != nil {
			return false
		}
		s.dropInput(id)
		s.Logger.Circuit("node deleted", "node", id)
		return true
	}
	if id, ok := tester.Gate(s.Circuit, p); ok {
		return s.deleteGate(id)
	}
	return false
}

func (s *Sandbox) deleteGate(id circuit.GateID) bool {
	if err := s.Circuit.DeleteGate(id); err != nil {
		return false
	}
	s.Logger.Circuit("gate deleted", "gate", id)
	return true
}

// Reset turns every signal off and drops any gesture in progress. The
// circuit itself is kept.
func (s *Sandbox) Reset() {
	s.Circuit.Reset()
	s.State.Reset()
	s.Logger.Info("sandbox reset")
}
