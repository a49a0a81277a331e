package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"github.com/fyerfyer/gate-sandbox/pkg/simulation"
	"github.com/fyerfyer/gate-sandbox/pkg/utils"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

// scenario builds a circuit, applies a stimulus after the initial settle and
// names the node to watch
type scenario struct {
	description string
	build       func(c *circuit.Circuit) (stimulus func(), watch circuit.NodeID, err error)
}

var scenarios = map[string]scenario{
	"and": {
		description: "free input wired into an AND gate whose other input is on",
		build:       buildAnd,
	},
	"chain": {
		description: "input through two wires and a NOT gate",
		build:       buildChain,
	},
	"ring": {
		description: "NOT gate feeding its own input; oscillates forever",
		build:       buildRing,
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run a headless scenario and report propagation timing",
		Long:  "Builds a small circuit, toggles its input and steps it until it settles.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			maxTicks, _ := cmd.Flags().GetInt("max-ticks")

			names := scenarioNames()
			if len(args) == 1 {
				names = args
			}
			for _, name := range names {
				if err := runDemo(cmd.OutOrStdout(), name, cfg.Simulation.EdgeDelay, cfg.TickDelta(), maxTicks, logger); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("max-ticks", 500, "Give up after this many ticks")
	return cmd
}

// runDemo runs one scenario and writes a summary to w
func runDemo(w io.Writer, name string, delay, dt time.Duration, maxTicks int, logger *utils.Logger) error {
	sc, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q (valid: %v)", name, scenarioNames())
	}

	c := circuit.NewCircuit(delay)
	stimulus, watch, err := sc.build(c)
	if err != nil {
		return fmt.Errorf("building %s: %w", name, err)
	}
	p := simulation.NewPropagator(logger.With("scenario", name))

	topo := circuit.NewTopology(c)
	topo.Analyze()
	stats := topo.Stats()

	fmt.Fprintf(w, "== %s: %s\n", name, sc.description)
	fmt.Fprintf(w, "%d nodes, %d edges, %d gates, %d free inputs, max fanout %d, feedback gates %v\n",
		stats.Nodes, stats.Edges, stats.Gates, stats.FreeInputs, stats.MaxFanout, topo.FeedbackGates())

	if ticks, settled := simulation.RunUntilSettled(p, c, dt, maxTicks); !settled {
		fmt.Fprintf(w, "initial state did not settle within %d ticks\n", ticks)
		return nil
	}

	stimulus()
	before := valueOf(c, watch)
	ticks, settled := simulation.RunUntilSettled(p, c, dt, maxTicks)
	after := valueOf(c, watch)

	if !settled {
		fmt.Fprintf(w, "did not settle within %d ticks (%v simulated)\n", ticks, time.Duration(ticks)*dt)
		return nil
	}
	fmt.Fprintf(w, "n%d: %v -> %v after %d ticks (%v simulated, dt %v)\n",
		watch, before, after, ticks, time.Duration(ticks)*dt, dt)
	return nil
}

func valueOf(c *circuit.Circuit, id circuit.NodeID) bool {
	n, ok := c.Node(id)
	return ok && n.Value
}

func toggle(c *circuit.Circuit, id circuit.NodeID) func() {
	return func() {
		if n, ok := c.Node(id); ok {
			n.Toggle()
		}
	}
}

func buildAnd(c *circuit.Circuit) (func(), circuit.NodeID, error) {
	f := c.CreateNode(r2.Vec{X: 75, Y: 100})
	gid, err := c.CreateGate(circuit.And, r2.Vec{X: 300, Y: 100}, r2.Vec{})
	if err != nil {
		return nil, 0, err
	}
	g, _ := c.Gate(gid)
	if _, err := c.CreateEdge(f, g.Inputs[0]); err != nil {
		return nil, 0, err
	}
	toggle(c, g.Inputs[1])()
	return toggle(c, f), g.Output, nil
}

func buildChain(c *circuit.Circuit) (func(), circuit.NodeID, error) {
	f := c.CreateNode(r2.Vec{X: 75, Y: 100})
	mid := c.CreateNode(r2.Vec{X: 200, Y: 100})
	gid, err := c.CreateGate(circuit.Not, r2.Vec{X: 400, Y: 100}, r2.Vec{})
	if err != nil {
		return nil, 0, err
	}
	g, _ := c.Gate(gid)
	out := c.CreateNode(r2.Vec{X: 600, Y: 100})

	for _, pair := range [][2]circuit.NodeID{{f, mid}, {mid, g.Inputs[0]}, {g.Output, out}} {
		if _, err := c.CreateEdge(pair[0], pair[1]); err != nil {
			return nil, 0, err
		}
	}
	return toggle(c, f), out, nil
}

func buildRing(c *circuit.Circuit) (func(), circuit.NodeID, error) {
	gid, err := c.CreateGate(circuit.Not, r2.Vec{X: 300, Y: 100}, r2.Vec{})
	if err != nil {
		return nil, 0, err
	}
	g, _ := c.Gate(gid)
	if _, err := c.CreateEdge(g.Output, g.Inputs[0]); err != nil {
		return nil, 0, err
	}
	return func() {}, g.Output, nil
}
