package simulation

import (
	"time"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"github.com/fyerfyer/gate-sandbox/pkg/utils"
)

// StepReport summarizes one propagation step
type StepReport struct {
	Restarted  int // Edges whose timer restarted because the ends disagreed
	Delivered  int // Edges that copied their source value this step
	InFlight   int // Edges still counting down after the step
	GateFlips  int // Gate outputs that changed value
	Unresolved int // Edges or gates skipped because a handle was stale
}

// Propagator advances the circuit one tick at a time. The edge phase always
// runs before the gate phase.
type Propagator struct {
	Logger *utils.Logger

	inputs []bool // scratch buffer for gate evaluation
}

// NewPropagator creates a new propagator
func NewPropagator(logger *utils.Logger) *Propagator {
	return &Propagator{
		Logger: logger,
		inputs: make([]bool, 0, 2),
	}
}

// Step runs the edge phase and then the gate phase with elapsed time dt
func (p *Propagator) Step(c *circuit.Circuit, dt time.Duration) StepReport {
	var report StepReport
	p.PropagateEdges(c, dt, &report)
	p.EvaluateGates(c, &report)
	return report
}

// PropagateEdges advances every edge timer. An idle edge whose ends agree
// stays idle. An idle edge whose ends disagree restarts its window; the
// restart tick does not count toward the delay. A running edge advances by
// dt and, on the tick it finishes, copies its source value to its
// destination.
func (p *Propagator) PropagateEdges(c *circuit.Circuit, dt time.Duration, report *StepReport) {
	c.ScanEdges(func(e *circuit.Edge) bool {
		from, ok := c.Node(e.From)
		if !ok {
			report.Unresolved++
			return true
		}
		to, ok := c.Node(e.To)
		if !ok {
			report.Unresolved++
			return true
		}

		if e.Timer.Finished() {
			if from.Value == to.Value {
				return true
			}
			e.Timer.Reset()
			report.Restarted++
			report.InFlight++
			p.Logger.Propagation("edge restarted", "edge", e.ID, "value", from.Value)
			return true
		}

		if e.Timer.Advance(dt) {
			to.SetValue(from.Value)
			e.Deliveries++
			report.Delivered++
			p.Logger.Propagation("edge delivered", "edge", e.ID, "to", e.To, "value", from.Value)
			return true
		}
		report.InFlight++
		return true
	})
}

// EvaluateGates recomputes every gate output from its current inputs. The
// write is unconditional: gates hold no state of their own.
func (p *Propagator) EvaluateGates(c *circuit.Circuit, report *StepReport) {
	c.ScanGates(func(g *circuit.Gate) bool {
		out, ok := c.Node(g.Output)
		if !ok {
			report.Unresolved++
			return true
		}

		p.inputs = p.inputs[:0]
		for _, id := range g.Inputs {
			in, ok := c.Node(id)
			if !ok {
				report.Unresolved++
				return true
			}
			p.inputs = append(p.inputs, in.Value)
		}

		value := g.Kind.Apply(p.inputs)
		if value != out.Value {
			report.GateFlips++
			p.Logger.Propagation("gate output changed", "gate", g.ID, "kind", g.Kind, "value", value)
		}
		out.SetValue(value)
		return true
	})
}

// Evaluate computes a gate's output without writing it. It returns false if
// any of the gate's nodes no longer resolves.
func Evaluate(c *circuit.Circuit, g *circuit.Gate) (bool, bool) {
	in := make([]bool, 0, len(g.Inputs))
	for _, id := range g.Inputs {
		n, ok := c.Node(id)
		if !ok {
			return false, false
		}
		in = append(in, n.Value)
	}
	return g.Kind.Apply(in), true
}
