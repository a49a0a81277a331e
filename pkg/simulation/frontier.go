package simulation

import (
	"sort"
	"time"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
)

// Frontier tracks where signals are still moving through the circuit
type Frontier struct {
	Circuit *circuit.Circuit
	// Edges whose timer is running
	InFlight []circuit.EdgeID
	// Idle edges whose ends disagree; they restart on the next step
	Pending []circuit.EdgeID
	// Gates whose output differs from what its inputs give
	Unstable []circuit.GateID
}

// NewFrontier creates a new frontier for the given circuit
func NewFrontier(c *circuit.Circuit) *Frontier {
	return &Frontier{Circuit: c}
}

// Update recomputes the frontier from the current circuit state
func (f *Frontier) Update() {
	f.InFlight = f.InFlight[:0]
	f.Pending = f.Pending[:0]
	f.Unstable = f.Unstable[:0]

	f.Circuit.ScanEdges(func(e *circuit.Edge) bool {
		if e.InFlight() {
			f.InFlight = append(f.InFlight, e.ID)
			return true
		}
		from, okFrom := f.Circuit.Node(e.From)
		to, okTo := f.Circuit.Node(e.To)
		if okFrom && okTo && from.Value != to.Value {
			f.Pending = append(f.Pending, e.ID)
		}
		return true
	})

	f.Circuit.ScanGates(func(g *circuit.Gate) bool {
		want, ok := Evaluate(f.Circuit, g)
		if !ok {
			return true
		}
		if out, ok := f.Circuit.Node(g.Output); ok && out.Value != want {
			f.Unstable = append(f.Unstable, g.ID)
		}
		return true
	})
}

// Settled returns true when no further step can change any value.
// Circuits with an oscillating loop never settle.
func (f *Frontier) Settled() bool {
	return len(f.InFlight) == 0 && len(f.Pending) == 0 && len(f.Unstable) == 0
}

// Progress returns how far a value has travelled along an edge, in [0,1].
// Idle edges report 1.
func Progress(e *circuit.Edge) float64 {
	return e.Timer.Fraction()
}

// Leading returns the in-flight edges ordered by progress, furthest first
func (f *Frontier) Leading() []circuit.EdgeID {
	ids := append([]circuit.EdgeID(nil), f.InFlight...)
	progress := make(map[circuit.EdgeID]float64, len(ids))
	for _, id := range ids {
		if e, ok := f.Circuit.Edge(id); ok {
			progress[id] = Progress(e)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return progress[ids[i]] > progress[ids[j]]
	})
	return ids
}

// RunUntilSettled steps the circuit until the frontier is empty or maxTicks
// steps have run. It returns the number of steps taken and whether the
// circuit settled.
func RunUntilSettled(p *Propagator, c *circuit.Circuit, dt time.Duration, maxTicks int) (int, bool) {
	f := NewFrontier(c)
	f.Update()
	for tick := 0; tick < maxTicks; tick++ {
		if f.Settled() {
			return tick, true
		}
		p.Step(c, dt)
		f.Update()
	}
	return maxTicks, f.Settled()
}
