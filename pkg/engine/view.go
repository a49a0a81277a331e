package engine

import (
	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"github.com/fyerfyer/gate-sandbox/pkg/simulation"
	"gonum.org/v1/gonum/spatial/r2"
)

// NodeView is the render state of a node
type NodeView struct {
	ID       circuit.NodeID
	Position r2.Vec
	Value    bool
	Hovered  bool
	Pending  bool // Source of the edge being drawn
}

// EdgeView is the render state of an edge. Value is the source value, which
// is what the wire shows while a change travels along it.
type EdgeView struct {
	ID       circuit.EdgeID
	From     r2.Vec
	To       r2.Vec
	Value    bool
	Hovered  bool
	InFlight bool
	Progress float64
}

// GateView is the render state of a gate
type GateView struct {
	ID      circuit.GateID
	Kind    circuit.GateKind
	Label   string
	Min     r2.Vec
	Max     r2.Vec
	Dragged bool
}

// Line is a segment in world coordinates
type Line struct {
	From r2.Vec
	To   r2.Vec
}

// View is a read-only snapshot of the sandbox for one frame. Slices are in
// creation order; draw gates, then edges, then nodes.
type View struct {
	Tick    int
	Pointer r2.Vec
	Nodes   []NodeView
	Edges   []EdgeView
	Gates   []GateView

	// Preview of the edge being drawn, from its source to the pointer
	Preview *Line
}

// Snapshot builds the view of the current state. Edge endpoints are read
// from the nodes every time, so wires follow moved gates.
func (s *Sandbox) Snapshot() View {
	c := s.Circuit
	v := View{
		Tick:    s.ticks,
		Pointer: s.pointer,
		Nodes:   make([]NodeView, 0, c.NodeCount()),
		Edges:   make([]EdgeView, 0, c.EdgeCount()),
		Gates:   make([]GateView, 0, c.GateCount()),
	}

	c.ScanGates(func(g *circuit.Gate) bool {
		lo, hi := g.Bounds()
		v.Gates = append(v.Gates, GateView{
			ID:      g.ID,
			Kind:    g.Kind,
			Label:   g.Label(),
			Min:     lo,
			Max:     hi,
			Dragged: s.State.DragGate == g.ID,
		})
		return true
	})

	c.ScanEdges(func(e *circuit.Edge) bool {
		from, ok := c.Node(e.From)
		if !ok {
			return true
		}
		to, ok := c.Node(e.To)
		if !ok {
			return true
		}
		v.Edges = append(v.Edges, EdgeView{
			ID:       e.ID,
			From:     from.Position,
			To:       to.Position,
			Value:    from.Value,
			Hovered:  s.State.HoveredEdge == e.ID,
			InFlight: e.InFlight(),
			Progress: simulation.Progress(e),
		})
		return true
	})

	c.ScanNodes(func(n *circuit.Node) bool {
		v.Nodes = append(v.Nodes, NodeView{
			ID:       n.ID,
			Position: n.Position,
			Value:    n.Value,
			Hovered:  s.State.HoveredNode == n.ID,
			Pending:  s.State.PendingSource == n.ID,
		})
		return true
	})

	if s.State.Pending() {
		if src, ok := c.Node(s.State.PendingSource); ok {
			v.Preview = &Line{From: src.Position, To: s.pointer}
		}
	}
	return v
}
