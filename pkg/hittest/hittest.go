// Package hittest answers which node, edge or gate lies under a point.
// All queries are read-only and scan entities in creation order; the first
// match wins.
package hittest

import (
	"math"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultNodeRadius = 15.0
	DefaultEdgeWidth  = 5.0
)

// Tester holds the hit tolerances
type Tester struct {
	NodeRadius float64 // A node is hit strictly inside this radius
	EdgeWidth  float64 // An edge is hit strictly within this distance
}

// New creates a tester with the given tolerances
func New(nodeRadius, edgeWidth float64) Tester {
	return Tester{NodeRadius: nodeRadius, EdgeWidth: edgeWidth}
}

// Default returns a tester with the canvas defaults
func Default() Tester {
	return New(DefaultNodeRadius, DefaultEdgeWidth)
}

// Node returns the first node whose center is closer than the radius
func (t Tester) Node(c *circuit.Circuit, p r2.Vec) (circuit.NodeID, bool) {
	r2max := t.NodeRadius * t.NodeRadius
	var hit circuit.NodeID
	c.ScanNodes(func(n *circuit.Node) bool {
		if r2.Norm2(r2.Sub(p, n.Position)) < r2max {
			hit = n.ID
			return false
		}
		return true
	})
	return hit, hit != 0
}

// EdgeDistance approximates the distance from p to segment ab as the
// smallest of the distance to the infinite line and to either endpoint.
// It underestimates near the extension of the segment past its ends.
func EdgeDistance(p, a, b r2.Vec) float64 {
	da := r2.Norm(r2.Sub(p, a))
	db := r2.Norm(r2.Sub(p, b))
	ab := r2.Sub(b, a)
	length := r2.Norm(ab)
	if length == 0 {
		return math.Min(da, db)
	}
	line := math.Abs(r2.Cross(ab, r2.Sub(a, p))) / length
	return math.Min(line, math.Min(da, db))
}

// Edge returns the first edge within the edge width of p. Edges with an
// endpoint that no longer resolves are ignored.
func (t Tester) Edge(c *circuit.Circuit, p r2.Vec) (circuit.EdgeID, bool) {
	var hit circuit.EdgeID
	c.ScanEdges(func(e *circuit.Edge) bool {
		a, ok := c.Node(e.From)
		if !ok {
			return true
		}
		b, ok := c.Node(e.To)
		if !ok {
			return true
		}
		if EdgeDistance(p, a.Position, b.Position) < t.EdgeWidth {
			hit = e.ID
			return false
		}
		return true
	})
	return hit, hit != 0
}

// Gate returns the first gate whose rectangle strictly contains p
func (t Tester) Gate(c *circuit.Circuit, p r2.Vec) (circuit.GateID, bool) {
	var hit circuit.GateID
	c.ScanGates(func(g *circuit.Gate) bool {
		if g.Contains(p) {
			hit = g.ID
			return false
		}
		return true
	})
	return hit, hit != 0
}

// Hover returns the hovered node and edge. Nodes take priority: the edge is
// only tested when no node is under p.
func (t Tester) Hover(c *circuit.Circuit, p r2.Vec) (circuit.NodeID, circuit.EdgeID) {
	if n, ok := t.Node(c, p); ok {
		return n, 0
	}
	e, _ := t.Edge(c, p)
	return 0, e
}
