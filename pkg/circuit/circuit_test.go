package circuit

import (
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// TestNodeCreation tests the creation and basic operations of nodes
func TestNodeCreation(t *testing.T) {
	c := NewCircuit(DefaultEdgeDelay)

	a := c.CreateNode(r2.Vec{X: 10, Y: 20})
	b := c.CreateNode(r2.Vec{X: 30, Y: 40})

	if a != 1 || b != 2 {
		t.Errorf("Expected handles 1 and 2, got %d and %d", a, b)
	}

	n, ok := c.Node(a)
	if !ok {
		t.Fatalf("Expected node %d to exist", a)
	}
	if n.Value {
		t.Errorf("Expected new node to be false")
	}
	if n.Position != (r2.Vec{X: 10, Y: 20}) {
		t.Errorf("Expected position (10,20), got %v", n.Position)
	}
	if n.IsOwned() {
		t.Errorf("Expected free node not to be owned")
	}

	n.Toggle()
	if !n.Value || n.ChangeCount != 1 {
		t.Errorf("Expected toggled node to be true with 1 change, got %v/%d", n.Value, n.ChangeCount)
	}
	n.SetValue(true)
	if n.ChangeCount != 1 {
		t.Errorf("Expected SetValue to same value not to count, got %d", n.ChangeCount)
	}
	if n.String() != "n1=1" {
		t.Errorf("Expected n.String() to be 'n1=1', got '%s'", n.String())
	}
}

// TestGateCreation tests gate construction and owned node layout
func TestGateCreation(t *testing.T) {
	c := NewCircuit(DefaultEdgeDelay)

	id, err := c.CreateGate(And, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 120, Y: 90})
	if err != nil {
		t.Fatalf("CreateGate failed: %v", err)
	}
	g, ok := c.Gate(id)
	if !ok {
		t.Fatalf("Expected gate %d to exist", id)
	}
	if len(g.Inputs) != 2 {
		t.Fatalf("Expected 2 inputs, got %d", len(g.Inputs))
	}
	if c.NodeCount() != 3 {
		t.Errorf("Expected 3 nodes, got %d", c.NodeCount())
	}

	// Inputs at 1/3 and 2/3 of the height along the left edge
	in0, _ := c.Node(g.Inputs[0])
	in1, _ := c.Node(g.Inputs[1])
	out, _ := c.Node(g.Output)
	if in0.Position != (r2.Vec{X: 40, Y: 85}) {
		t.Errorf("Expected input 0 at (40,85), got %v", in0.Position)
	}
	if in1.Position != (r2.Vec{X: 40, Y: 115}) {
		t.Errorf("Expected input 1 at (40,115), got %v", in1.Position)
	}
	if out.Position != (r2.Vec{X: 160, Y: 100}) {
		t.Errorf("Expected output at (160,100), got %v", out.Position)
	}
	for _, n := range g.Nodes() {
		if owner, ok := c.OwnerOf(n); !ok || owner.ID != id {
			t.Errorf("Expected node %d to be owned by gate %d", n, id)
		}
	}
	if !c.IsGateOutput(g.Output) || c.IsGateOutput(g.Inputs[0]) {
		t.Errorf("IsGateOutput misclassified gate nodes")
	}

	not, err := c.CreateGate(Not, r2.Vec{}, r2.Vec{})
	if err != nil {
		t.Fatalf("CreateGate(Not) failed: %v", err)
	}
	ng, _ := c.Gate(not)
	if len(ng.Inputs) != 1 {
		t.Errorf("Expected NOT gate to have 1 input, got %d", len(ng.Inputs))
	}
	if ng.Size != DefaultGateSize {
		t.Errorf("Expected zero size to fall back to default, got %v", ng.Size)
	}
	if ng.String() != "g2(Not)" {
		t.Errorf("Expected 'g2(Not)', got '%s'", ng.String())
	}
}

// TestGateArity tests that construction rejects mismatched inputs
func TestGateArity(t *testing.T) {
	if _, err := NewGate(1, And, []NodeID{1}, 2); !errors.Is(err, ErrArity) {
		t.Errorf("Expected ErrArity for AND with one input, got %v", err)
	}
	if _, err := NewGate(1, Not, []NodeID{1, 2}, 3); !errors.Is(err, ErrArity) {
		t.Errorf("Expected ErrArity for NOT with two inputs, got %v", err)
	}
	if _, err := NewGate(1, GateKind(42), nil, 1); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}

	c := NewCircuit(DefaultEdgeDelay)
	if _, err := c.CreateGate(GateKind(-1), r2.Vec{}, r2.Vec{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected CreateGate to reject unknown kind, got %v", err)
	}
	if c.NodeCount() != 0 {
		t.Errorf("Expected rejected gate to create no nodes, got %d", c.NodeCount())
	}
}

// TestEdgeRules tests which edges the store accepts
func TestEdgeRules(t *testing.T) {
	c := NewCircuit(50 * time.Millisecond)
	a := c.CreateNode(r2.Vec{})
	b := c.CreateNode(r2.Vec{X: 100})
	gid, _ := c.CreateGate(Not, r2.Vec{X: 300}, r2.Vec{})
	g, _ := c.Gate(gid)

	e, err := c.CreateEdge(a, b)
	if err != nil {
		t.Fatalf("CreateEdge failed: %v", err)
	}
	edge, _ := c.Edge(e)
	if edge.Timer.Duration != 50*time.Millisecond {
		t.Errorf("Expected circuit delay on edge, got %v", edge.Timer.Duration)
	}
	if edge.InFlight() {
		t.Errorf("Expected a new edge to be idle")
	}

	if _, err := c.CreateEdge(a, b); !errors.Is(err, ErrNodeDriven) {
		t.Errorf("Expected second incoming edge to be rejected, got %v", err)
	}
	if _, err := c.CreateEdge(a, g.Output); !errors.Is(err, ErrGateOutput) {
		t.Errorf("Expected edge into gate output to be rejected, got %v", err)
	}
	if _, err := c.CreateEdge(a, 999); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected missing destination to be rejected, got %v", err)
	}
	if _, err := c.CreateEdge(999, a); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected missing source to be rejected, got %v", err)
	}

	// Fan-out from one node is fine, and so is a self-loop
	if _, err := c.CreateEdge(g.Output, g.Inputs[0]); err != nil {
		t.Errorf("Expected edge into gate input to be accepted, got %v", err)
	}
	if _, err := c.CreateEdge(a, a); err != nil {
		t.Errorf("Expected self-loop to be accepted, got %v", err)
	}

	if d, ok := c.Driver(b); !ok || d != e {
		t.Errorf("Expected driver of b to be e%d, got e%d (%v)", e, d, ok)
	}

	// Once the edge is gone the node accepts a new driver
	if err := c.DeleteEdge(e); err != nil {
		t.Fatalf("DeleteEdge failed: %v", err)
	}
	if _, ok := c.Driver(b); ok {
		t.Errorf("Expected b to have no driver after delete")
	}
	if _, err := c.CreateEdge(a, b); err != nil {
		t.Errorf("Expected new driver to be accepted, got %v", err)
	}
	if err := c.DeleteEdge(e); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("Expected stale edge delete to fail, got %v", err)
	}
}

// TestCascadingDelete tests node and gate deletion cascades
func TestCascadingDelete(t *testing.T) {
	c := NewCircuit(DefaultEdgeDelay)
	f := c.CreateNode(r2.Vec{})
	h := c.CreateNode(r2.Vec{X: 50})
	gid, _ := c.CreateGate(And, r2.Vec{X: 200}, r2.Vec{})
	g, _ := c.Gate(gid)

	e1, _ := c.CreateEdge(f, g.Inputs[0])
	e2, _ := c.CreateEdge(f, h)
	sink := c.CreateNode(r2.Vec{X: 400})
	e4, _ := c.CreateEdge(g.Output, sink)

	if err := c.DeleteNode(g.Inputs[0]); !errors.Is(err, ErrOwnedNode) {
		t.Errorf("Expected deleting an owned node to fail, got %v", err)
	}

	if err := c.DeleteNode(f); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}
	if _, ok := c.Node(f); ok {
		t.Errorf("Expected node to be gone")
	}
	for _, e := range []EdgeID{e1, e2} {
		if _, ok := c.Edge(e); ok {
			t.Errorf("Expected edge %d touching deleted node to be gone", e)
		}
	}
	if _, ok := c.Edge(e4); !ok {
		t.Errorf("Expected unrelated edge to survive")
	}

	if err := c.DeleteGate(gid); err != nil {
		t.Fatalf("DeleteGate failed: %v", err)
	}
	for _, n := range g.Nodes() {
		if _, ok := c.Node(n); ok {
			t.Errorf("Expected owned node %d to be gone", n)
		}
	}
	if _, ok := c.Edge(e4); ok {
		t.Errorf("Expected edge from gate output to be gone")
	}
	if c.EdgeCount() != 0 {
		t.Errorf("Expected no edges left, got %d", c.EdgeCount())
	}
	if c.NodeCount() != 2 {
		t.Errorf("Expected h and sink to remain, got %d nodes", c.NodeCount())
	}

	if err := c.DeleteGate(gid); !errors.Is(err, ErrGateNotFound) {
		t.Errorf("Expected stale gate delete to fail, got %v", err)
	}
	if err := c.DeleteNode(f); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected stale node delete to fail, got %v", err)
	}
}

// TestSweep tests that dangling references are healed
func TestSweep(t *testing.T) {
	c := NewCircuit(DefaultEdgeDelay)
	a := c.CreateNode(r2.Vec{})
	b := c.CreateNode(r2.Vec{X: 10})
	e, _ := c.CreateEdge(a, b)
	gid, _ := c.CreateGate(Or, r2.Vec{X: 200}, r2.Vec{})
	g, _ := c.Gate(gid)
	ge, _ := c.CreateEdge(b, g.Inputs[1])

	if report := c.Sweep(); !report.Empty() {
		t.Errorf("Expected clean circuit to sweep nothing, got %+v", report)
	}

	// Bypass the cascades to leave dangling handles behind
	c.nodes.Delete(a)
	c.nodes.Delete(g.Inputs[0])

	report := c.Sweep()
	if len(report.Gates) != 1 || report.Gates[0] != gid {
		t.Errorf("Expected gate %d to be swept, got %v", gid, report.Gates)
	}
	if _, ok := c.Edge(e); ok {
		t.Errorf("Expected edge with missing source to be swept")
	}
	if _, ok := c.Edge(ge); ok {
		t.Errorf("Expected edge into swept gate to be swept")
	}
	if _, ok := c.Driver(b); ok {
		t.Errorf("Expected driver index to be cleaned")
	}
	if c.NodeCount() != 1 {
		t.Errorf("Expected only b to remain, got %d nodes", c.NodeCount())
	}
}

// TestRelayout tests that owned nodes follow their gate
func TestRelayout(t *testing.T) {
	c := NewCircuit(DefaultEdgeDelay)
	gid, _ := c.CreateGate(Not, r2.Vec{}, r2.Vec{X: 100, Y: 100})
	g, _ := c.Gate(gid)

	if n := c.Relayout(); n != 0 {
		t.Errorf("Expected no relayout for an unmoved gate, got %d", n)
	}

	if err := c.MoveGate(gid, r2.Vec{X: 50, Y: 50}); err != nil {
		t.Fatalf("MoveGate failed: %v", err)
	}
	in, _ := c.Node(g.Inputs[0])
	if in.Position != (r2.Vec{X: -50, Y: 0}) {
		t.Errorf("Expected input to stay until relayout, got %v", in.Position)
	}
	if n := c.Relayout(); n != 1 {
		t.Errorf("Expected one gate laid out, got %d", n)
	}
	if in.Position != (r2.Vec{X: 0, Y: 50}) {
		t.Errorf("Expected input at (0,50), got %v", in.Position)
	}

	// Programmatic moves through the field are picked up as well
	g.Position = r2.Vec{X: 100, Y: 100}
	c.Relayout()
	out, _ := c.Node(g.Output)
	if out.Position != (r2.Vec{X: 150, Y: 100}) {
		t.Errorf("Expected output at (150,100), got %v", out.Position)
	}

	if err := c.MoveGate(99, r2.Vec{}); !errors.Is(err, ErrGateNotFound) {
		t.Errorf("Expected moving a stale gate to fail, got %v", err)
	}
}

// TestCreationOrder tests that iteration follows handle allocation
func TestCreationOrder(t *testing.T) {
	c := NewCircuit(DefaultEdgeDelay)
	var ids []NodeID
	for i := 0; i < 20; i++ {
		ids = append(ids, c.CreateNode(r2.Vec{X: float64(i)}))
	}
	_ = c.DeleteNode(ids[3])
	extra := c.CreateNode(r2.Vec{})

	prev := NodeID(0)
	for _, n := range c.Nodes() {
		if n.ID <= prev {
			t.Fatalf("Expected ascending handles, got %d after %d", n.ID, prev)
		}
		prev = n.ID
	}
	if prev != extra {
		t.Errorf("Expected newest node last, got %d", prev)
	}
	if extra == ids[3] {
		t.Errorf("Expected handles never to be reused")
	}
}

// TestReset tests clearing the circuit state
func TestReset(t *testing.T) {
	c := NewCircuit(DefaultEdgeDelay)
	a := c.CreateNode(r2.Vec{})
	b := c.CreateNode(r2.Vec{})
	e, _ := c.CreateEdge(a, b)

	n, _ := c.Node(a)
	n.Value = true
	edge, _ := c.Edge(e)
	edge.Timer.Reset()

	c.Reset()
	if n.Value {
		t.Errorf("Expected node value cleared")
	}
	if edge.InFlight() {
		t.Errorf("Expected edge timer idle after reset")
	}
}
