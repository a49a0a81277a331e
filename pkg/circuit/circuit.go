package circuit

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/spatial/r2"
)

// Circuit owns every node, edge and gate of the canvas. Entities live in
// arenas keyed by handles that are allocated in creation order and never
// reused, so iterating an arena visits entities in the order they were made.
type Circuit struct {
	EdgeDelay time.Duration // Delay given to newly created edges

	nodes btree.Map[NodeID, *Node]
	edges btree.Map[EdgeID, *Edge]
	gates btree.Map[GateID, *Gate]

	// driver maps a node to its single incoming edge
	driver map[NodeID]EdgeID

	nextNode NodeID
	nextEdge EdgeID
	nextGate GateID
}

// NewCircuit creates an empty circuit whose edges use the given delay
func NewCircuit(delay time.Duration) *Circuit {
	if delay <= 0 {
		delay = DefaultEdgeDelay
	}
	return &Circuit{
		EdgeDelay: delay,
		driver:    make(map[NodeID]EdgeID),
	}
}

// CreateNode adds a free node at the given position
func (c *Circuit) CreateNode(pos r2.Vec) NodeID {
	c.nextNode++
	n := NewNode(c.nextNode, pos)
	c.nodes.Set(n.ID, n)
	return n.ID
}

// CreateEdge connects two existing nodes. A node accepts at most one
// incoming edge and gate outputs accept none. Self-loops are allowed.
func (c *Circuit) CreateEdge(from, to NodeID) (EdgeID, error) {
	if _, ok := c.nodes.Get(from); !ok {
		return 0, fmt.Errorf("edge source n%d: %w", from, ErrNodeNotFound)
	}
	dst, ok := c.nodes.Get(to)
	if !ok {
		return 0, fmt.Errorf("edge destination n%d: %w", to, ErrNodeNotFound)
	}
	if dst.IsOwned() {
		if g, ok := c.gates.Get(dst.Owner); ok && g.Output == to {
			return 0, fmt.Errorf("edge destination n%d: %w", to, ErrGateOutput)
		}
	}
	if existing, ok := c.driver[to]; ok {
		if _, live := c.edges.Get(existing); live {
			return 0, fmt.Errorf("edge destination n%d driven by e%d: %w", to, existing, ErrNodeDriven)
		}
	}

	c.nextEdge++
	e := NewEdge(c.nextEdge, from, to, c.EdgeDelay)
	c.edges.Set(e.ID, e)
	c.driver[to] = e.ID
	return e.ID, nil
}

// CreateGate adds a gate centered at pos together with its owned input and
// output nodes. The nodes are laid out before returning.
func (c *Circuit) CreateGate(kind GateKind, pos, size r2.Vec) (GateID, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	id := c.nextGate + 1
	inputs := make([]NodeID, kind.Arity())
	for i := range inputs {
		inputs[i] = c.createOwnedNode(id)
	}
	output := c.createOwnedNode(id)

	g, err := NewGate(id, kind, inputs, output)
	if err != nil {
		return 0, err
	}
	c.nextGate = id
	g.Position = pos
	if size != (r2.Vec{}) {
		g.Size = size
	}
	c.gates.Set(g.ID, g)
	c.layout(g)
	return g.ID, nil
}

func (c *Circuit) createOwnedNode(owner GateID) NodeID {
	id := c.CreateNode(r2.Vec{})
	n, _ := c.nodes.Get(id)
	n.Owner = owner
	return id
}

// DeleteNode removes a free node and every edge touching it
func (c *Circuit) DeleteNode(id NodeID) error {
	n, ok := c.nodes.Get(id)
	if !ok {
		return fmt.Errorf("delete n%d: %w", id, ErrNodeNotFound)
	}
	if n.IsOwned() {
		if _, live := c.gates.Get(n.Owner); live {
			return fmt.Errorf("delete n%d (gate g%d): %w", id, n.Owner, ErrOwnedNode)
		}
	}
	c.removeNode(id)
	return nil
}

// removeNode deletes a node and cascades to its incident edges
func (c *Circuit) removeNode(id NodeID) {
	c.nodes.Delete(id)
	for _, e := range c.Edges() {
		if e.Touches(id) {
			c.removeEdge(e)
		}
	}
	delete(c.driver, id)
}

// DeleteEdge removes a single edge
func (c *Circuit) DeleteEdge(id EdgeID) error {
	e, ok := c.edges.Get(id)
	if !ok {
		return fmt.Errorf("delete e%d: %w", id, ErrEdgeNotFound)
	}
	c.removeEdge(e)
	return nil
}

func (c *Circuit) removeEdge(e *Edge) {
	c.edges.Delete(e.ID)
	if c.driver[e.To] == e.ID {
		delete(c.driver, e.To)
	}
}

// DeleteGate removes a gate, its owned nodes and every edge touching them
func (c *Circuit) DeleteGate(id GateID) error {
	g, ok := c.gates.Get(id)
	if !ok {
		return fmt.Errorf("delete g%d: %w", id, ErrGateNotFound)
	}
	c.gates.Delete(id)
	for _, n := range g.Nodes() {
		c.removeNode(n)
	}
	return nil
}

// Node returns a node by handle
func (c *Circuit) Node(id NodeID) (*Node, bool) {
	return c.nodes.Get(id)
}

// Edge returns an edge by handle
func (c *Circuit) Edge(id EdgeID) (*Edge, bool) {
	return c.edges.Get(id)
}

// Gate returns a gate by handle
func (c *Circuit) Gate(id GateID) (*Gate, bool) {
	return c.gates.Get(id)
}

// Nodes returns all nodes in creation order
func (c *Circuit) Nodes() []*Node {
	return c.nodes.Values()
}

// Edges returns all edges in creation order
func (c *Circuit) Edges() []*Edge {
	return c.edges.Values()
}

// Gates returns all gates in creation order
func (c *Circuit) Gates() []*Gate {
	return c.gates.Values()
}

// ScanNodes calls fn for each node in creation order until fn returns false
func (c *Circuit) ScanNodes(fn func(n *Node) bool) {
	c.nodes.Scan(func(_ NodeID, n *Node) bool { return fn(n) })
}

// ScanEdges calls fn for each edge in creation order until fn returns false
func (c *Circuit) ScanEdges(fn func(e *Edge) bool) {
	c.edges.Scan(func(_ EdgeID, e *Edge) bool { return fn(e) })
}

// ScanGates calls fn for each gate in creation order until fn returns false
func (c *Circuit) ScanGates(fn func(g *Gate) bool) {
	c.gates.Scan(func(_ GateID, g *Gate) bool { return fn(g) })
}

// NodeCount returns the number of live nodes
func (c *Circuit) NodeCount() int { return c.nodes.Len() }

// EdgeCount returns the number of live edges
func (c *Circuit) EdgeCount() int { return c.edges.Len() }

// GateCount returns the number of live gates
func (c *Circuit) GateCount() int { return c.gates.Len() }

// Driver returns the incoming edge of a node, if any
func (c *Circuit) Driver(id NodeID) (EdgeID, bool) {
	e, ok := c.driver[id]
	if !ok {
		return 0, false
	}
	if _, live := c.edges.Get(e); !live {
		return 0, false
	}
	return e, true
}

// OwnerOf returns the gate owning a node
func (c *Circuit) OwnerOf(id NodeID) (*Gate, bool) {
	n, ok := c.nodes.Get(id)
	if !ok || !n.IsOwned() {
		return nil, false
	}
	return c.gates.Get(n.Owner)
}

// IsGateOutput returns true if the node is the output of a live gate
func (c *Circuit) IsGateOutput(id NodeID) bool {
	g, ok := c.OwnerOf(id)
	return ok && g.Output == id
}

// MoveGate sets the gate position. Owned nodes follow on the next Relayout.
func (c *Circuit) MoveGate(id GateID, pos r2.Vec) error {
	g, ok := c.gates.Get(id)
	if !ok {
		return fmt.Errorf("move g%d: %w", id, ErrGateNotFound)
	}
	g.Position = pos
	return nil
}

// Relayout repositions the owned nodes of every gate whose transform changed
// since it was last laid out. It returns the number of gates laid out.
func (c *Circuit) Relayout() int {
	moved := 0
	c.gates.Scan(func(_ GateID, g *Gate) bool {
		if g.NeedsLayout() {
			c.layout(g)
			moved++
		}
		return true
	})
	return moved
}

func (c *Circuit) layout(g *Gate) {
	for i, id := range g.Inputs {
		if n, ok := c.nodes.Get(id); ok {
			n.Position = g.InputPosition(i)
		}
	}
	if n, ok := c.nodes.Get(g.Output); ok {
		n.Position = g.OutputPosition()
	}
	g.markLaidOut()
}

// SweepReport describes what a consistency sweep removed
type SweepReport struct {
	Edges []EdgeID
	Gates []GateID
}

// Empty returns true if the sweep removed nothing
func (r SweepReport) Empty() bool {
	return len(r.Edges) == 0 && len(r.Gates) == 0
}

// Sweep removes every entity holding a handle that no longer resolves:
// gates missing an owned node and edges missing an endpoint. It also drops
// stale entries from the driver index.
func (c *Circuit) Sweep() SweepReport {
	var report SweepReport

	for _, g := range c.Gates() {
		for _, id := range g.Nodes() {
			if _, ok := c.nodes.Get(id); !ok {
				report.Gates = append(report.Gates, g.ID)
				c.gates.Delete(g.ID)
				for _, n := range g.Nodes() {
					if _, ok := c.nodes.Get(n); ok {
						c.removeNode(n)
					}
				}
				break
			}
		}
	}

	for _, e := range c.Edges() {
		_, fromOK := c.nodes.Get(e.From)
		_, toOK := c.nodes.Get(e.To)
		if !fromOK || !toOK {
			report.Edges = append(report.Edges, e.ID)
			c.removeEdge(e)
		}
	}

	for node, edge := range c.driver {
		if _, ok := c.edges.Get(edge); !ok {
			delete(c.driver, node)
		}
	}

	return report
}

// Reset sets every node value to false and idles every edge timer
func (c *Circuit) Reset() {
	c.nodes.Scan(func(_ NodeID, n *Node) bool {
		n.Value = false
		return true
	})
	c.edges.Scan(func(_ EdgeID, e *Edge) bool {
		e.Timer = NewDelayTimer(e.Timer.Duration)
		return true
	})
}

// String returns a string representation of the circuit state
func (c *Circuit) String() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Circuit: %d nodes, %d edges, %d gates\n",
		c.NodeCount(), c.EdgeCount(), c.GateCount()))

	builder.WriteString("Gates: ")
	for _, g := range c.Gates() {
		builder.WriteString(fmt.Sprintf("%s ", g))
	}

	builder.WriteString("\nEdges: ")
	for _, e := range c.Edges() {
		builder.WriteString(fmt.Sprintf("%s ", e))
	}

	builder.WriteString("\nNodes: ")
	for _, n := range c.Nodes() {
		builder.WriteString(fmt.Sprintf("%s ", n))
	}

	return builder.String()
}
