package circuit

import (
	"sort"
)

// NodeRole classifies a node by its position in the graph. Roles are not
// stored on the node; they follow from gate ownership and incoming edges.
type NodeRole int

const (
	FreeInput  NodeRole = iota // Toggleable node with no incoming edge
	GateInput                  // Input of a gate
	GateOutput                 // Output of a gate
	EdgeTarget                 // Free node driven by an edge
)

// String returns a string representation of the role
func (r NodeRole) String() string {
	switch r {
	case FreeInput:
		return "free"
	case GateInput:
		return "gate-input"
	case GateOutput:
		return "gate-output"
	case EdgeTarget:
		return "edge-target"
	default:
		return "unknown"
	}
}

// Topology contains information about the circuit structure
type Topology struct {
	Circuit   *Circuit
	Fanouts   map[NodeID][]EdgeID // Outgoing edges per source node
	Feedback  map[GateID]bool     // Gates lying on a cycle
	MaxFanout int
}

// NewTopology creates a new topology analyzer for the given circuit
func NewTopology(c *Circuit) *Topology {
	return &Topology{
		Circuit:  c,
		Fanouts:  make(map[NodeID][]EdgeID),
		Feedback: make(map[GateID]bool),
	}
}

// Analyze performs a complete structural analysis of the circuit
func (t *Topology) Analyze() {
	t.IdentifyFanouts()
	t.IdentifyFeedback()
}

// Role returns the role of a node in the current graph
func (t *Topology) Role(id NodeID) NodeRole {
	if g, ok := t.Circuit.OwnerOf(id); ok {
		if g.Output == id {
			return GateOutput
		}
		return GateInput
	}
	if _, driven := t.Circuit.Driver(id); driven {
		return EdgeTarget
	}
	return FreeInput
}

// IdentifyFanouts groups edges by their source node
func (t *Topology) IdentifyFanouts() {
	t.Fanouts = make(map[NodeID][]EdgeID)
	t.MaxFanout = 0

	t.Circuit.ScanEdges(func(e *Edge) bool {
		t.Fanouts[e.From] = append(t.Fanouts[e.From], e.ID)
		if n := len(t.Fanouts[e.From]); n > t.MaxFanout {
			t.MaxFanout = n
		}
		return true
	})
}

// Fanout returns the edges leaving a node
func (t *Topology) Fanout(id NodeID) []EdgeID {
	return t.Fanouts[id]
}

// successors returns the nodes a signal at id reaches in one step:
// edge destinations, and the gate output when id is a gate input
func (t *Topology) successors(id NodeID) []NodeID {
	var next []NodeID
	for _, eid := range t.Fanouts[id] {
		if e, ok := t.Circuit.Edge(eid); ok {
			next = append(next, e.To)
		}
	}
	if g, ok := t.Circuit.OwnerOf(id); ok && g.Output != id {
		next = append(next, g.Output)
	}
	return next
}

// IdentifyFeedback marks every gate whose output can reach one of its own
// inputs. Such loops hold state across ticks (latches) and only settle
// because edges delay the signal.
func (t *Topology) IdentifyFeedback() {
	t.Feedback = make(map[GateID]bool)

	t.Circuit.ScanGates(func(g *Gate) bool {
		visited := make(map[NodeID]bool)
		queue := []NodeID{g.Output}
		visited[g.Output] = true

		for len(queue) > 0 && !t.Feedback[g.ID] {
			current := queue[0]
			queue = queue[1:]

			for _, next := range t.successors(current) {
				if g.Owns(next) && next != g.Output {
					t.Feedback[g.ID] = true
					break
				}
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		return true
	})
}

// FeedbackGates returns the gates on a cycle, sorted by handle
func (t *Topology) FeedbackGates() []GateID {
	ids := make([]GateID, 0, len(t.Feedback))
	for id := range t.Feedback {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats summarizes the circuit
type Stats struct {
	Nodes      int
	Edges      int
	Gates      int
	FreeInputs int
	Feedback   int
	MaxFanout  int
}

// Stats returns counts over the analyzed circuit
func (t *Topology) Stats() Stats {
	s := Stats{
		Nodes:     t.Circuit.NodeCount(),
		Edges:     t.Circuit.EdgeCount(),
		Gates:     t.Circuit.GateCount(),
		Feedback:  len(t.Feedback),
		MaxFanout: t.MaxFanout,
	}
	t.Circuit.ScanNodes(func(n *Node) bool {
		if t.Role(n.ID) == FreeInput {
			s.FreeInputs++
		}
		return true
	})
	return s
}
