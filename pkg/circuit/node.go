package circuit

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// NodeID is a stable handle to a Node. The zero value refers to no node.
type NodeID int

// Node represents a single boolean signal point on the canvas
type Node struct {
	ID       NodeID // Unique identifier, allocated in creation order
	Value    bool   // Current signal value
	Position r2.Vec // Center in world coordinates
	Owner    GateID // Gate that created this node (zero for free nodes)

	// For statistics and debugging
	ChangeCount int // Number of times the value actually changed
}

// NewNode creates a new free node at the given position
func NewNode(id NodeID, pos r2.Vec) *Node {
	return &Node{
		ID:       id,
		Position: pos,
	}
}

// SetValue sets the value of the node, counting real transitions
func (n *Node) SetValue(value bool) {
	if n.Value != value {
		n.ChangeCount++
	}
	n.Value = value
}

// Toggle flips the node value
func (n *Node) Toggle() {
	n.SetValue(!n.Value)
}

// IsOwned returns true if the node belongs to a gate
func (n *Node) IsOwned() bool {
	return n.Owner != 0
}

// String returns a string representation of the node
func (n *Node) String() string {
	v := 0
	if n.Value {
		v = 1
	}
	return fmt.Sprintf("n%d=%d", n.ID, v)
}
