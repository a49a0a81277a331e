package interaction

import (
	"fmt"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"gonum.org/v1/gonum/spatial/r2"
)

// State is the transient interaction state carried from one tick to the
// next. The zero value is idle with nothing hovered.
type State struct {
	HoveredNode circuit.NodeID
	HoveredEdge circuit.EdgeID

	// Source of an edge being drawn with the right button
	PendingSource circuit.NodeID

	// Gate following the pointer and the grab offset (gate position minus
	// pointer position at grab time)
	DragGate   circuit.GateID
	DragOffset r2.Vec
}

// Pending returns true while an edge is being drawn
func (s *State) Pending() bool {
	return s.PendingSource != 0
}

// Dragging returns true while a gate follows the pointer
func (s *State) Dragging() bool {
	return s.DragGate != 0
}

// Grab starts dragging a gate with the given offset from the pointer
func (s *State) Grab(id circuit.GateID, offset r2.Vec) {
	s.DragGate = id
	s.DragOffset = offset
}

// Drop ends any drag
func (s *State) Drop() {
	s.DragGate = 0
	s.DragOffset = r2.Vec{}
}

// Reset returns the state to idle
func (s *State) Reset() {
	*s = State{}
}

// String returns a string representation of the state
func (s *State) String() string {
	mode := "idle"
	switch {
	case s.Dragging():
		mode = fmt.Sprintf("dragging g%d", s.DragGate)
	case s.Pending():
		mode = fmt.Sprintf("pending from n%d", s.PendingSource)
	}
	return fmt.Sprintf("%s (hover n%d e%d)", mode, s.HoveredNode, s.HoveredEdge)
}
