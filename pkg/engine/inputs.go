package engine

import (
	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"gonum.org/v1/gonum/spatial/r2"
)

// InputColumn places the free input nodes in a vertical column along the
// left margin, centered on CenterY
type InputColumn struct {
	X       float64
	CenterY float64
	Spacing float64
}

// DefaultInputColumn returns the column used by the window driver
func DefaultInputColumn() InputColumn {
	return InputColumn{X: 75, CenterY: 360, Spacing: 50}
}

// Position returns the slot of input i out of n
func (col InputColumn) Position(i, n int) r2.Vec {
	offset := (float64(i) - float64(n-1)/2) * col.Spacing
	return r2.Vec{X: col.X, Y: col.CenterY + offset}
}

// AddInput appends a free node to the input column
func (s *Sandbox) AddInput() circuit.NodeID {
	id := s.Circuit.CreateNode(s.Column.Position(len(s.inputs), len(s.inputs)+1))
	s.inputs = append(s.inputs, id)
	s.alignInputs()
	s.Logger.Circuit("input added", "node", id, "inputs", len(s.inputs))
	return id
}

// RemoveInput deletes an input column node together with its edges
func (s *Sandbox) RemoveInput(id circuit.NodeID) error {
	if err := s.Circuit.DeleteNode(id); err != nil {
		return err
	}
	s.dropInput(id)
	s.alignInputs()
	s.Logger.Circuit("input removed", "node", id, "inputs", len(s.inputs))
	return nil
}

// RemoveLastInput deletes the bottom input, if any
func (s *Sandbox) RemoveLastInput() bool {
	if len(s.inputs) == 0 {
		return false
	}
	return s.RemoveInput(s.inputs[len(s.inputs)-1]) == nil
}

// Inputs returns the input column, top to bottom
func (s *Sandbox) Inputs() []circuit.NodeID {
	return append([]circuit.NodeID(nil), s.inputs...)
}

func (s *Sandbox) dropInput(id circuit.NodeID) {
	for i, in := range s.inputs {
		if in == id {
			s.inputs = append(s.inputs[:i], s.inputs[i+1:]...)
			return
		}
	}
}

// alignInputs moves the column nodes back to their slots and forgets
// nodes that no longer exist
func (s *Sandbox) alignInputs() {
	live := s.inputs[:0]
	for _, id := range s.inputs {
		if _, ok := s.Circuit.Node(id); ok {
			live = append(live, id)
		}
	}
	s.inputs = live

	for i, id := range s.inputs {
		n, _ := s.Circuit.Node(id)
		n.Position = s.Column.Position(i, len(s.inputs))
	}
}
