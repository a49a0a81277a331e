package circuit

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// GateKind represents the type of logic gate
type GateKind int

const (
	And GateKind = iota
	Or
	Xor
	Not
)

// Kinds lists every gate kind in palette order
var Kinds = []GateKind{And, Or, Xor, Not}

// DefaultGateSize is the extent of a gate spawned from the palette
var DefaultGateSize = r2.Vec{X: 120, Y: 120}

// String returns a string representation of the gate kind
func (k GateKind) String() string {
	switch k {
	case And:
		return "And"
	case Or:
		return "Or"
	case Xor:
		return "Xor"
	case Not:
		return "Not"
	default:
		return "Unknown"
	}
}

// Arity returns the number of inputs a gate of this kind has
func (k GateKind) Arity() int {
	switch k {
	case And, Or, Xor:
		return 2
	case Not:
		return 1
	default:
		return 0
	}
}

// Valid reports whether k is one of the known kinds
func (k GateKind) Valid() bool {
	return k.Arity() > 0
}

// Apply computes the output of the gate kind for the given input values.
// Callers must pass exactly Arity() values.
func (k GateKind) Apply(in []bool) bool {
	switch k {
	case And:
		return in[0] && in[1]
	case Or:
		return in[0] || in[1]
	case Xor:
		return in[0] != in[1]
	case Not:
		return !in[0]
	default:
		panic(fmt.Sprintf("circuit: apply on unknown gate kind %d", int(k)))
	}
}

// ParseGateKind parses a case-insensitive kind name
func ParseGateKind(s string) (GateKind, error) {
	switch strings.ToLower(s) {
	case "and":
		return And, nil
	case "or":
		return Or, nil
	case "xor":
		return Xor, nil
	case "not":
		return Not, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// GateID is a stable handle to a Gate. The zero value refers to no gate.
type GateID int

// Gate represents a logic gate on the canvas
type Gate struct {
	ID       GateID
	Kind     GateKind
	Inputs   []NodeID // Owned input nodes, top to bottom
	Output   NodeID   // Owned output node
	Position r2.Vec   // Center in world coordinates
	Size     r2.Vec   // Full width and height

	// Transform the owned nodes were last laid out for
	laidOutPos  r2.Vec
	laidOutSize r2.Vec
	laidOut     bool
}

// NewGate assembles a gate from already created nodes. The number of inputs
// must match the kind's arity.
func NewGate(id GateID, kind GateKind, inputs []NodeID, output NodeID) (*Gate, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	if len(inputs) != kind.Arity() {
		return nil, fmt.Errorf("%w: %s wants %d inputs, got %d", ErrArity, kind, kind.Arity(), len(inputs))
	}

	return &Gate{
		ID:     id,
		Kind:   kind,
		Inputs: append([]NodeID(nil), inputs...),
		Output: output,
		Size:   DefaultGateSize,
	}, nil
}

// Label returns the text drawn on the gate
func (g *Gate) Label() string {
	return g.Kind.String()
}

// Bounds returns the minimum and maximum corners of the gate rectangle
func (g *Gate) Bounds() (min, max r2.Vec) {
	half := r2.Scale(0.5, g.Size)
	return r2.Sub(g.Position, half), r2.Add(g.Position, half)
}

// Contains reports whether p lies strictly inside the gate rectangle
func (g *Gate) Contains(p r2.Vec) bool {
	lo, hi := g.Bounds()
	return p.X > lo.X && p.Y > lo.Y && p.X < hi.X && p.Y < hi.Y
}

// InputPosition returns where input i is placed on the left edge: the
// inputs split the height into len(Inputs)+1 equal parts.
func (g *Gate) InputPosition(i int) r2.Vec {
	lo, _ := g.Bounds()
	n := len(g.Inputs)
	return r2.Vec{X: lo.X, Y: lo.Y + float64(i+1)*g.Size.Y/float64(n+1)}
}

// OutputPosition returns the midpoint of the right edge
func (g *Gate) OutputPosition() r2.Vec {
	_, hi := g.Bounds()
	return r2.Vec{X: hi.X, Y: g.Position.Y}
}

// NeedsLayout returns true if the gate moved or resized since its nodes
// were last positioned
func (g *Gate) NeedsLayout() bool {
	return !g.laidOut || g.laidOutPos != g.Position || g.laidOutSize != g.Size
}

func (g *Gate) markLaidOut() {
	g.laidOutPos = g.Position
	g.laidOutSize = g.Size
	g.laidOut = true
}

// Owns returns true if the node is one of the gate's inputs or its output
func (g *Gate) Owns(id NodeID) bool {
	if g.Output == id {
		return true
	}
	for _, in := range g.Inputs {
		if in == id {
			return true
		}
	}
	return false
}

// Nodes returns the inputs followed by the output
func (g *Gate) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.Inputs)+1)
	ids = append(ids, g.Inputs...)
	return append(ids, g.Output)
}

// String returns a string representation of the gate
func (g *Gate) String() string {
	return fmt.Sprintf("g%d(%s)", g.ID, g.Kind)
}
