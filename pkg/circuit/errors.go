package circuit

import "errors"

// Errors returned by the circuit store. Callers compare with errors.Is.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrEdgeNotFound = errors.New("edge not found")
	ErrGateNotFound = errors.New("gate not found")

	// ErrArity is returned when a gate is assembled with an input count that
	// does not match its kind.
	ErrArity       = errors.New("gate input count does not match kind")
	ErrUnknownKind = errors.New("unknown gate kind")

	// ErrNodeDriven is returned when an edge would become the second writer
	// of a node that already has an incoming edge.
	ErrNodeDriven = errors.New("node already has an incoming edge")
	// ErrGateOutput is returned when an edge targets a gate output, which is
	// rewritten by its gate every tick.
	ErrGateOutput = errors.New("node is a gate output")
	// ErrOwnedNode is returned when a node owned by a gate is deleted
	// directly. Delete the gate instead.
	ErrOwnedNode = errors.New("node is owned by a gate")
)
