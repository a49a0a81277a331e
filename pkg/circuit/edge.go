package circuit

import (
	"fmt"
	"time"
)

// DefaultEdgeDelay is the transmission lag of a wire
const DefaultEdgeDelay = 100 * time.Millisecond

// EdgeID is a stable handle to an Edge. The zero value refers to no edge.
type EdgeID int

// DelayTimer is a one-shot countdown advanced by tick deltas.
// A timer whose Elapsed has reached Duration is finished.
type DelayTimer struct {
	Duration time.Duration
	Elapsed  time.Duration
}

// NewDelayTimer creates a finished timer, so a fresh edge starts idle
func NewDelayTimer(d time.Duration) DelayTimer {
	return DelayTimer{Duration: d, Elapsed: d}
}

// Finished returns true once the full duration has elapsed
func (t *DelayTimer) Finished() bool {
	return t.Elapsed >= t.Duration
}

// Reset restarts the countdown from zero
func (t *DelayTimer) Reset() {
	t.Elapsed = 0
}

// Advance adds dt to the timer and reports whether this call finished it
func (t *DelayTimer) Advance(dt time.Duration) bool {
	if t.Finished() {
		return false
	}
	t.Elapsed += dt
	if t.Elapsed > t.Duration {
		t.Elapsed = t.Duration
	}
	return t.Finished()
}

// Fraction returns elapsed/duration in [0,1]
func (t *DelayTimer) Fraction() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return float64(t.Elapsed) / float64(t.Duration)
}

// Edge represents a wire carrying one node's value to another after a delay
type Edge struct {
	ID    EdgeID
	From  NodeID
	To    NodeID
	Timer DelayTimer

	// Number of values delivered to To
	Deliveries int
}

// NewEdge creates an idle edge between two nodes
func NewEdge(id EdgeID, from, to NodeID, delay time.Duration) *Edge {
	return &Edge{
		ID:    id,
		From:  from,
		To:    to,
		Timer: NewDelayTimer(delay),
	}
}

// InFlight returns true while a value is travelling along the edge
func (e *Edge) InFlight() bool {
	return !e.Timer.Finished()
}

// Touches returns true if either endpoint is the given node
func (e *Edge) Touches(id NodeID) bool {
	return e.From == id || e.To == id
}

// String returns a string representation of the edge
func (e *Edge) String() string {
	return fmt.Sprintf("e%d(n%d->n%d)", e.ID, e.From, e.To)
}
