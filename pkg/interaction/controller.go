// Package interaction turns per-tick pointer input into circuit edits.
// Hover is recomputed first, then the toggle, edge and drag gestures run
// in that order against the same hover result.
package interaction

import (
	"math"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"github.com/fyerfyer/gate-sandbox/pkg/hittest"
	"github.com/fyerfyer/gate-sandbox/pkg/utils"
	"gonum.org/v1/gonum/spatial/r2"
)

// Events records the edits made during one Update
type Events struct {
	Toggled      circuit.NodeID
	EdgeCreated  circuit.EdgeID
	EdgeDeleted  circuit.EdgeID
	EdgeRejected error // CreateEdge refused the requested edge
	EdgeCanceled bool  // Right button released away from any node
	DragStarted  circuit.GateID
	DragEnded    circuit.GateID
	Moved        bool // The dragged gate changed position
}

// Gestures lists the gestures that completed, as metric labels
func (e Events) Gestures() []string {
	var out []string
	if e.Toggled != 0 {
		out = append(out, "toggle")
	}
	if e.EdgeCreated != 0 {
		out = append(out, "edge_create")
	}
	if e.EdgeRejected != nil {
		out = append(out, "edge_reject")
	}
	if e.EdgeCanceled {
		out = append(out, "edge_cancel")
	}
	if e.EdgeDeleted != 0 {
		out = append(out, "edge_delete")
	}
	if e.DragStarted != 0 {
		out = append(out, "drag_start")
	}
	if e.DragEnded != 0 {
		out = append(out, "drag_end")
	}
	return out
}

// Controller runs the gesture state machines
type Controller struct {
	Tester hittest.Tester
	Grid   float64 // Drag snap cell size, 0 disables snapping
	Logger *utils.Logger
}

// NewController creates a controller with the given hit tolerances
func NewController(tester hittest.Tester, grid float64, logger *utils.Logger) *Controller {
	return &Controller{
		Tester: tester,
		Grid:   grid,
		Logger: logger,
	}
}

// Update processes one tick of input
func (ctl *Controller) Update(c *circuit.Circuit, s *State, in Input) Events {
	var ev Events
	ctl.UpdateHover(c, s, in.Pointer)
	ctl.toggle(c, s, in, &ev)
	ctl.edgeGesture(c, s, in, &ev)
	ctl.dragGesture(c, s, in, &ev)
	return ev
}

// UpdateHover recomputes the hovered node and edge. An edge is never
// hovered while a node is.
func (ctl *Controller) UpdateHover(c *circuit.Circuit, s *State, p r2.Vec) {
	s.HoveredNode, s.HoveredEdge = ctl.Tester.Hover(c, p)
}

// toggle flips the hovered node on a left press. Gate outputs are skipped
// since the gate phase would overwrite them on the same tick.
func (ctl *Controller) toggle(c *circuit.Circuit, s *State, in Input, ev *Events) {
	if !in.Left.Pressed || s.HoveredNode == 0 {
		return
	}
	if c.IsGateOutput(s.HoveredNode) {
		ctl.Logger.Interaction("toggle skipped on gate output", "node", s.HoveredNode)
		return
	}
	n, ok := c.Node(s.HoveredNode)
	if !ok {
		return
	}
	n.Toggle()
	ev.Toggled = n.ID
	ctl.Logger.Interaction("node toggled", "node", n.ID, "value", n.Value)
}

// edgeGesture handles right-button edge creation and deletion. Deletion is
// only considered when no edge was created on the same release and no node
// is hovered.
func (ctl *Controller) edgeGesture(c *circuit.Circuit, s *State, in Input, ev *Events) {
	if s.Pending() {
		if _, ok := c.Node(s.PendingSource); !ok {
			ctl.Logger.Interaction("pending source vanished", "node", s.PendingSource)
			s.PendingSource = 0
		}
	}

	if in.Right.Pressed && s.HoveredNode != 0 {
		s.PendingSource = s.HoveredNode
		ctl.Logger.Interaction("edge started", "from", s.PendingSource)
	}
	if !in.Right.Released {
		return
	}

	created := false
	if s.Pending() {
		from := s.PendingSource
		s.PendingSource = 0

		if s.HoveredNode == 0 {
			ev.EdgeCanceled = true
			ctl.Logger.Interaction("edge canceled", "from", from)
		} else if id, err := c.CreateEdge(from, s.HoveredNode); err != nil {
			ev.EdgeRejected = err
			ctl.Logger.Interaction("edge rejected", "from", from, "to", s.HoveredNode, "error", err)
		} else {
			ev.EdgeCreated = id
			created = true
			ctl.Logger.Interaction("edge created", "edge", id, "from", from, "to", s.HoveredNode)
		}
	}

	if created || s.HoveredNode != 0 || s.HoveredEdge == 0 {
		return
	}
	if err := c.DeleteEdge(s.HoveredEdge); err != nil {
		return
	}
	ev.EdgeDeleted = s.HoveredEdge
	ctl.Logger.Interaction("edge deleted", "edge", s.HoveredEdge)
	s.HoveredEdge = 0
}

// dragGesture moves the grabbed gate with the pointer, keeping the grab
// offset so the gate does not jump
func (ctl *Controller) dragGesture(c *circuit.Circuit, s *State, in Input, ev *Events) {
	if s.Dragging() {
		if _, ok := c.Gate(s.DragGate); !ok {
			ctl.Logger.Interaction("dragged gate vanished", "gate", s.DragGate)
			s.Drop()
		}
	}

	if in.Left.Pressed && !s.Dragging() {
		if id, ok := ctl.Tester.Gate(c, in.Pointer); ok {
			g, _ := c.Gate(id)
			s.Grab(id, r2.Sub(g.Position, in.Pointer))
			ev.DragStarted = id
			ctl.Logger.Interaction("drag started", "gate", id, "offset", s.DragOffset)
		}
	}
	if !s.Dragging() {
		return
	}

	g, _ := c.Gate(s.DragGate)
	pos := ctl.Snap(r2.Add(in.Pointer, s.DragOffset))
	if pos != g.Position {
		_ = c.MoveGate(g.ID, pos)
		ev.Moved = true
	}

	if in.Left.Released {
		ev.DragEnded = s.DragGate
		ctl.Logger.Interaction("drag ended", "gate", s.DragGate, "position", pos)
		s.Drop()
	}
}

// Snap rounds p to the nearest grid point when a grid is set
func (ctl *Controller) Snap(p r2.Vec) r2.Vec {
	if ctl.Grid <= 0 {
		return p
	}
	return r2.Vec{
		X: math.Round(p.X/ctl.Grid) * ctl.Grid,
		Y: math.Round(p.Y/ctl.Grid) * ctl.Grid,
	}
}
