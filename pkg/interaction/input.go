package interaction

import "gonum.org/v1/gonum/spatial/r2"

// Button carries the transition edges of one mouse button for a tick
type Button struct {
	Pressed  bool // Went down this tick
	Held     bool // Is down
	Released bool // Went up this tick
}

// Input is everything the controller reads from the pointer for one tick.
// Pointer is in the same world coordinates as node and gate positions.
type Input struct {
	Pointer r2.Vec
	Left    Button
	Right   Button
	Middle  Button
}

// At returns an input with the pointer at p and no button activity
func At(p r2.Vec) Input {
	return Input{Pointer: p}
}

// Press returns a button that went down this tick
func Press() Button {
	return Button{Pressed: true, Held: true}
}

// Hold returns a button that stays down
func Hold() Button {
	return Button{Held: true}
}

// Release returns a button that went up this tick
func Release() Button {
	return Button{Released: true}
}

// Sample derives a button's transition edges from whether it was down on
// the previous tick and whether it is down now
func Sample(wasHeld, held bool) Button {
	return Button{
		Pressed:  held && !wasHeld,
		Held:     held,
		Released: wasHeld && !held,
	}
}
