package gridmap

import (
	"math"

	"github.com/m-marini/wheelly/internal/geom"
)

// Cell is the per-cell evidence accumulator. Cells are value types: every
// mutation returns a new Cell rather than mutating in place.
type Cell struct {
	Location      geom.Point
	EchoTime      int64
	EchoWeight    float64
	ContactTime   int64
	LabeledTime   int64
	LabeledWeight float64
}

// NewCell returns an empty (unknown) cell centred at location.
func NewCell(location geom.Point) Cell {
	return Cell{Location: location}
}

// Unknown reports whether the cell has never received echo or contact
// evidence.
func (c Cell) Unknown() bool {
	return c.EchoTime == 0 && c.ContactTime == 0
}

// Anechoic reports whether the accumulated evidence favours "no obstacle".
func (c Cell) Anechoic() bool {
	return c.EchoWeight < 0
}

// Echogenic reports whether the accumulated evidence favours "obstacle
// present".
func (c Cell) Echogenic() bool {
	return c.EchoWeight > 0
}

// Labeled reports whether the accumulated evidence favours "fiducial
// marker present".
func (c Cell) Labeled() bool {
	return c.LabeledWeight > 0
}

// decay applies the exponential evidence update w <- w*gamma + s*(1-gamma)
// with gamma = exp(-dt/tau), clamping the result into [-1,1].
func decay(w float64, dtMillis int64, tau float64, sign float64) float64 {
	if dtMillis < 0 {
		dtMillis = 0
	}
	gamma := math.Exp(-float64(dtMillis) / tau)
	next := w*gamma + sign*(1-gamma)
	if next > 1 {
		next = 1
	}
	if next < -1 {
		next = -1
	}
	return next
}

// AddEchogenic records an echo at time t with decay constant tau,
// returning the updated cell.
func (c Cell) AddEchogenic(t int64, tau float64) Cell {
	next := c
	next.EchoWeight = decay(c.EchoWeight, t-c.EchoTime, tau, 1)
	next.EchoTime = t
	return next
}

// AddAnechoic records the absence of an echo at time t with decay
// constant tau, returning the updated cell.
func (c Cell) AddAnechoic(t int64, tau float64) Cell {
	next := c
	next.EchoWeight = decay(c.EchoWeight, t-c.EchoTime, tau, -1)
	next.EchoTime = t
	return next
}

// AddContact records a contact event at time t.
func (c Cell) AddContact(t int64) Cell {
	next := c
	next.ContactTime = t
	return next
}

// AddLabeled records labeled-fiducial evidence at time t with decay
// constant tau and sign (+1 confirmed, -1 evicted).
func (c Cell) AddLabeled(t int64, tau float64, sign float64) Cell {
	next := c
	next.LabeledWeight = decay(c.LabeledWeight, t-c.LabeledTime, tau, sign)
	next.LabeledTime = t
	if next.LabeledWeight == 0 {
		next.LabeledTime = 0
	}
	return next
}

// CleanEcho erases echo evidence (used by RadarMap.Clean when echo evidence
// has aged past echoPersistence).
func (c Cell) CleanEcho() Cell {
	next := c
	next.EchoTime = 0
	next.EchoWeight = 0
	return next
}

// CleanContact erases contact evidence (used by RadarMap.Clean when contact
// evidence has aged past contactPersistence).
func (c Cell) CleanContact() Cell {
	next := c
	next.ContactTime = 0
	return next
}
