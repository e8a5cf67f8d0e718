// Package button turns raw transitions of the input line into debounced
// press/release events.
package button

import (
	"sync/atomic"
	"time"

	"reflex/internal/hardware"
)

// Detector recognizes at most one press or release edge per physical
// transition of the button line. OnChange runs on the producer side (the
// panel's key handler, standing in for the pin-change interrupt); the game
// loop is the only consumer and the only clearer of the edge flags.
type Detector struct {
	line     hardware.Line
	buzzer   hardware.Buzzer
	debounce time.Duration

	// Sleep waits out the debounce window. Tests replace it to run
	// transitions instantly.
	Sleep func(time.Duration)

	level    atomic.Bool // debounced level, true while pressed
	pressed  atomic.Bool
	released atomic.Bool

	suppressPress atomic.Bool // result screen ignores presses
	penaltyArmed  atomic.Bool // countdown: a held button sounds the buzzer
}

// New returns a Detector for an active-low line.
func New(line hardware.Line, buzzer hardware.Buzzer, debounce time.Duration) *Detector {
	return &Detector{
		line:     line,
		buzzer:   buzzer,
		debounce: debounce,
		Sleep:    time.Sleep,
	}
}

// OnChange handles one raw transition of the line. It waits out the
// debounce window, samples the settled level, and compares it against the
// previous debounced level, so contact bounce inside the window cannot
// double-fire an edge.
func (d *Detector) OnChange() {
	d.Sleep(d.debounce)

	pressed := !d.line.Read() // pull-up: low means pressed
	prev := d.level.Load()

	if pressed && !prev && !d.suppressPress.Load() {
		d.pressed.Store(true)
	}
	if !pressed && prev {
		d.released.Store(true)
	}
	d.level.Store(pressed)

	// False-start feedback must not wait for the game loop's next tick.
	d.buzzer.Set(d.PenaltyActive())
}

// Level reports the current debounced level.
func (d *Detector) Level() bool {
	return d.level.Load()
}

// TakePress consumes a pending press edge, clearing it.
func (d *Detector) TakePress() bool {
	return d.pressed.Swap(false)
}

// TakeRelease consumes a pending release edge, clearing it.
func (d *Detector) TakeRelease() bool {
	return d.released.Swap(false)
}

// ClearEdges discards any pending edges. State entries call this so a
// press meant for the previous screen does not leak into the next one.
func (d *Detector) ClearEdges() {
	d.pressed.Store(false)
	d.released.Store(false)
}

// SetSuppressPress controls whether new press edges are recognized.
func (d *Detector) SetSuppressPress(on bool) {
	d.suppressPress.Store(on)
}

// SetPenaltyArmed marks the countdown phase, during which a held button
// sounds the buzzer.
func (d *Detector) SetPenaltyArmed(on bool) {
	d.penaltyArmed.Store(on)
}

// PenaltyActive reports whether the penalty buzz condition holds.
func (d *Detector) PenaltyActive() bool {
	return d.penaltyArmed.Load() && d.level.Load()
}
