// Package clock provides the cooperative millisecond tick loop behind
// every pause in the game. There is no bare sleep in the core: each wait
// is a run of one-millisecond advances with a per-tick cancellation check,
// which keeps the whole machine responsive to button edges.
package clock

import (
	"sync/atomic"
	"time"

	"reflex/internal/button"
	"reflex/internal/hardware"
)

// Clock accumulates elapsed time in whole-millisecond ticks and
// re-evaluates the buzzer on every tick: the penalty condition owned by
// the detector, or the timeout alarm owned by the game loop.
type Clock struct {
	tick   time.Duration
	det    *button.Detector
	buzzer hardware.Buzzer
	alarm  atomic.Bool

	// Sleep consumes one tick of wall time. Tests replace it to run
	// scripted games instantly.
	Sleep func(time.Duration)
}

// New returns a Clock ticking in real one-millisecond steps.
func New(det *button.Detector, buzzer hardware.Buzzer) *Clock {
	return &Clock{
		tick:   time.Millisecond,
		det:    det,
		buzzer: buzzer,
		Sleep:  time.Sleep,
	}
}

// Advance consumes roughly one millisecond of wall time and refreshes the
// buzzer sink.
func (c *Clock) Advance() {
	c.Sleep(c.tick)
	c.buzzer.Set(c.det.PenaltyActive() || c.alarm.Load())
}

// Wait advances for ms milliseconds without a cancellation condition.
func (c *Clock) Wait(ms int) {
	c.WaitUntil(ms, nil)
}

// WaitUntil advances until ms milliseconds have elapsed or cancel returns
// true, whichever fires first. The predicate is evaluated once per tick,
// never preemptively. It reports the ticks consumed and whether the
// cancellation fired.
func (c *Clock) WaitUntil(ms int, cancel func() bool) (elapsed int, canceled bool) {
	for elapsed < ms {
		if cancel != nil && cancel() {
			return elapsed, true
		}
		c.Advance()
		elapsed++
	}
	return elapsed, false
}

// SetAlarm asserts or clears the timeout alarm picked up on each tick.
// The game loop is the sole writer.
func (c *Clock) SetAlarm(on bool) {
	c.alarm.Store(on)
}
