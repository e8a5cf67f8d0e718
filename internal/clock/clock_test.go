package clock

import (
	"testing"
	"time"

	"reflex/internal/button"
)

type fakeLine struct {
	high bool
}

func (l *fakeLine) Read() bool { return l.high }

type fakeBuzzer struct {
	on bool
}

func (b *fakeBuzzer) Set(on bool) { b.on = on }

func newTestClock() (*Clock, *fakeLine, *fakeBuzzer, *button.Detector) {
	line := &fakeLine{high: true}
	buzzer := &fakeBuzzer{}
	det := button.New(line, buzzer, 10*time.Millisecond)
	det.Sleep = func(time.Duration) {}
	c := New(det, buzzer)
	c.Sleep = func(time.Duration) {}
	return c, line, buzzer, det
}

func TestWaitRunsFullDuration(t *testing.T) {
	c, _, _, _ := newTestClock()
	ticks := 0
	c.Sleep = func(time.Duration) { ticks++ }

	c.Wait(250)
	if ticks != 250 {
		t.Fatalf("expected 250 ticks, got %d", ticks)
	}
}

func TestWaitUntilCancels(t *testing.T) {
	c, _, _, _ := newTestClock()
	ticks := 0
	c.Sleep = func(time.Duration) { ticks++ }

	elapsed, canceled := c.WaitUntil(1000, func() bool { return ticks >= 100 })
	if !canceled {
		t.Fatalf("expected cancellation")
	}
	if elapsed != 100 {
		t.Fatalf("expected 100 elapsed ticks, got %d", elapsed)
	}
}

func TestWaitUntilTimesOut(t *testing.T) {
	c, _, _, _ := newTestClock()

	elapsed, canceled := c.WaitUntil(50, func() bool { return false })
	if canceled {
		t.Fatalf("expected timeout, not cancellation")
	}
	if elapsed != 50 {
		t.Fatalf("expected 50 elapsed ticks, got %d", elapsed)
	}
}

func TestAdvanceDrivesAlarmBuzzer(t *testing.T) {
	c, _, buzzer, _ := newTestClock()

	c.SetAlarm(true)
	c.Advance()
	if !buzzer.on {
		t.Fatalf("expected buzzer on while alarm is set")
	}

	c.SetAlarm(false)
	c.Advance()
	if buzzer.on {
		t.Fatalf("expected buzzer off after alarm clears")
	}
}

func TestAdvanceDrivesPenaltyBuzzer(t *testing.T) {
	c, line, buzzer, det := newTestClock()

	det.SetPenaltyArmed(true)
	line.high = false
	det.OnChange()
	buzzer.on = false // let the tick loop re-assert it

	c.Advance()
	if !buzzer.on {
		t.Fatalf("expected buzzer re-asserted by the tick loop")
	}

	det.SetPenaltyArmed(false)
	c.Advance()
	if buzzer.on {
		t.Fatalf("expected buzzer off once countdown ends")
	}
}
