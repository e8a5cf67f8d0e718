package button

import (
	"testing"
	"time"
)

type fakeLine struct {
	high bool
}

func (l *fakeLine) Read() bool { return l.high }

type fakeBuzzer struct {
	on bool
}

func (b *fakeBuzzer) Set(on bool) { b.on = on }

func newTestDetector() (*Detector, *fakeLine, *fakeBuzzer) {
	line := &fakeLine{high: true}
	buzzer := &fakeBuzzer{}
	d := New(line, buzzer, 10*time.Millisecond)
	d.Sleep = func(time.Duration) {}
	return d, line, buzzer
}

func TestPressEdgeFiresOncePerTransition(t *testing.T) {
	d, line, _ := newTestDetector()

	line.high = false
	// Contact bounce: several raw transitions settle on the same level.
	for i := 0; i < 5; i++ {
		d.OnChange()
	}

	if !d.TakePress() {
		t.Fatalf("expected a press edge")
	}
	if d.TakePress() {
		t.Fatalf("expected exactly one press edge")
	}
	if !d.Level() {
		t.Fatalf("expected debounced level to be pressed")
	}
}

func TestReleaseEdgeFiresOncePerTransition(t *testing.T) {
	d, line, _ := newTestDetector()

	line.high = false
	d.OnChange()
	d.ClearEdges()

	line.high = true
	for i := 0; i < 5; i++ {
		d.OnChange()
	}

	if !d.TakeRelease() {
		t.Fatalf("expected a release edge")
	}
	if d.TakeRelease() {
		t.Fatalf("expected exactly one release edge")
	}
	if d.Level() {
		t.Fatalf("expected debounced level to be released")
	}
}

func TestBounceAcrossBothLevelsYieldsOneEdgeEach(t *testing.T) {
	d, line, _ := newTestDetector()

	// Press with bounce, then release with bounce.
	for _, high := range []bool{false, false, false, true, true} {
		line.high = high
		d.OnChange()
	}

	if !d.TakePress() {
		t.Fatalf("expected one press edge")
	}
	if !d.TakeRelease() {
		t.Fatalf("expected one release edge")
	}
	if d.TakePress() || d.TakeRelease() {
		t.Fatalf("expected no further edges")
	}
}

func TestSuppressPressDropsEdgeButTracksLevel(t *testing.T) {
	d, line, _ := newTestDetector()
	d.SetSuppressPress(true)

	line.high = false
	d.OnChange()

	if d.TakePress() {
		t.Fatalf("expected press edge to be suppressed")
	}
	if !d.Level() {
		t.Fatalf("expected level to track the line despite suppression")
	}

	// Release edges are never suppressed.
	line.high = true
	d.OnChange()
	if !d.TakeRelease() {
		t.Fatalf("expected release edge during suppression")
	}
}

func TestPenaltyBuzzerFollowsHeldButton(t *testing.T) {
	d, line, buzzer := newTestDetector()
	d.SetPenaltyArmed(true)

	line.high = false
	d.OnChange()
	if !buzzer.on {
		t.Fatalf("expected buzzer on while pressed during countdown")
	}
	if !d.PenaltyActive() {
		t.Fatalf("expected penalty condition to hold")
	}

	line.high = true
	d.OnChange()
	if buzzer.on {
		t.Fatalf("expected buzzer off after release")
	}

	d.SetPenaltyArmed(false)
	line.high = false
	d.OnChange()
	if buzzer.on {
		t.Fatalf("expected no buzz when penalty is not armed")
	}
}
