package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"reflex/internal/button"
	"reflex/internal/clock"
	"reflex/internal/eeprom"
	"reflex/internal/model"
	"reflex/internal/score"
)

type fakeLine struct {
	high bool
}

func (l *fakeLine) Read() bool { return l.high }

type fakeBuzzer struct {
	on      bool
	timesOn int
}

func (b *fakeBuzzer) Set(on bool) {
	if on && !b.on {
		b.timesOn++
	}
	b.on = on
}

type fakeLamp struct {
	r, g, b uint8
}

func (l *fakeLamp) SetRGB(r, g, b uint8) {
	l.r, l.g, l.b = r, g, b
}

type fakeDisplay struct {
	lines []string
}

func (d *fakeDisplay) Clear()               {}
func (d *fakeDisplay) SetCursor(_, _ int)   {}
func (d *fakeDisplay) Printf(format string, args ...any) {
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

func (d *fakeDisplay) contains(s string) bool {
	for _, line := range d.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

type fakeArchive struct {
	games []model.GameStats
}

func (a *fakeArchive) InsertGame(_ context.Context, stats model.GameStats) (int64, error) {
	a.games = append(a.games, stats)
	return int64(len(a.games)), nil
}

// action flips the line at a tick counted from entry into a state. Each
// action fires once; at most one fires per tick.
type action struct {
	state State
	tick  int
	high  bool
	done  bool
}

type harness struct {
	g       *Game
	line    *fakeLine
	det     *button.Detector
	clk     *clock.Clock
	buzzer  *fakeBuzzer
	lamp    *fakeLamp
	display *fakeDisplay
	ledger  *score.Ledger
	archive *fakeArchive

	actions   []action
	lastState State
	stateTick int
}

func newHarness(t *testing.T, actions []action) *harness {
	t.Helper()
	h := &harness{
		line:    &fakeLine{high: true},
		buzzer:  &fakeBuzzer{},
		lamp:    &fakeLamp{},
		display: &fakeDisplay{},
		archive: &fakeArchive{},
		actions: actions,
	}
	h.det = button.New(h.line, h.buzzer, 10*time.Millisecond)
	h.det.Sleep = func(time.Duration) {}
	h.clk = clock.New(h.det, h.buzzer)
	h.clk.Sleep = func(time.Duration) { h.onTick() }

	ledger, err := score.NewLedger(eeprom.NewMemory(eeprom.DefaultSize), score.DefaultSchema())
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	if err := ledger.Initialize(); err != nil {
		t.Fatalf("failed to initialize ledger: %v", err)
	}
	h.ledger = ledger

	rng := rand.New(rand.NewSource(42))
	g, err := New(DefaultConfig(), h.display, h.lamp, h.det, h.clk, ledger, h.archive, rng)
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}
	h.g = g
	h.lastState = g.state
	return h
}

func (h *harness) onTick() {
	if h.g.state != h.lastState {
		h.lastState = h.g.state
		h.stateTick = 0
	}
	h.stateTick++
	for i := range h.actions {
		a := &h.actions[i]
		if !a.done && a.state == h.g.state && a.tick == h.stateTick {
			a.done = true
			h.line.high = a.high
			h.det.OnChange()
			break
		}
	}
}

func TestIdlePressEntersDifficultySelect(t *testing.T) {
	h := newHarness(t, []action{
		{state: Idle, tick: 10, high: false},
	})

	h.g.step(context.Background())
	if h.g.state != DifficultySelect {
		t.Fatalf("expected difficulty-select, got %s", h.g.state)
	}
	if !h.display.contains("Press Button to Start") {
		t.Fatalf("expected welcome screen")
	}
}

func TestDifficultySelectCyclesOnReleaseAndConfirmsOnHold(t *testing.T) {
	h := newHarness(t, []action{
		{state: DifficultySelect, tick: 20, high: false},
		{state: DifficultySelect, tick: 70, high: true},  // tap: cycles to MEDIUM
		{state: DifficultySelect, tick: 120, high: false}, // hold to confirm
	})
	h.g.state = DifficultySelect

	h.g.step(context.Background())
	if h.g.state != Countdown {
		t.Fatalf("expected countdown, got %s", h.g.state)
	}
	if h.g.session == nil {
		t.Fatalf("expected session after confirmation")
	}
	if h.g.session.difficulty != model.Medium {
		t.Fatalf("expected MEDIUM selected, got %s", h.g.session.difficulty)
	}
	if h.g.session.windowMs != 1500 {
		t.Fatalf("expected 1500 ms window, got %d", h.g.session.windowMs)
	}
	if h.g.session.round != 1 {
		t.Fatalf("expected round 1, got %d", h.g.session.round)
	}
	if !h.display.contains("> MEDIUM <") {
		t.Fatalf("expected selection display to cycle")
	}
}

func TestReleaseBeforeConfirmResetsHold(t *testing.T) {
	h := newHarness(t, []action{
		{state: DifficultySelect, tick: 150, high: false},
		{state: DifficultySelect, tick: 1200, high: true}, // released after ~1s of hold
		{state: DifficultySelect, tick: 1400, high: false},
	})
	h.g.state = DifficultySelect

	h.g.step(context.Background())
	// The aborted hold cycled the selection on release; the second hold
	// confirmed MEDIUM, proving the timer restarted from zero.
	if h.g.session == nil || h.g.session.difficulty != model.Medium {
		t.Fatalf("expected MEDIUM confirmed by the second hold")
	}
}

func TestCountdownFalseStartLoses(t *testing.T) {
	h := newHarness(t, []action{
		{state: Countdown, tick: 50, high: false},
	})
	h.g.state = Countdown
	h.g.session = newSession(model.Easy, 3000, 5)

	h.g.step(context.Background())
	if h.g.state != Lose {
		t.Fatalf("expected lose after false start, got %s", h.g.state)
	}
	if !h.buzzer.on {
		t.Fatalf("expected penalty buzz while button is held during red")
	}

	// Lose waits for a fresh press, then discards the session.
	h.actions = append(h.actions,
		action{state: Lose, tick: 30, high: true},
		action{state: Lose, tick: 80, high: false},
	)
	h.g.step(context.Background())
	if h.g.state != Idle {
		t.Fatalf("expected idle after lose acknowledgment, got %s", h.g.state)
	}
	if h.g.session != nil {
		t.Fatalf("expected session discarded on return to idle")
	}
	if !h.display.contains("YOU LOSE!") {
		t.Fatalf("expected lose screen")
	}
}

func TestGreenLightTimeoutIsImmediateLoss(t *testing.T) {
	h := newHarness(t, nil)
	h.g.state = GreenLight
	h.g.session = newSession(model.Hard, 500, 5)

	h.g.step(context.Background())
	if h.g.state != Idle {
		t.Fatalf("expected idle after timeout, got %s", h.g.state)
	}
	if h.g.session != nil {
		t.Fatalf("expected session discarded after timeout")
	}
	if !h.display.contains("Too slow!") {
		t.Fatalf("expected timeout screen")
	}
	if h.buzzer.timesOn == 0 {
		t.Fatalf("expected audible timeout penalty")
	}
	if h.buzzer.on {
		t.Fatalf("expected buzzer silent after the alert window")
	}
}

func TestRoundResultSuppressesPressesAndAdvances(t *testing.T) {
	h := newHarness(t, []action{
		{state: RoundResult, tick: 100, high: false},
		{state: RoundResult, tick: 200, high: true},
	})
	h.g.state = RoundResult
	h.g.session = newSession(model.Easy, 3000, 5)
	h.g.session.record(250)

	h.g.step(context.Background())
	if h.g.state != Countdown {
		t.Fatalf("expected countdown for round 2, got %s", h.g.state)
	}
	if h.g.session.round != 2 {
		t.Fatalf("expected round 2, got %d", h.g.session.round)
	}
	if h.det.TakePress() {
		t.Fatalf("expected press during result window to be discarded")
	}
	if !h.display.contains("Great!") {
		t.Fatalf("expected feedback band for 250 ms")
	}
}

func TestRoundResultAfterLastRoundGoesToGameOver(t *testing.T) {
	h := newHarness(t, nil)
	h.g.state = RoundResult
	h.g.session = newSession(model.Easy, 3000, 5)
	for i := 0; i < 5; i++ {
		h.g.session.record(300)
	}
	h.g.session.round = 5

	h.g.step(context.Background())
	if h.g.state != GameOver {
		t.Fatalf("expected game over after round 5, got %s", h.g.state)
	}
}

func TestFullEasyGame(t *testing.T) {
	actions := []action{}
	for _, raw := range []int{100, 300, 500, 700, 900} {
		actions = append(actions, action{state: GreenLight, tick: raw, high: false})
		actions = append(actions, action{state: RoundResult, tick: 50, high: true})
	}
	actions = append(actions,
		action{state: GameOver, tick: 100, high: false}, // tap
		action{state: GameOver, tick: 200, high: true},
		action{state: GameOver, tick: 300, high: false}, // hold to restart
	)
	h := newHarness(t, actions)
	h.g.state = Countdown
	h.g.session = newSession(model.Easy, 3000, 5)

	ctx := context.Background()
	for i := 0; i < 100 && h.g.state != Idle; i++ {
		h.g.step(ctx)
	}
	if h.g.state != Idle {
		t.Fatalf("expected game to return to idle, got %s", h.g.state)
	}
	if h.g.session != nil {
		t.Fatalf("expected session discarded after game over")
	}

	for i, want := range []uint16{190, 390, 590, 790, 990} {
		if !h.display.contains(fmt.Sprintf("Round %d: %d ms", i+1, want)) {
			t.Fatalf("expected compensated time %d ms for round %d", want, i+1)
		}
	}
	for _, band := range []string{"Amazing!", "Great!", "Good!", "Eh!", "Yea ur bad"} {
		if !h.display.contains(band) {
			t.Fatalf("expected feedback band %q", band)
		}
	}
	if !h.display.contains("Average Time: 590 ms") {
		t.Fatalf("expected average of 590 ms")
	}

	scores, err := h.ledger.Read(model.Easy)
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}
	if scores[0] != 590 {
		t.Fatalf("expected 590 at the top of the ledger, got %v", scores)
	}

	if len(h.archive.games) != 1 {
		t.Fatalf("expected one archived game, got %d", len(h.archive.games))
	}
	got := h.archive.games[0]
	if got.AverageMs != 590 || got.Difficulty != model.Easy {
		t.Fatalf("unexpected archived game: %+v", got)
	}
	for i, want := range []uint16{190, 390, 590, 790, 990} {
		if got.Rounds[i] != want {
			t.Fatalf("expected archived round %d to be %d, got %d", i+1, want, got.Rounds[i])
		}
	}
}

func TestFeedbackBands(t *testing.T) {
	cases := []struct {
		ms   uint16
		want string
	}{
		{0, "Amazing!"},
		{199, "Amazing!"},
		{200, "Great!"},
		{399, "Great!"},
		{400, "Good!"},
		{599, "Good!"},
		{600, "Eh!"},
		{799, "Eh!"},
		{800, "Yea ur bad"},
		{2000, "Yea ur bad"},
	}
	for _, c := range cases {
		if got := feedback(c.ms); got != c.want {
			t.Fatalf("feedback(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Windows[model.Hard] = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero window to be rejected")
	}

	cfg = DefaultConfig()
	cfg.CountdownMaxMs = cfg.CountdownMinMs
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected degenerate countdown bounds to be rejected")
	}
}
