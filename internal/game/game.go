// Package game implements the reaction-game state machine. The controller
// is the sole writer of game-visible state and the sole caller into the
// score ledger; it observes the world only through the edge detector and
// the reaction clock, so every pause stays cancellable by a button edge.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"reflex/internal/button"
	"reflex/internal/clock"
	"reflex/internal/hardware"
	"reflex/internal/model"
	"reflex/internal/score"
)

// State identifies a node of the game state machine.
type State int

// Machine states. Idle is initial; GameOver and Lose both loop back to it.
const (
	Idle State = iota
	DifficultySelect
	Countdown
	GreenLight
	RoundResult
	Lose
	GameOver
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DifficultySelect:
		return "difficulty-select"
	case Countdown:
		return "countdown"
	case GreenLight:
		return "green-light"
	case RoundResult:
		return "round-result"
	case Lose:
		return "lose"
	case GameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Config carries the gameplay constants. The reaction windows are the
// difficulty table; everything is overridable from the TOML file.
type Config struct {
	Rounds         int
	Windows        map[model.Difficulty]int
	CompensationMs int
	ConfirmHoldMs  int
	HoldGraceMs    int
	RestartHoldMs  int
	ResultPauseMs  int
	CountdownMinMs int
	CountdownMaxMs int
	TimeoutBuzzMs  int
	TimeoutPauseMs int
}

// DefaultConfig returns the constants the original device shipped with.
func DefaultConfig() Config {
	return Config{
		Rounds: 5,
		Windows: map[model.Difficulty]int{
			model.Easy:   3000,
			model.Medium: 1500,
			model.Hard:   500,
		},
		CompensationMs: 90,
		ConfirmHoldMs:  2000,
		HoldGraceMs:    300,
		RestartHoldMs:  3000,
		ResultPauseMs:  3000,
		CountdownMinMs: 1000,
		CountdownMaxMs: 3000,
		TimeoutBuzzMs:  500,
		TimeoutPauseMs: 1500,
	}
}

// Validate rejects configurations the state machine cannot run with.
func (c Config) Validate() error {
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be > 0")
	}
	for _, d := range model.Difficulties {
		if c.Windows[d] <= 0 {
			return fmt.Errorf("%s reaction window must be > 0", d)
		}
	}
	if c.CountdownMinMs <= 0 || c.CountdownMaxMs <= c.CountdownMinMs {
		return fmt.Errorf("countdown bounds must satisfy 0 < min < max")
	}
	if c.ConfirmHoldMs <= c.HoldGraceMs {
		return fmt.Errorf("confirm hold must exceed the grace period")
	}
	return nil
}

// Archive records completed games. The history store satisfies it; a nil
// archive disables recording.
type Archive interface {
	InsertGame(ctx context.Context, stats model.GameStats) (int64, error)
}

// Game owns the state machine and all game-visible mutable state.
type Game struct {
	cfg     Config
	display hardware.Display
	lamp    hardware.Lamp
	det     *button.Detector
	clock   *clock.Clock
	ledger  *score.Ledger
	archive Archive
	rng     *rand.Rand

	state   State
	session *session
}

// New wires a controller. rng drives the countdown delay; seed it from
// config so runs can be deterministic.
func New(cfg Config, display hardware.Display, lamp hardware.Lamp, det *button.Detector, clk *clock.Clock, ledger *score.Ledger, archive Archive, rng *rand.Rand) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return &Game{
		cfg:     cfg,
		display: display,
		lamp:    lamp,
		det:     det,
		clock:   clk,
		ledger:  ledger,
		archive: archive,
		rng:     rng,
		state:   Idle,
	}, nil
}

// State reports the current machine state.
func (g *Game) State() State {
	return g.state
}

// Run drives the state machine until the context is canceled.
func (g *Game) Run(ctx context.Context) {
	for ctx.Err() == nil {
		g.step(ctx)
	}
}

func (g *Game) step(ctx context.Context) {
	switch g.state {
	case Idle:
		g.stepIdle(ctx)
	case DifficultySelect:
		g.stepDifficultySelect(ctx)
	case Countdown:
		g.stepCountdown(ctx)
	case GreenLight:
		g.stepGreenLight(ctx)
	case RoundResult:
		g.stepRoundResult(ctx)
	case Lose:
		g.stepLose(ctx)
	case GameOver:
		g.stepGameOver(ctx)
	}
}

// waitUntil runs the clock's tick loop with the context folded into the
// cancellation predicate. Callers must check ctx before interpreting a
// cancellation as a button edge.
func (g *Game) waitUntil(ctx context.Context, ms int, cancel func() bool) (int, bool) {
	return g.clock.WaitUntil(ms, func() bool {
		if ctx.Err() != nil {
			return true
		}
		return cancel != nil && cancel()
	})
}

// pause waits out ms milliseconds, interruptible only by shutdown.
func (g *Game) pause(ctx context.Context, ms int) {
	g.waitUntil(ctx, ms, nil)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
