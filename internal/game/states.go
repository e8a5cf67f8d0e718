package game

import (
	"context"
	"time"

	"reflex/internal/hardware"
	"reflex/internal/model"
)

// readyPauseMs is how long the post-confirmation "Get ready!" screen
// holds before round one.
const readyPauseMs = 2000

func (g *Game) stepIdle(ctx context.Context) {
	g.session = nil
	g.det.SetPenaltyArmed(false)
	g.det.SetSuppressPress(false)

	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("Welcome!")
	g.display.SetCursor(1, 1)
	g.display.Printf("Press Button to Start")
	g.display.SetCursor(2, 2)
	g.display.Printf("%d-Round Challenge!", g.cfg.Rounds)

	g.det.ClearEdges()
	for ctx.Err() == nil {
		if g.idleRainbow(ctx) {
			g.state = DifficultySelect
			g.det.ClearEdges()
			return
		}
	}
}

// idleRainbow sweeps the lamp through the color wheel in 5 ms steps.
// Reports whether a press interrupted the sweep.
func (g *Game) idleRainbow(ctx context.Context) bool {
	phases := []func(i uint8) (r, gr, b uint8){
		func(i uint8) (uint8, uint8, uint8) { return i, 0, 255 - i },
		func(i uint8) (uint8, uint8, uint8) { return 255 - i, i, 0 },
		func(i uint8) (uint8, uint8, uint8) { return 0, 255 - i, i },
		func(i uint8) (uint8, uint8, uint8) { return i, 0, 255 - i },
	}
	for _, phase := range phases {
		for i := 0; i < 256; i++ {
			r, gr, b := phase(uint8(i))
			g.lamp.SetRGB(r, gr, b)
			if _, canceled := g.waitUntil(ctx, 5, g.det.TakePress); canceled {
				return ctx.Err() == nil
			}
		}
	}
	return false
}

func (g *Game) stepDifficultySelect(ctx context.Context) {
	g.pause(ctx, 100)

	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("Choose Difficulty:")
	g.display.SetCursor(2, 2)
	g.display.Printf("Press to cycle")
	hardware.Yellow.Apply(g.lamp)

	selection := model.Easy
	g.showSelection(selection)

	holdMs := 0
	for {
		if ctx.Err() != nil {
			return
		}

		// Cycle on release, not press, so a confirm hold cannot skip
		// options on its way down.
		if g.det.TakeRelease() {
			selection = selection.Next()
			g.showSelection(selection)
		}

		if g.det.Level() {
			holdMs += 10
			if holdMs > g.cfg.HoldGraceMs && holdMs%100 == 0 {
				g.display.SetCursor(3, 3)
				g.display.Printf("Hold to confirm:%d%%", holdProgress(holdMs, g.cfg.HoldGraceMs, g.cfg.ConfirmHoldMs))
			}
			if holdMs >= g.cfg.ConfirmHoldMs {
				break
			}
		} else {
			holdMs = 0
			g.display.SetCursor(3, 3)
			g.display.Printf("                    ")
		}

		g.pause(ctx, 10)
	}

	windowMs := g.cfg.Windows[selection]
	g.pause(ctx, 135)

	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("%s MODE", selection)
	g.display.SetCursor(1, 1)
	g.display.Printf("%g sec to respond", float64(windowMs)/1000)
	g.display.SetCursor(3, 3)
	g.display.Printf("Get ready!")
	g.pause(ctx, readyPauseMs)

	g.session = newSession(selection, windowMs, g.cfg.Rounds)
	g.state = Countdown
	g.det.ClearEdges()
}

func (g *Game) showSelection(d model.Difficulty) {
	g.display.SetCursor(1, 1)
	g.display.Printf("> %s <    ", d)
}

// holdProgress maps accumulated hold time past the grace period onto
// 0-100.
func holdProgress(holdMs, graceMs, confirmMs int) int {
	span := confirmMs - graceMs
	p := (holdMs - graceMs) * 100 / span
	if p > 100 {
		p = 100
	}
	return p
}

func (g *Game) stepCountdown(ctx context.Context) {
	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("Round %d of %d", g.session.round, g.cfg.Rounds)
	g.display.SetCursor(1, 1)
	g.display.Printf("Wait for GREEN light!")
	hardware.Red.Apply(g.lamp)

	// A press anywhere in here is a false start; the detector sounds the
	// buzzer the moment the level goes down.
	g.det.SetPenaltyArmed(true)
	delay := g.cfg.CountdownMinMs + g.rng.Intn(g.cfg.CountdownMaxMs-g.cfg.CountdownMinMs)
	_, pressed := g.waitUntil(ctx, delay, g.det.TakePress)
	g.det.SetPenaltyArmed(false)

	if ctx.Err() != nil {
		return
	}
	if pressed {
		g.state = Lose
		return
	}
	g.state = GreenLight
	g.det.ClearEdges()
}

func (g *Game) stepGreenLight(ctx context.Context) {
	hardware.Green.Apply(g.lamp)
	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("GREEN! Press button!")

	elapsed, pressed := g.waitUntil(ctx, g.session.windowMs, g.det.TakePress)
	if ctx.Err() != nil {
		return
	}

	if pressed {
		compensated := uint16(elapsed + g.cfg.CompensationMs)
		g.session.record(compensated)
		g.state = RoundResult
		return
	}

	// Timeout is an immediate loss, not a retryable round.
	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("Too slow!")
	g.display.SetCursor(1, 1)
	g.display.Printf("You lose!")
	hardware.Red.Apply(g.lamp)

	g.clock.SetAlarm(true)
	g.pause(ctx, g.cfg.TimeoutBuzzMs)
	g.clock.SetAlarm(false)
	g.pause(ctx, g.cfg.TimeoutPauseMs)

	g.session = nil
	g.state = Idle
	g.det.ClearEdges()
}

func (g *Game) stepRoundResult(ctx context.Context) {
	// Presses during the result window belong to nobody; suppress them at
	// the detector so they cannot leak into the next countdown.
	g.det.SetSuppressPress(true)

	last := g.session.lastRecord()
	hardware.Blue.Apply(g.lamp)
	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("Round %d: %d ms", g.session.round, last)
	g.display.SetCursor(1, 1)
	g.display.Printf("%s", feedback(last))

	g.pause(ctx, g.cfg.ResultPauseMs)

	g.det.SetSuppressPress(false)
	g.det.ClearEdges()
	if ctx.Err() != nil {
		return
	}

	if g.session.round >= g.cfg.Rounds {
		g.state = GameOver
		return
	}
	g.session.round++
	g.state = Countdown
}

func (g *Game) stepLose(ctx context.Context) {
	g.display.Clear()
	g.display.SetCursor(0, 0)
	g.display.Printf("YOU LOSE!")
	g.display.SetCursor(1, 1)
	g.display.Printf("Pressed during RED")
	g.display.SetCursor(3, 3)
	g.display.Printf("Press button")
	g.display.SetCursor(4, 4)
	g.display.Printf("to try again")
	hardware.Red.Apply(g.lamp)

	g.det.ClearEdges()
	for ctx.Err() == nil {
		if _, canceled := g.waitUntil(ctx, 100, g.det.TakePress); canceled && ctx.Err() == nil {
			break
		}
	}

	g.session = nil
	g.state = Idle
	g.det.ClearEdges()
}

func (g *Game) stepGameOver(ctx context.Context) {
	hardware.Orange.Apply(g.lamp)
	g.display.Clear()

	average := g.session.average(g.cfg.Rounds)
	g.display.SetCursor(0, 0)
	g.display.Printf("Completed on %s!", g.session.difficulty)
	g.display.SetCursor(1, 1)
	g.display.Printf("Average Time: %d ms", average)

	if _, err := g.ledger.Submit(g.session.difficulty, average); err != nil {
		logErrf("failed to submit score: %v\n", err)
	}
	top, err := g.ledger.Read(g.session.difficulty)
	if err != nil {
		logErrf("failed to read top scores: %v\n", err)
	}

	g.display.SetCursor(2, 2)
	g.display.Printf("Top Times:")
	for i, t := range top {
		g.display.SetCursor(3+i, 3+i)
		g.display.Printf("%d. %d ms", i+1, t)
	}

	if g.archive != nil {
		stats := model.GameStats{
			PlayedAt:   time.Now(),
			Difficulty: g.session.difficulty,
			Rounds:     g.session.records,
			AverageMs:  average,
			WindowMs:   g.session.windowMs,
		}
		if _, err := g.archive.InsertGame(ctx, stats); err != nil {
			logErrf("failed to record game: %v\n", err)
		}
	}

	g.display.SetCursor(6, 6)
	g.display.Printf("HOLD %ds to restart", g.cfg.RestartHoldMs/1000)

	// Deliberate friction against accidental restarts: one tap, then a
	// continuous hold. Any release resets the hold.
	g.det.ClearEdges()
	for ctx.Err() == nil {
		if _, canceled := g.waitUntil(ctx, 100, g.det.TakePress); canceled && ctx.Err() == nil {
			break
		}
	}
	if ctx.Err() != nil {
		return
	}
	g.det.ClearEdges()

	cellMs := g.cfg.RestartHoldMs / 10
	holdMs := 0
	shownCells := -1
	for holdMs < g.cfg.RestartHoldMs {
		if ctx.Err() != nil {
			return
		}
		if g.det.Level() {
			holdMs += 10
			if cells := holdMs / cellMs; cells != shownCells {
				shownCells = cells
				g.showRestartBar(cells)
			}
		} else if holdMs != 0 || shownCells != 0 {
			holdMs = 0
			shownCells = 0
			g.showRestartBar(0)
		}
		g.pause(ctx, 10)
	}

	g.display.SetCursor(7, 7)
	g.display.Printf("Restarting...")
	g.pause(ctx, 1000)

	g.session = nil
	g.state = Idle
	g.det.ClearEdges()
}

func (g *Game) showRestartBar(cells int) {
	g.display.SetCursor(7, 7)
	g.display.Printf("[")
	for i := 0; i < 10; i++ {
		if i < cells {
			g.display.Printf("=")
		} else {
			g.display.Printf(" ")
		}
	}
	g.display.Printf("]")
}
