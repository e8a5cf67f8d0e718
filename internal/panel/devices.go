// Package panel provides the Bubble Tea front panel: a terminal stand-in
// for the screen, lamp, buzzer, and button the controller drives.
package panel

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Screen is a fixed-size character grid safe for concurrent use. The game
// goroutine writes through the Display interface; the render loop reads
// row snapshots.
type Screen struct {
	mu   sync.Mutex
	rows int
	cols int
	grid [][]rune

	cursorRow int
	cursorCol int
}

// NewScreen returns a cleared screen of the given dimensions.
func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols}
	s.grid = make([][]rune, rows)
	for i := range s.grid {
		s.grid[i] = blankRow(cols)
	}
	return s
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// Clear blanks the grid and homes the cursor.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.grid {
		s.grid[i] = blankRow(s.cols)
	}
	s.cursorRow = 0
	s.cursorCol = 0
}

// SetCursor moves the write position. Out-of-range coordinates are
// clamped.
func (s *Screen) SetCursor(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorRow = clamp(row, 0, s.rows-1)
	s.cursorCol = clamp(col, 0, s.cols-1)
}

// Printf writes at the cursor and advances it. Text past the right edge
// is dropped.
func (s *Screen) Printf(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range text {
		if s.cursorCol >= s.cols {
			break
		}
		s.grid[s.cursorRow][s.cursorCol] = r
		s.cursorCol++
	}
}

// Rows returns a copy of the grid as strings.
func (s *Screen) Rows() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, s.rows)
	for i, row := range s.grid {
		out[i] = string(row)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lamp stores the last color written to it.
type Lamp struct {
	mu      sync.Mutex
	r, g, b uint8
}

// SetRGB records the lamp color.
func (l *Lamp) SetRGB(r, g, b uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r, l.g, l.b = r, g, b
}

// RGB returns the current lamp color.
func (l *Lamp) RGB() (r, g, b uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r, l.g, l.b
}

// Buzzer stores the buzzer level.
type Buzzer struct {
	on atomic.Bool
}

// Set records the buzzer level.
func (b *Buzzer) Set(on bool) {
	b.on.Store(on)
}

// On reports whether the buzzer is sounding.
func (b *Buzzer) On() bool {
	return b.on.Load()
}

// Button is the input line. The line is pulled high; pressing drives it
// low.
type Button struct {
	low atomic.Bool
}

// Read reports true while the line is high (button up).
func (b *Button) Read() bool {
	return !b.low.Load()
}

// SetPressed drives the line. Reports whether the level changed.
func (b *Button) SetPressed(pressed bool) bool {
	return b.low.Swap(pressed) != pressed
}

// Pressed reports whether the button is currently down.
func (b *Button) Pressed() bool {
	return b.low.Load()
}
