// Package hardware declares the output sinks and the input line the game
// controller drives. The core never talks to a concrete device; the panel
// package provides terminal-backed implementations.
package hardware

// Display dimensions of the text surface, in characters.
const (
	DisplayRows = 8
	DisplayCols = 21
)

// Display is a write-only text surface addressable by (row, column).
type Display interface {
	Clear()
	SetCursor(row, col int)
	Printf(format string, args ...any)
}

// Lamp is a three-channel color sink, 0-255 per channel.
type Lamp interface {
	SetRGB(r, g, b uint8)
}

// Buzzer is a single boolean on/off sink.
type Buzzer interface {
	Set(on bool)
}

// Line is a digital input line with pull-up semantics: Read reports true
// while the line is high (idle) and false while the button holds it low.
type Line interface {
	Read() bool
}
