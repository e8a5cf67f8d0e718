package hardware

// Color is a lamp setting as three independent channel intensities.
type Color struct {
	R, G, B uint8
}

// Named lamp colors used by the game screens.
var (
	Red    = Color{255, 0, 0}
	Green  = Color{0, 255, 0}
	Blue   = Color{0, 0, 255}
	Orange = Color{255, 165, 0}
	Yellow = Color{255, 255, 0}
	Purple = Color{128, 0, 128}
	Off    = Color{}
)

// Apply writes the color to the lamp.
func (c Color) Apply(l Lamp) {
	l.SetRGB(c.R, c.G, c.B)
}
