package game

import "reflex/internal/model"

// session is the per-game context. It exists only between difficulty
// confirmation and the return to Idle; every path back to Idle drops it.
type session struct {
	difficulty model.Difficulty
	windowMs   int
	round      int
	records    []uint16
	totalMs    int
}

func newSession(d model.Difficulty, windowMs, rounds int) *session {
	return &session{
		difficulty: d,
		windowMs:   windowMs,
		round:      1,
		records:    make([]uint16, 0, rounds),
	}
}

// record stores one compensated reaction time for the current round.
func (s *session) record(ms uint16) {
	s.records = append(s.records, ms)
	s.totalMs += int(ms)
}

// lastRecord returns the time recorded for the round just played.
func (s *session) lastRecord() uint16 {
	return s.records[len(s.records)-1]
}

// average is the integer-division mean over the full game.
func (s *session) average(rounds int) uint16 {
	return uint16(s.totalMs / rounds)
}

// feedback classifies a reaction time into the qualitative band shown on
// the result screen. Display only; scoring never looks at it.
func feedback(ms uint16) string {
	switch {
	case ms < 200:
		return "Amazing!"
	case ms < 400:
		return "Great!"
	case ms < 600:
		return "Good!"
	case ms < 800:
		return "Eh!"
	default:
		return "Yea ur bad"
	}
}
