// Package model defines shared data structures.
package model

import "time"

// Difficulty selects the reaction window for a game.
type Difficulty int

// Difficulty tiers, in selection-cycle order.
const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Difficulties lists all tiers in cycle order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// String returns the display name of the tier.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "EASY"
	case Medium:
		return "MEDIUM"
	case Hard:
		return "HARD"
	default:
		return "UNKNOWN"
	}
}

// Next cycles to the following tier, wrapping after Hard.
func (d Difficulty) Next() Difficulty {
	return Difficulty((int(d) + 1) % len(Difficulties))
}

// ParseDifficulty maps a display name back to a tier.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range Difficulties {
		if d.String() == s {
			return d, true
		}
	}
	return Easy, false
}

// GameStats captures a completed five-round game.
type GameStats struct {
	PlayedAt   time.Time
	Difficulty Difficulty
	Rounds     []uint16
	AverageMs  uint16
	WindowMs   int
}

// GameAggregate summarizes a stored game for reporting.
type GameAggregate struct {
	GameID     int64
	PlayedAt   time.Time
	Difficulty Difficulty
	AverageMs  uint16
	BestMs     uint16
	WorstMs    uint16
}

// HistoryFilter defines filters for history queries.
type HistoryFilter struct {
	Difficulty *Difficulty
	Since      *time.Time
	Last       int
}
