package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"reflex/internal/history"
	"reflex/internal/model"
	"reflex/internal/score"
)

const sparkChars = " .:-=+*#%@"

// ScoreSource reads the persisted best-average table for a tier.
type ScoreSource interface {
	Read(d model.Difficulty) ([]uint16, error)
}

// RenderScores prints the best-average table for every difficulty.
func RenderScores(w io.Writer, src ScoreSource) error {
	headers := []string{"Difficulty", "1st", "2nd", "3rd"}
	rows := make([][]string, 0, len(model.Difficulties))
	for _, d := range model.Difficulties {
		scores, err := src.Read(d)
		if err != nil {
			return fmt.Errorf("failed to read %s scores: %w", d, err)
		}
		row := []string{d.String()}
		for _, s := range scores {
			row = append(row, formatSlot(s))
		}
		rows = append(rows, row)
	}

	if _, err := fmt.Fprintln(w, "Top Times"); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatSlot(ms uint16) string {
	if ms == score.Sentinel {
		return "---"
	}
	return fmt.Sprintf("%d ms", ms)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Games []model.GameAggregate
}

// BuildReport loads and prepares stored games for rendering.
func BuildReport(ctx context.Context, st *history.Store, filter model.HistoryFilter) (Report, error) {
	games, err := st.ListGames(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list games: %w", err)
	}
	return Report{Games: games}, nil
}

// RenderSummary prints aggregate statistics over the stored games.
func RenderSummary(w io.Writer, games []model.GameAggregate) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}

	var totalAvg float64
	best := games[0].AverageMs
	for _, g := range games {
		totalAvg += float64(g.AverageMs)
		if g.AverageMs < best {
			best = g.AverageMs
		}
	}
	count := float64(len(games))

	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Games: %d\n", len(games)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg of averages: %.1f ms\n", totalAvg/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best average: %d ms\n", best); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Trend: %s\n", Sparkline(averages(games))); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderGames prints one row per stored game, oldest first.
func RenderGames(w io.Writer, games []model.GameAggregate) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}

	headers := []string{"Played", "Difficulty", "Avg", "Best", "Worst"}
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		rows = append(rows, []string{
			g.PlayedAt.Format("2006-01-02 15:04"),
			g.Difficulty.String(),
			fmt.Sprintf("%d ms", g.AverageMs),
			fmt.Sprintf("%d ms", g.BestMs),
			fmt.Sprintf("%d ms", g.WorstMs),
		})
	}

	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func averages(games []model.GameAggregate) []float64 {
	out := make([]float64, len(games))
	for i, g := range games {
		out[i] = float64(g.AverageMs)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
