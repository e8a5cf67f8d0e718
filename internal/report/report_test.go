package report

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reflex/internal/eeprom"
	"reflex/internal/history"
	"reflex/internal/model"
	"reflex/internal/score"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Difficulty", "1st", "2nd"}
	rows := [][]string{
		{"EASY", "350 ms", "---"},
		{"MEDIUM", "---", "---"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Difficulty    1st 2nd" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "EASY       350 ms ---" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "MEDIUM        --- ---" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestRenderScores(t *testing.T) {
	ledger, err := score.NewLedger(eeprom.NewMemory(eeprom.DefaultSize), score.DefaultSchema())
	if err != nil {
		t.Fatalf("create ledger: %v", err)
	}
	if err := ledger.Initialize(); err != nil {
		t.Fatalf("initialize ledger: %v", err)
	}
	if _, err := ledger.Submit(model.Easy, 350); err != nil {
		t.Fatalf("submit score: %v", err)
	}

	var b strings.Builder
	if err := RenderScores(&b, ledger); err != nil {
		t.Fatalf("render scores: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "350 ms") {
		t.Fatalf("expected submitted score in output, got:\n%s", out)
	}
	if !strings.Contains(out, "HARD") || !strings.Contains(out, "---") {
		t.Fatalf("expected empty slots rendered as ---, got:\n%s", out)
	}
}

func TestBuildReportAndRender(t *testing.T) {
	dir := t.TempDir()
	st, err := history.Open(filepath.Join(dir, "reflex.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i, avg := range []uint16{600, 500, 400} {
		stats := model.GameStats{
			PlayedAt:   time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
			Difficulty: model.Easy,
			Rounds:     []uint16{avg - 100, avg, avg + 100, avg, avg},
			AverageMs:  avg,
			WindowMs:   3000,
		}
		if _, err := st.InsertGame(ctx, stats); err != nil {
			t.Fatalf("insert game: %v", err)
		}
	}

	rep, err := BuildReport(ctx, st, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(rep.Games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(rep.Games))
	}
	if rep.Games[0].AverageMs != 600 || rep.Games[2].AverageMs != 400 {
		t.Fatalf("expected games oldest first, got %+v", rep.Games)
	}
	if rep.Games[0].BestMs != 500 || rep.Games[0].WorstMs != 700 {
		t.Fatalf("unexpected best/worst: %+v", rep.Games[0])
	}

	var b strings.Builder
	if err := RenderSummary(&b, rep.Games); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderGames(&b, rep.Games); err != nil {
		t.Fatalf("render games: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "Games: 3") {
		t.Fatalf("expected game count in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "Best average: 400 ms") {
		t.Fatalf("expected best average in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "1970-01-01") {
		t.Fatalf("expected played-at column, got:\n%s", out)
	}
}

func TestSparklineMonotone(t *testing.T) {
	got := Sparkline([]float64{600, 500, 400})
	if len(got) != 3 {
		t.Fatalf("expected 3 cells, got %q", got)
	}
	if got[0] != '@' || got[2] != ' ' {
		t.Fatalf("expected falling trend from @ to space, got %q", got)
	}
}
