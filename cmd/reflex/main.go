// Package main provides the CLI entrypoint for reflex.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"reflex/internal/button"
	"reflex/internal/clock"
	"reflex/internal/config"
	"reflex/internal/eeprom"
	"reflex/internal/game"
	"reflex/internal/hardware"
	"reflex/internal/history"
	"reflex/internal/historyui"
	"reflex/internal/model"
	"reflex/internal/panel"
	"reflex/internal/report"
	"reflex/internal/score"
)

const (
	defaultRounds    = 5
	defaultSeed      = 42
	defaultDebounce  = 10
	defaultEasyWin   = 3000
	defaultMediumWin = 1500
	defaultHardWin   = 500
)

var (
	playRounds     int
	playSeed       int64
	playDebounce   int
	playEasyWin    int
	playMediumWin  int
	playHardWin    int
	playEEPROMPath string
	playNoArchive  bool

	historyDifficulty string
	historySince      string
	historyLast       int
	historyPlain      bool

	resetYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reflex",
		Short:         "Reaction time game",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playRounds, "rounds", defaultRounds, "rounds per game")
	rootCmd.Flags().Int64Var(&playSeed, "seed", defaultSeed, "countdown delay seed (0 = time-based)")
	rootCmd.Flags().IntVar(&playDebounce, "debounce", defaultDebounce, "button debounce window (ms)")
	rootCmd.Flags().IntVar(&playEasyWin, "easy-window", defaultEasyWin, "easy reaction window (ms)")
	rootCmd.Flags().IntVar(&playMediumWin, "medium-window", defaultMediumWin, "medium reaction window (ms)")
	rootCmd.Flags().IntVar(&playHardWin, "hard-window", defaultHardWin, "hard reaction window (ms)")
	rootCmd.Flags().StringVar(&playEEPROMPath, "eeprom", "", "score storage image path")
	rootCmd.Flags().BoolVar(&playNoArchive, "no-archive", false, "do not record games in the history db")

	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "rounds", &playRounds, fileCfg.Game.Rounds)
	applyInt64Config(cmd, "seed", &playSeed, fileCfg.Game.Seed)
	applyIntConfig(cmd, "debounce", &playDebounce, fileCfg.Timing.DebounceMs)
	applyIntConfig(cmd, "easy-window", &playEasyWin, fileCfg.Game.EasyWindowMs)
	applyIntConfig(cmd, "medium-window", &playMediumWin, fileCfg.Game.MediumWindowMs)
	applyIntConfig(cmd, "hard-window", &playHardWin, fileCfg.Game.HardWindowMs)

	gameCfg := game.DefaultConfig()
	gameCfg.Rounds = playRounds
	gameCfg.Windows[model.Easy] = playEasyWin
	gameCfg.Windows[model.Medium] = playMediumWin
	gameCfg.Windows[model.Hard] = playHardWin
	applyTiming(&gameCfg.CompensationMs, fileCfg.Timing.CompensationMs)
	applyTiming(&gameCfg.ConfirmHoldMs, fileCfg.Timing.ConfirmHoldMs)
	applyTiming(&gameCfg.HoldGraceMs, fileCfg.Timing.HoldGraceMs)
	applyTiming(&gameCfg.RestartHoldMs, fileCfg.Timing.RestartHoldMs)
	applyTiming(&gameCfg.ResultPauseMs, fileCfg.Timing.ResultPauseMs)
	applyTiming(&gameCfg.CountdownMinMs, fileCfg.Timing.CountdownMinMs)
	applyTiming(&gameCfg.CountdownMaxMs, fileCfg.Timing.CountdownMaxMs)
	applyTiming(&gameCfg.TimeoutBuzzMs, fileCfg.Timing.TimeoutBuzzMs)
	applyTiming(&gameCfg.TimeoutPauseMs, fileCfg.Timing.TimeoutPauseMs)
	if playDebounce <= 0 {
		return fmt.Errorf("--debounce must be > 0")
	}

	ledger, err := openLedger(playEEPROMPath)
	if err != nil {
		return err
	}

	var archive game.Archive
	if !playNoArchive {
		st, err := history.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		archive = st
	}

	screen := panel.NewScreen(hardware.DisplayRows, hardware.DisplayCols)
	lamp := &panel.Lamp{}
	buzzer := &panel.Buzzer{}
	btn := &panel.Button{}
	det := button.New(btn, buzzer, time.Duration(playDebounce)*time.Millisecond)
	clk := clock.New(det, buzzer)

	seed := playSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	g, err := game.New(gameCfg, screen, lamp, det, clk, ledger, archive, rng)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Run(ctx)
	}()

	program := tea.NewProgram(panel.NewModel(screen, lamp, buzzer, btn, det, cancel), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("failed to run panel: %w", err)
	}
	cancel()
	<-done
	return nil
}

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show the best-average table",
		Args:  cobra.NoArgs,
		RunE:  runScoresCmd,
	}
	cmd.Flags().StringVar(&playEEPROMPath, "eeprom", "", "score storage image path")
	return cmd
}

func runScoresCmd(cmd *cobra.Command, _ []string) error {
	ledger, err := openLedger(playEEPROMPath)
	if err != nil {
		return err
	}
	return report.RenderScores(cmd.OutOrStdout(), ledger)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded games",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyDifficulty, "difficulty", "", "difficulty filter (EASY, MEDIUM, HARD)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N games")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print tables instead of the TUI")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	filter, err := buildHistoryFilter()
	if err != nil {
		return err
	}

	st, err := history.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyPlain {
		rep, err := report.BuildReport(context.Background(), st, filter)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := report.RenderSummary(out, rep.Games); err != nil {
			return err
		}
		return report.RenderGames(out, rep.Games)
	}

	program := tea.NewProgram(historyui.NewModel(st, filter), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func buildHistoryFilter() (model.HistoryFilter, error) {
	var filter model.HistoryFilter
	if historyDifficulty != "" {
		d, ok := model.ParseDifficulty(strings.ToUpper(strings.TrimSpace(historyDifficulty)))
		if !ok {
			return filter, fmt.Errorf("invalid --difficulty value (use EASY, MEDIUM, or HARD)")
		}
		filter.Difficulty = &d
	}
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	if historyLast < 0 {
		return filter, fmt.Errorf("--last must be >= 0")
	}
	filter.Last = historyLast
	return filter, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the best-average table",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&playEEPROMPath, "eeprom", "", "score storage image path")
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm erasing all stored scores")
	return cmd
}

func runResetCmd(_ *cobra.Command, _ []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to erase scores without --yes")
	}
	ledger, err := openLedger(playEEPROMPath)
	if err != nil {
		return err
	}
	if err := ledger.Reset(); err != nil {
		return fmt.Errorf("failed to reset scores: %w", err)
	}
	logErrln("Scores erased.")
	return nil
}

func openLedger(path string) (*score.Ledger, error) {
	if path == "" {
		path = config.DefaultEEPROMPath()
	}
	dev, err := eeprom.Open(path, eeprom.DefaultSize)
	if err != nil {
		return nil, fmt.Errorf("failed to open score storage: %w", err)
	}
	ledger, err := score.NewLedger(dev, score.DefaultSchema())
	if err != nil {
		return nil, err
	}
	if err := ledger.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize score storage: %w", err)
	}
	return ledger, nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyTiming(target *int, value *int) {
	if value != nil {
		*target = *value
	}
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# reflex configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# rounds = %d              # Rounds per game
# easy-window-ms = %d   # Easy reaction window
# medium-window-ms = %d # Medium reaction window
# hard-window-ms = %d    # Hard reaction window
# seed = %d               # Countdown delay seed (0 = time-based)

[timing]
# debounce-ms = %d        # Button debounce window
# compensation-ms = 90    # Added to every raw reaction time
# confirm-hold-ms = 2000  # Hold to confirm a difficulty
# hold-grace-ms = 300     # Hold before the progress readout starts
# restart-hold-ms = 3000  # Hold to restart after a game
# result-pause-ms = 3000  # Round result screen duration
# countdown-min-ms = 1000 # Shortest red-light delay
# countdown-max-ms = 3000 # Longest red-light delay
# timeout-buzz-ms = 500   # Buzz after a missed window
# timeout-pause-ms = 1500 # Silence after the buzz
`,
		defaultRounds,
		defaultEasyWin,
		defaultMediumWin,
		defaultHardWin,
		defaultSeed,
		defaultDebounce,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
