// Package history handles SQLite persistence of completed games. The
// durable best-scores ledger lives in the eeprom image; this store is the
// richer archive behind the history browser. An in-progress game is never
// written here, so an unplugged session cannot leave a partial row.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reflex/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for game records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			played_at TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			average_ms INTEGER NOT NULL,
			window_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS game_rounds (
			game_id INTEGER NOT NULL,
			round INTEGER NOT NULL,
			time_ms INTEGER NOT NULL,
			PRIMARY KEY (game_id, round)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertGame stores a completed game and its per-round times.
func (s *Store) InsertGame(ctx context.Context, stats model.GameStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (played_at, difficulty, average_ms, window_ms)
		 VALUES (?, ?, ?, ?)`,
		stats.PlayedAt.Format(time.RFC3339Nano),
		stats.Difficulty.String(),
		stats.AverageMs,
		stats.WindowMs,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(stats.Rounds) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO game_rounds (game_id, round, time_ms) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, timeMs := range stats.Rounds {
			if _, err := stmt.ExecContext(ctx, id, i+1, timeMs); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListGames returns game aggregates filtered by the history filter, oldest
// first.
func (s *Store) ListGames(ctx context.Context, filter model.HistoryFilter) ([]model.GameAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Difficulty != nil {
		clauses = append(clauses, "g.difficulty = ?")
		args = append(args, filter.Difficulty.String())
	}
	if filter.Since != nil {
		clauses = append(clauses, "g.played_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT g.id, g.played_at, g.difficulty, g.average_ms,
			MIN(r.time_ms) AS best_ms, MAX(r.time_ms) AS worst_ms
		FROM games g
		JOIN game_rounds r ON r.game_id = g.id
		WHERE %s
		GROUP BY g.id
		ORDER BY g.played_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameAggregate
	for rows.Next() {
		var agg model.GameAggregate
		var playedAt, difficulty string
		if err := rows.Scan(&agg.GameID, &playedAt, &difficulty, &agg.AverageMs, &agg.BestMs, &agg.WorstMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, playedAt)
		if err != nil {
			return nil, err
		}
		agg.PlayedAt = parsed
		d, ok := model.ParseDifficulty(difficulty)
		if !ok {
			return nil, fmt.Errorf("unknown difficulty %q in game %d", difficulty, agg.GameID)
		}
		agg.Difficulty = d
		games = append(games, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(games) > filter.Last {
		games = games[len(games)-filter.Last:]
	}
	return games, nil
}

// RoundTimes returns the ordered per-round times of a stored game.
func (s *Store) RoundTimes(ctx context.Context, gameID int64) ([]uint16, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time_ms FROM game_rounds WHERE game_id = ? ORDER BY round ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var times []uint16
	for rows.Next() {
		var t uint16
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return times, nil
}
