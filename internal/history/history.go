// Package history keeps a local log of completed capture sessions.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one completed capture session.
type Entry struct {
	ID             int64
	Test           string
	ExerciseType   string
	AthleteID      string
	SessionID      string
	Score          float64
	Unit           string
	Percentile     float64
	Fallback       bool
	ElapsedSeconds int
	RecordedAt     time.Time
}

// DB is the SQLite history database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dir/history.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS results (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		test            TEXT NOT NULL,
		exercise_type   TEXT NOT NULL,
		athlete_id      TEXT NOT NULL DEFAULT '',
		session_id      TEXT NOT NULL DEFAULT '',
		score           REAL NOT NULL,
		unit            TEXT NOT NULL,
		percentile      REAL NOT NULL,
		fallback        INTEGER NOT NULL DEFAULT 0,
		elapsed_seconds INTEGER NOT NULL DEFAULT 0,
		recorded_at     TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results table: %w", err)
	}

	return &DB{db: db}, nil
}

// Record appends an entry and returns its id. A zero RecordedAt is set to now.
func (h *DB) Record(e Entry) (int64, error) {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	res, err := h.db.Exec(
		`INSERT INTO results (test, exercise_type, athlete_id, session_id, score, unit, percentile,
		 fallback, elapsed_seconds, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Test, e.ExerciseType, e.AthleteID, e.SessionID, e.Score, e.Unit, e.Percentile,
		e.Fallback, e.ElapsedSeconds, e.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("recording result: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent entries, newest first. limit <= 0 returns all.
func (h *DB) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.Query(
		`SELECT id, test, exercise_type, athlete_id, session_id, score, unit, percentile,
		 fallback, elapsed_seconds, recorded_at
		 FROM results ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.Test, &e.ExerciseType, &e.AthleteID, &e.SessionID, &e.Score,
			&e.Unit, &e.Percentile, &e.Fallback, &e.ElapsedSeconds, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing recorded_at %q: %w", recordedAt, err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Close closes the history database.
func (h *DB) Close() error {
	return h.db.Close()
}
