package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"rinktally/internal/stats"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS activity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		player_num INTEGER NOT NULL DEFAULT 0,
		stat_type TEXT NOT NULL DEFAULT '',
		delta INTEGER NOT NULL DEFAULT 0,
		previous INTEGER NOT NULL DEFAULT 0,
		value INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_created ON activity(created_at);
`

// SQLite is a Journal backed by a local SQLite file
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
// ":memory:" is accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Record appends an entry
func (s *SQLite) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity (request_id, kind, player_num, stat_type, delta, previous, value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RequestID, string(e.Kind), e.Player, string(e.Stat), e.Delta, e.Previous, e.Value,
		e.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// Recent lists the newest entries first
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, kind, player_num, stat_type, delta, previous, value, created_at
		FROM activity
		ORDER BY id DESC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			kind      string
			stat      string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &kind, &e.Player, &stat, &e.Delta, &e.Previous, &e.Value, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		e.Kind = Kind(kind)
		e.Stat = stats.StatType(stat)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.At = t
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}
