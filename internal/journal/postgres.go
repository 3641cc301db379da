package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rinktally/internal/stats"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS rink_activity (
		id BIGSERIAL PRIMARY KEY,
		request_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		player_num INTEGER NOT NULL DEFAULT 0,
		stat_type TEXT NOT NULL DEFAULT '',
		delta INTEGER NOT NULL DEFAULT 0,
		previous INTEGER NOT NULL DEFAULT 0,
		value INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)
`

// Postgres is a Journal backed by a shared PostgreSQL database
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and ensures the table exists
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Record appends an entry
func (p *Postgres) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO rink_activity (request_id, kind, player_num, stat_type, delta, previous, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.RequestID, string(e.Kind), e.Player, string(e.Stat), e.Delta, e.Previous, e.Value, e.At)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// Recent lists the newest entries first
func (p *Postgres) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, request_id, kind, player_num, stat_type, delta, previous, value, created_at
		FROM rink_activity
		ORDER BY id DESC
		LIMIT $1
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
			stat string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &kind, &e.Player, &stat, &e.Delta, &e.Previous, &e.Value, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		e.Kind = Kind(kind)
		e.Stat = stats.StatType(stat)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the pool
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
