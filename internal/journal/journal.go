// Package journal keeps an append-only activity log of confirmed stat
// changes. It is an audit trail for the bench, not a source of truth:
// nothing is ever restored from it.
package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rinktally/internal/stats"
)

// Kind classifies an activity entry
type Kind string

const (
	KindChange Kind = "change"
	KindUndo   Kind = "undo"
	KindReset  Kind = "reset"
)

// Entry is one confirmed action
type Entry struct {
	ID        int64          `json:"id"`
	RequestID string         `json:"requestId"`
	Kind      Kind           `json:"kind"`
	Player    int            `json:"player,omitempty"`
	Stat      stats.StatType `json:"stat,omitempty"`
	Delta     int            `json:"delta,omitempty"`
	Previous  int            `json:"previous"`
	Value     int            `json:"value"`
	At        time.Time      `json:"at"`
}

// Journal stores activity entries
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// DefaultRecentLimit caps Recent when callers pass a non-positive limit
const DefaultRecentLimit = 50

// Open picks a backend from the DSN: postgres:// and postgresql:// URLs go
// to PostgreSQL, anything else is treated as a SQLite path. An empty DSN
// uses activity.db under the user config directory.
func Open(ctx context.Context, dsn string) (Journal, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}

	if dsn == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		dsn = path
	}
	return OpenSQLite(ctx, dsn)
}

// DefaultPath returns the default SQLite location, creating its directory
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}

	dir := filepath.Join(configDir, "RinkTally")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create journal directory: %w", err)
	}

	return filepath.Join(dir, "activity.db"), nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return DefaultRecentLimit
	}
	return limit
}
