package tracker

import (
	"context"

	"rinktally/internal/stats"
)

// Level tags a status line for styling
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Status is the single status line plus the undo affordance
type Status struct {
	Message     string `json:"message"`
	Level       Level  `json:"level"`
	UndoVisible bool   `json:"undoVisible"`
}

// Row is one player line as rendered after a load or reset
type Row struct {
	Player int               `json:"player"`
	Stats  stats.PlayerStats `json:"stats"`
	Cells  []stats.CellRef   `json:"cells"`
}

// Display is a stateless projection of the store and status.
// Implementations must not block.
type Display interface {
	RenderAll(rows []Row)
	SetCell(ref stats.CellRef, value int)
	SetTotals(t stats.Totals)
	SetStatus(s Status)
}

// Prompter shows blocking dialogs
type Prompter interface {
	Alert(message string)
	Confirm(title, message string) bool
}

// Downloader stores an exported summary. An empty path with a nil error
// means the user cancelled.
type Downloader interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}
