package main

import (
	"go.uber.org/zap"

	"rinktally/internal/stats"
)

// PressCell starts a tap-or-hold gesture on a stat cell (pointer down).
// token identifies the gesture; the page sends the same token with the
// matching ReleaseCell or CancelCell, which may be handled first.
func (a *App) PressCell(player int, stat string, token uint64) {
	if cell, ok := a.parseCell(player, stat); ok {
		a.gestures.Press(cell, token)
	}
}

// ReleaseCell ends the gesture (pointer up); a short press adds one
func (a *App) ReleaseCell(player int, stat string, token uint64) {
	if cell, ok := a.parseCell(player, stat); ok {
		a.gestures.Release(cell, token)
	}
}

// CancelCell abandons the gesture (pointer leave or cancel)
func (a *App) CancelCell(player int, stat string, token uint64) {
	if cell, ok := a.parseCell(player, stat); ok {
		a.gestures.Cancel(cell, token)
	}
}

// onGesture forwards a recognized tap (+1) or hold (-1) to the tracker
func (a *App) onGesture(cell stats.Cell, delta int) {
	if _, err := a.tracker.Modify(a.ctx, cell, delta); err != nil {
		a.log.Debug("gesture change failed", zap.Stringer("cell", cell), zap.Int("delta", delta), zap.Error(err))
	}
}

func (a *App) parseCell(player int, stat string) (stats.Cell, bool) {
	t, err := stats.ParseStatType(stat)
	if err != nil {
		a.log.Warn("rejected stat from frontend", zap.String("stat", stat), zap.Error(err))
		return stats.Cell{}, false
	}
	return stats.Cell{Player: player, Stat: t}, true
}
