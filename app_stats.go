package main

import (
	"fmt"

	"go.uber.org/zap"

	"rinktally/internal/journal"
	"rinktally/internal/stats"
	"rinktally/internal/tracker"
)

// LoadStats fetches the authoritative table and re-renders it.
// A failure is only logged; the table keeps what it showed before.
func (a *App) LoadStats() map[string]interface{} {
	if err := a.tracker.Load(a.ctx); err != nil {
		return map[string]interface{}{
			"loaded": false,
			"error":  err.Error(),
		}
	}
	return map[string]interface{}{
		"loaded":  true,
		"players": a.tracker.Store().Len(),
	}
}

// IncrementStat is the discrete + button
func (a *App) IncrementStat(player int, stat string) map[string]interface{} {
	return a.modifyStat(player, stat, +1)
}

// DecrementStat is the discrete - button
func (a *App) DecrementStat(player int, stat string) map[string]interface{} {
	return a.modifyStat(player, stat, -1)
}

func (a *App) modifyStat(player int, stat string, delta int) map[string]interface{} {
	t, err := stats.ParseStatType(stat)
	if err != nil {
		a.log.Warn("rejected stat from frontend", zap.String("stat", stat), zap.Error(err))
		return outcomeResult(tracker.OutcomeFailed, err)
	}

	outcome, err := a.tracker.Modify(a.ctx, stats.Cell{Player: player, Stat: t}, delta)
	return outcomeResult(outcome, err)
}

// Undo reverts the most recent confirmed change
func (a *App) Undo() map[string]interface{} {
	outcome, err := a.tracker.Undo(a.ctx)
	return outcomeResult(outcome, err)
}

// ResetStats zeroes every counter after a confirmation dialog
func (a *App) ResetStats() map[string]interface{} {
	reset, err := a.tracker.Reset(a.ctx)
	result := map[string]interface{}{
		"reset": reset,
	}
	if err != nil {
		result["error"] = err.Error()
	}
	return result
}

// ExportSummary downloads the backend summary and saves it
func (a *App) ExportSummary() map[string]interface{} {
	path, err := a.tracker.Export(a.ctx)
	if err != nil {
		return map[string]interface{}{
			"saved": false,
			"error": err.Error(),
		}
	}
	return map[string]interface{}{
		"saved": path != "",
		"path":  path,
	}
}

// GetTotals returns the aggregate counters
func (a *App) GetTotals() stats.Totals {
	return a.tracker.Totals()
}

// GetActivity returns the newest journal entries
func (a *App) GetActivity(limit int) []journal.Entry {
	entries, err := a.tracker.Activity(a.ctx, limit)
	if err != nil {
		a.log.Warn("failed to read activity", zap.Error(err))
		return []journal.Entry{}
	}
	if entries == nil {
		return []journal.Entry{}
	}
	return entries
}

func outcomeResult(outcome tracker.Outcome, err error) map[string]interface{} {
	result := map[string]interface{}{
		"outcome": outcome.String(),
	}
	if err != nil {
		result["error"] = fmt.Sprint(err)
	}
	return result
}
