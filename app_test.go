package main

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"rinktally/internal/stats"
	"rinktally/internal/tracker"
)

func TestParseCell(t *testing.T) {
	a := &App{log: zap.NewNop()}

	cell, ok := a.parseCell(4, "blocked_shots")
	if !ok {
		t.Fatal("Expected blocked_shots to parse")
	}
	if cell != (stats.Cell{Player: 4, Stat: stats.BlockedShots}) {
		t.Errorf("Unexpected cell %+v", cell)
	}

	if _, ok := a.parseCell(4, "goals"); ok {
		t.Error("Expected unknown stat to be rejected")
	}
}

func TestModifyStat_UnknownStat(t *testing.T) {
	a := &App{log: zap.NewNop()}

	result := a.modifyStat(4, "goals", +1)
	if result["outcome"] != "failed" {
		t.Errorf("Expected failed outcome, got %v", result["outcome"])
	}
	if result["error"] == nil {
		t.Error("Expected an error message")
	}
}

func TestOutcomeResult(t *testing.T) {
	result := outcomeResult(tracker.OutcomeUndoApplied, nil)
	if result["outcome"] != "undo_applied" {
		t.Errorf("Expected undo_applied, got %v", result["outcome"])
	}
	if _, ok := result["error"]; ok {
		t.Error("Expected no error key on success")
	}

	result = outcomeResult(tracker.OutcomeFailed, errors.New("boom"))
	if result["error"] != "boom" {
		t.Errorf("Expected error message, got %v", result["error"])
	}
}
