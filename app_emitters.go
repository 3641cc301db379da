package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"rinktally/internal/download"
	"rinktally/internal/stats"
	"rinktally/internal/tracker"
)

// webview projects tracker state onto the frontend through Wails events
type webview struct {
	app *App
}

// RenderAll emits the full table after a load or reset
func (w *webview) RenderAll(rows []tracker.Row) {
	labels := make([]map[string]interface{}, 0, len(stats.AllStatTypes))
	for _, t := range stats.AllStatTypes {
		labels = append(labels, map[string]interface{}{
			"stat":    string(t),
			"label":   t.Label(),
			"totalId": stats.TotalElementID(t),
		})
	}

	runtime.EventsEmit(w.app.ctx, "stats:render", map[string]interface{}{
		"rows":    rows,
		"columns": labels,
	})
}

// SetCell emits one redrawn counter
func (w *webview) SetCell(ref stats.CellRef, value int) {
	runtime.EventsEmit(w.app.ctx, "stats:cell", map[string]interface{}{
		"elementId": ref.ElementID,
		"player":    ref.Player,
		"stat":      string(ref.Stat),
		"value":     value,
	})
}

// SetTotals emits the aggregate counters
func (w *webview) SetTotals(t stats.Totals) {
	runtime.EventsEmit(w.app.ctx, "stats:totals", t)
}

// SetStatus emits the status line and whether undo is offered
func (w *webview) SetStatus(s tracker.Status) {
	runtime.EventsEmit(w.app.ctx, "stats:status", s)
}

// dialogPrompter shows native dialogs
type dialogPrompter struct {
	app *App
}

// Alert shows an error dialog
func (p *dialogPrompter) Alert(message string) {
	_, err := runtime.MessageDialog(p.app.ctx, runtime.MessageDialogOptions{
		Type:    runtime.ErrorDialog,
		Title:   "RinkTally",
		Message: message,
	})
	if err != nil {
		p.app.log.Warn("failed to show alert", zap.String("message", message), zap.Error(err))
	}
}

// Confirm asks a yes/no question; anything but Yes counts as no
func (p *dialogPrompter) Confirm(title, message string) bool {
	answer, err := runtime.MessageDialog(p.app.ctx, runtime.MessageDialogOptions{
		Type:          runtime.QuestionDialog,
		Title:         title,
		Message:       message,
		Buttons:       []string{"Yes", "No"},
		DefaultButton: "No",
		CancelButton:  "No",
	})
	if err != nil {
		p.app.log.Warn("failed to show confirm dialog", zap.String("title", title), zap.Error(err))
		return false
	}
	return strings.EqualFold(answer, "Yes")
}

// dialogSaver asks where to save an export, like a browser download prompt
type dialogSaver struct {
	app *App
}

// Save shows a save dialog seeded with the server filename and writes data
func (s *dialogSaver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	name, err := download.Sanitize(filename)
	if err != nil {
		return "", err
	}

	opts := runtime.SaveDialogOptions{
		Title:            "Save summary",
		DefaultDirectory: download.DefaultDir(),
		DefaultFilename:  name,
	}
	if ext := filepath.Ext(name); ext != "" {
		opts.Filters = []runtime.FileFilter{{
			DisplayName: strings.ToUpper(strings.TrimPrefix(ext, ".")) + " files",
			Pattern:     "*" + ext,
		}}
	}

	path, err := runtime.SaveFileDialog(s.app.ctx, opts)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", nil
	}

	if err := download.WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
