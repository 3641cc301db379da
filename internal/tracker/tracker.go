// Package tracker implements the confirm-then-apply protocol between the
// bench UI and the stats backend. Local state only changes after the
// backend acknowledges a change, so a failed request never needs rolling
// back.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rinktally/internal/api"
	"rinktally/internal/history"
	"rinktally/internal/journal"
	"rinktally/internal/stats"
)

var (
	// ErrUnknownCell is returned for a player or stat the store does not hold
	ErrUnknownCell = errors.New("unknown stat cell")
	// ErrBadDelta is returned for deltas other than +1 and -1
	ErrBadDelta = errors.New("delta must be +1 or -1")
)

// Backend is the remote stats API
type Backend interface {
	GetStats(ctx context.Context) (map[int]stats.PlayerStats, error)
	UpdateStat(ctx context.Context, player int, stat stats.StatType, change int) (int, error)
	ResetStats(ctx context.Context) (map[int]stats.PlayerStats, error)
	ExportSummary(ctx context.Context) (*api.Export, error)
}

// Outcome says which confirmed branch a modify call took
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeUpdated
	OutcomeUndoApplied
	OutcomeNoChange
	OutcomeNothingToUndo
	// OutcomeSuperseded means a load or reset replaced the store while the
	// request was in flight; the confirmation was not applied locally
	OutcomeSuperseded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeUndoApplied:
		return "undo_applied"
	case OutcomeNoChange:
		return "no_change"
	case OutcomeNothingToUndo:
		return "nothing_to_undo"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "failed"
	}
}

// Tracker owns the Stat Store and the History-Undo Stack
type Tracker struct {
	backend    Backend
	store      *stats.Store
	history    *history.Stack
	displays   []Display
	prompter   Prompter
	downloader Downloader
	journal    journal.Journal
	log        *zap.Logger
	newID      func() string

	layoutMu sync.RWMutex
	layout   *stats.Layout

	// stateMu orders confirmations against wholesale replacement. epoch
	// counts replacements; a confirmation only applies in the epoch its
	// request started in.
	stateMu sync.RWMutex
	epoch   uint64

	cellMu sync.Mutex
	cells  map[stats.Cell]*sync.Mutex

	loads singleflight.Group
}

// Option configures a Tracker
type Option func(*Tracker)

// WithDisplay adds a projection target; several may be attached
func WithDisplay(d Display) Option {
	return func(t *Tracker) {
		t.displays = append(t.displays, d)
	}
}

// WithPrompter sets the dialog implementation
func WithPrompter(p Prompter) Option {
	return func(t *Tracker) {
		t.prompter = p
	}
}

// WithDownloader sets where exports are written
func WithDownloader(d Downloader) Option {
	return func(t *Tracker) {
		t.downloader = d
	}
}

// WithJournal records confirmed actions in j
func WithJournal(j journal.Journal) Option {
	return func(t *Tracker) {
		t.journal = j
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(t *Tracker) {
		t.log = log.Named("tracker")
	}
}

// WithIDGenerator replaces the request id source
func WithIDGenerator(fn func() string) Option {
	return func(t *Tracker) {
		t.newID = fn
	}
}

// New creates a tracker with an empty store and history
func New(backend Backend, opts ...Option) *Tracker {
	t := &Tracker{
		backend:  backend,
		store:    stats.NewStore(),
		history:  history.NewStack(),
		prompter: nopPrompter{},
		log:      zap.NewNop(),
		newID:    uuid.NewString,
		cells:    make(map[stats.Cell]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Store exposes the stat store for reads
func (t *Tracker) Store() *stats.Store {
	return t.store
}

// History exposes the undo stack for reads
func (t *Tracker) History() *history.Stack {
	return t.history
}

// Totals recomputes the aggregate counters
func (t *Tracker) Totals() stats.Totals {
	return t.store.Totals()
}

// Load fetches the authoritative state and replaces the store. Failures
// are logged only; the store keeps whatever it held before.
func (t *Tracker) Load(ctx context.Context) error {
	_, err, _ := t.loads.Do("load", func() (any, error) {
		players, err := t.backend.GetStats(ctx)
		if err != nil {
			return nil, err
		}
		t.replace(players, false)
		return nil, nil
	})
	if err != nil {
		t.log.Warn("failed to load stats", zap.Error(err))
		return fmt.Errorf("load stats: %w", err)
	}

	t.log.Info("stats loaded", zap.Int("players", t.store.Len()))
	return nil
}

// Increment adds one to a counter (the discrete + button)
func (t *Tracker) Increment(ctx context.Context, cell stats.Cell) (Outcome, error) {
	return t.Modify(ctx, cell, +1)
}

// Decrement subtracts one from a counter (the discrete - button)
func (t *Tracker) Decrement(ctx context.Context, cell stats.Cell) (Outcome, error) {
	return t.Modify(ctx, cell, -1)
}

// Modify sends a ±1 change and records it for undo once confirmed
func (t *Tracker) Modify(ctx context.Context, cell stats.Cell, delta int) (Outcome, error) {
	return t.modify(ctx, cell, delta, nil)
}

// Undo replays the inverse of the most recent change without recording
// it. A replay the backend rejects puts the entry back; a replay lost to a
// transport error is dropped since the backend may have applied it.
func (t *Tracker) Undo(ctx context.Context) (Outcome, error) {
	entry, ok := t.history.Pop()
	if !ok {
		t.setStatus(Status{Message: "Nothing to undo", Level: LevelInfo, UndoVisible: false})
		return OutcomeNothingToUndo, nil
	}

	cell := stats.Cell{Player: entry.Player, Stat: entry.Stat}
	return t.modify(ctx, cell, entry.Inverse(), &entry)
}

// modify runs one request-confirm-record cycle. replay is the popped
// history entry when the call is an undo, nil otherwise.
func (t *Tracker) modify(ctx context.Context, cell stats.Cell, delta int, replay *history.Entry) (Outcome, error) {
	if delta != 1 && delta != -1 {
		return OutcomeFailed, ErrBadDelta
	}

	unlock := t.lockCell(cell)

	t.stateMu.RLock()
	epoch := t.epoch
	previous, ok := t.store.Get(cell.Player, cell.Stat)
	t.stateMu.RUnlock()
	if !ok {
		unlock()
		return OutcomeFailed, fmt.Errorf("%w: %s", ErrUnknownCell, cell)
	}

	id := t.newID()
	log := t.log.With(
		zap.String("request_id", id),
		zap.Int("player", cell.Player),
		zap.String("stat", string(cell.Stat)),
		zap.Int("delta", delta),
		zap.Bool("undo", replay != nil))

	value, err := t.backend.UpdateStat(api.ContextWithRequestID(ctx, id), cell.Player, cell.Stat, delta)
	if err != nil {
		if replay != nil && errors.Is(err, api.ErrRejected) {
			t.stateMu.RLock()
			if t.epoch == epoch {
				t.history.Push(*replay)
			}
			t.stateMu.RUnlock()
		}
		log.Error("failed to update stat", zap.Error(err))
		t.setStatus(Status{Message: "Error updating stat", Level: LevelError, UndoVisible: !t.history.Empty()})
		unlock()

		t.prompter.Alert("Failed to update stat")
		return OutcomeFailed, fmt.Errorf("update %s: %w", cell, err)
	}

	t.stateMu.RLock()
	if t.epoch != epoch || !t.store.ApplyConfirmed(cell.Player, cell.Stat, value) {
		t.stateMu.RUnlock()
		log.Warn("stats replaced while update was in flight, confirmation not applied", zap.Int("value", value))
		t.setStatus(Status{Message: "Stats reloaded during update", Level: LevelInfo, UndoVisible: !t.history.Empty()})
		unlock()

		t.record(ctx, t.entryFor(id, cell, delta, previous, value, replay))
		return OutcomeSuperseded, nil
	}
	t.redrawCell(cell, value)

	var outcome Outcome
	switch {
	case replay != nil:
		outcome = OutcomeUndoApplied
		t.setStatus(Status{Message: "Undo applied", Level: LevelSuccess, UndoVisible: !t.history.Empty()})
	case value != previous:
		outcome = OutcomeUpdated
		t.history.Push(history.Entry{Player: cell.Player, Stat: cell.Stat, Delta: delta})
		t.setStatus(Status{
			Message:     fmt.Sprintf("Updated #%d %s %+d", cell.Player, cell.Stat.Label(), delta),
			Level:       LevelSuccess,
			UndoVisible: true,
		})
	default:
		outcome = OutcomeNoChange
		t.setStatus(Status{Message: "No change", Level: LevelInfo, UndoVisible: !t.history.Empty()})
	}
	t.stateMu.RUnlock()
	unlock()

	log.Debug("stat confirmed", zap.Int("previous", previous), zap.Int("value", value))

	if outcome != OutcomeNoChange {
		t.record(ctx, t.entryFor(id, cell, delta, previous, value, replay))
	}

	return outcome, nil
}

func (t *Tracker) entryFor(id string, cell stats.Cell, delta, previous, value int, replay *history.Entry) journal.Entry {
	kind := journal.KindChange
	if replay != nil {
		kind = journal.KindUndo
	}
	return journal.Entry{
		RequestID: id,
		Kind:      kind,
		Player:    cell.Player,
		Stat:      cell.Stat,
		Delta:     delta,
		Previous:  previous,
		Value:     value,
	}
}

// Reset zeroes every counter after the user confirms. History is cleared
// because none of it can be undone against the zeroed state.
func (t *Tracker) Reset(ctx context.Context) (bool, error) {
	if !t.prompter.Confirm("Reset Stats", "Reset all stats to zero? This cannot be undone.") {
		return false, nil
	}

	id := t.newID()
	players, err := t.backend.ResetStats(api.ContextWithRequestID(ctx, id))
	if err != nil {
		t.log.Error("failed to reset stats", zap.String("request_id", id), zap.Error(err))
		t.setStatus(Status{Message: "Error resetting stats", Level: LevelError, UndoVisible: !t.history.Empty()})
		t.prompter.Alert("Failed to reset stats")
		return false, fmt.Errorf("reset stats: %w", err)
	}

	t.replace(players, true)
	t.setStatus(Status{Message: "All stats reset", Level: LevelSuccess, UndoVisible: false})
	t.log.Info("stats reset", zap.String("request_id", id), zap.Int("players", len(players)))

	t.record(ctx, journal.Entry{RequestID: id, Kind: journal.KindReset})
	return true, nil
}

// Export downloads the backend summary and hands it to the downloader
func (t *Tracker) Export(ctx context.Context) (string, error) {
	fail := func(err error) (string, error) {
		t.log.Error("failed to export summary", zap.Error(err))
		t.setStatus(Status{Message: "Error exporting summary", Level: LevelError, UndoVisible: !t.history.Empty()})
		t.prompter.Alert("Failed to export summary")
		return "", fmt.Errorf("export summary: %w", err)
	}

	if t.downloader == nil {
		return fail(errors.New("no downloader configured"))
	}

	exp, err := t.backend.ExportSummary(api.ContextWithRequestID(ctx, t.newID()))
	if err != nil {
		return fail(err)
	}

	path, err := t.downloader.Save(ctx, exp.Filename, exp.Data)
	if err != nil {
		return fail(err)
	}
	if path == "" {
		t.setStatus(Status{Message: "Export cancelled", Level: LevelInfo, UndoVisible: !t.history.Empty()})
		return "", nil
	}

	t.log.Info("summary exported", zap.String("path", path), zap.Int("bytes", len(exp.Data)))
	t.setStatus(Status{Message: "Exported " + exp.Filename, Level: LevelSuccess, UndoVisible: !t.history.Empty()})
	return path, nil
}

// Activity returns the newest journal entries, or nil without a journal
func (t *Tracker) Activity(ctx context.Context, limit int) ([]journal.Entry, error) {
	if t.journal == nil {
		return nil, nil
	}
	return t.journal.Recent(ctx, limit)
}

// Rows returns the current store as rendered rows, sorted by player
func (t *Tracker) Rows() []Row {
	t.layoutMu.RLock()
	layout := t.layout
	t.layoutMu.RUnlock()

	snapshot := t.store.Snapshot()
	nums := t.store.Players()
	rows := make([]Row, 0, len(nums))
	for _, num := range nums {
		ps, ok := snapshot[num]
		if !ok {
			continue
		}
		row := Row{Player: num, Stats: ps}
		for _, st := range stats.AllStatTypes {
			if ref, ok := layout.Ref(stats.Cell{Player: num, Stat: st}); ok {
				row.Cells = append(row.Cells, ref)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// replace swaps the store, rebuilds the element table and redraws
// everything. Confirmations still in flight are discarded.
func (t *Tracker) replace(players map[int]stats.PlayerStats, clearHistory bool) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	t.epoch++
	if clearHistory {
		t.history.Clear()
	}
	t.store.Replace(players)

	layout := stats.NewLayout(t.store.Players())
	t.layoutMu.Lock()
	t.layout = layout
	t.layoutMu.Unlock()

	rows := t.Rows()
	totals := t.store.Totals()
	for _, d := range t.displays {
		d.RenderAll(rows)
		d.SetTotals(totals)
	}
}

func (t *Tracker) redrawCell(cell stats.Cell, value int) {
	t.layoutMu.RLock()
	ref, ok := t.layout.Ref(cell)
	t.layoutMu.RUnlock()

	totals := t.store.Totals()
	for _, d := range t.displays {
		if ok {
			d.SetCell(ref, value)
		}
		d.SetTotals(totals)
	}
}

func (t *Tracker) setStatus(s Status) {
	for _, d := range t.displays {
		d.SetStatus(s)
	}
}

func (t *Tracker) record(ctx context.Context, e journal.Entry) {
	if t.journal == nil {
		return
	}
	if err := t.journal.Record(ctx, e); err != nil {
		t.log.Warn("failed to journal activity", zap.String("request_id", e.RequestID), zap.Error(err))
	}
}

// lockCell serializes modify calls on one cell so responses apply in the
// order requests were issued
func (t *Tracker) lockCell(cell stats.Cell) func() {
	t.cellMu.Lock()
	mu, ok := t.cells[cell]
	if !ok {
		mu = &sync.Mutex{}
		t.cells[cell] = mu
	}
	t.cellMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

type nopPrompter struct{}

func (nopPrompter) Alert(string) {}

func (nopPrompter) Confirm(string, string) bool { return false }
