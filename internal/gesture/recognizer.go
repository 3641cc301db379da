// Package gesture turns press/release pairs on a stat cell into counter
// deltas: a tap adds one, a hold past the threshold subtracts one.
package gesture

import (
	"sync"
	"time"

	"rinktally/internal/stats"
)

// LongPressThreshold is how long a press must be held to count as a hold
const LongPressThreshold = 550 * time.Millisecond

// Timer is the subset of *time.Timer the recognizer needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Handler receives the delta produced by a gesture
type Handler func(cell stats.Cell, delta int)

type press struct {
	token    uint64
	timer    Timer
	longDone bool
}

// ended is a release or cancel that arrived before its press
type ended struct {
	token uint64
	tap   bool
}

// Recognizer tracks at most one press per cell. Every gesture carries a
// token chosen by the caller; press, release and cancel of one gesture
// share it, so a release delivered before its press is still matched.
type Recognizer struct {
	mu        sync.Mutex
	presses   map[stats.Cell]*press
	early     map[stats.Cell]ended
	threshold time.Duration
	afterFunc AfterFunc
	handler   Handler
}

// Option configures a Recognizer
type Option func(*Recognizer)

// WithThreshold overrides the long-press threshold
func WithThreshold(d time.Duration) Option {
	return func(r *Recognizer) {
		r.threshold = d
	}
}

// WithAfterFunc replaces the timer source (used by tests)
func WithAfterFunc(fn AfterFunc) Option {
	return func(r *Recognizer) {
		r.afterFunc = fn
	}
}

// NewRecognizer creates a recognizer that reports deltas to handler
func NewRecognizer(handler Handler, opts ...Option) *Recognizer {
	r := &Recognizer{
		presses:   make(map[stats.Cell]*press),
		early:     make(map[stats.Cell]ended),
		threshold: LongPressThreshold,
		afterFunc: realAfterFunc,
		handler:   handler,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Press starts gesture token on cell. A press already in progress on the
// same cell is abandoned without firing.
func (r *Recognizer) Press(cell stats.Cell, token uint64) {
	r.mu.Lock()
	if e, ok := r.early[cell]; ok && e.token == token {
		// Release or cancel already seen; the gesture is over
		delete(r.early, cell)
		r.mu.Unlock()
		if e.tap {
			r.handler(cell, +1)
		}
		return
	}

	if p, ok := r.presses[cell]; ok {
		p.timer.Stop()
	}
	p := &press{token: token}
	p.timer = r.afterFunc(r.threshold, func() { r.fireLong(cell, token) })
	r.presses[cell] = p
	r.mu.Unlock()
}

// Release ends the gesture; a tap fires +1 unless the hold already fired
func (r *Recognizer) Release(cell stats.Cell, token uint64) {
	r.mu.Lock()
	p, ok := r.presses[cell]
	if !ok || p.token != token {
		r.early[cell] = ended{token: token, tap: true}
		r.mu.Unlock()
		return
	}
	delete(r.presses, cell)
	p.timer.Stop()
	tap := !p.longDone
	r.mu.Unlock()

	if tap {
		r.handler(cell, +1)
	}
}

// Cancel abandons the gesture without firing
func (r *Recognizer) Cancel(cell stats.Cell, token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.presses[cell]
	if !ok || p.token != token {
		r.early[cell] = ended{token: token}
		return
	}
	p.timer.Stop()
	delete(r.presses, cell)
}

// Pending reports whether a press is in progress on cell
func (r *Recognizer) Pending(cell stats.Cell) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.presses[cell]
	return ok
}

func (r *Recognizer) fireLong(cell stats.Cell, token uint64) {
	r.mu.Lock()
	p, ok := r.presses[cell]
	if !ok || p.token != token || p.longDone {
		r.mu.Unlock()
		return
	}
	p.longDone = true
	r.mu.Unlock()

	r.handler(cell, -1)
}
