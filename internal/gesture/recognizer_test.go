package gesture

import (
	"sync"
	"testing"
	"time"

	"rinktally/internal/stats"
)

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{fn: f}
	c.timers = append(c.timers, t)
	return t
}

// elapse fires every armed timer, as if the threshold passed
func (c *fakeClock) elapse() {
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

type recorded struct {
	mu     sync.Mutex
	deltas []int
}

func (r *recorded) handle(_ stats.Cell, delta int) {
	r.mu.Lock()
	r.deltas = append(r.deltas, delta)
	r.mu.Unlock()
}

func (r *recorded) get() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.deltas...)
}

var cell = stats.Cell{Player: 4, Stat: stats.Takeaways}

func TestShortPress_FiresPlusOne(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))

	r.Press(cell, 1)
	r.Release(cell, 1)
	clock.elapse()

	got := rec.get()
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected exactly one +1, got %v", got)
	}
}

func TestLongPress_FiresMinusOneAndSuppressesRelease(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))

	r.Press(cell, 1)
	clock.elapse()
	r.Release(cell, 1)

	got := rec.get()
	if len(got) != 1 || got[0] != -1 {
		t.Errorf("Expected exactly one -1, got %v", got)
	}
	if r.Pending(cell) {
		t.Error("Expected no pending press after release")
	}
}

func TestCancel_FiresNothing(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))

	r.Press(cell, 1)
	r.Cancel(cell, 1)
	clock.elapse()
	r.Release(cell, 1)

	if got := rec.get(); len(got) != 0 {
		t.Errorf("Expected no deltas, got %v", got)
	}
}

func TestReleaseWithoutPress_Ignored(t *testing.T) {
	rec := &recorded{}
	r := NewRecognizer(rec.handle)

	r.Release(cell, 1)

	if got := rec.get(); len(got) != 0 {
		t.Errorf("Expected no deltas, got %v", got)
	}
}

func TestReleaseBeforePress_StillTaps(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))

	// The release call overtook its press
	r.Release(cell, 7)
	r.Press(cell, 7)
	clock.elapse()

	got := rec.get()
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected exactly one +1, got %v", got)
	}
	if r.Pending(cell) {
		t.Error("Expected no pending press")
	}
	if len(clock.timers) != 0 {
		t.Errorf("Expected no hold timer to be armed, got %d", len(clock.timers))
	}
}

func TestCancelBeforePress_FiresNothing(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))

	r.Cancel(cell, 7)
	r.Press(cell, 7)
	clock.elapse()

	if got := rec.get(); len(got) != 0 {
		t.Errorf("Expected no deltas, got %v", got)
	}
}

func TestEarlyReleaseOfOtherGesture_DoesNotEndPress(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))

	r.Release(cell, 5)
	r.Press(cell, 6)
	clock.elapse()
	r.Release(cell, 6)

	got := rec.get()
	if len(got) != 1 || got[0] != -1 {
		t.Errorf("Expected a single -1 from the hold, got %v", got)
	}
}

func TestRepress_StaleTimerDoesNotFire(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))

	r.Press(cell, 1)
	first := clock.timers[0]
	r.Press(cell, 2)

	// Simulate the first timer racing past Stop
	first.fn()
	r.Release(cell, 2)

	got := rec.get()
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected a single +1 from the second press, got %v", got)
	}
}

func TestCellsAreIndependent(t *testing.T) {
	clock := &fakeClock{}
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithAfterFunc(clock.afterFunc))
	other := stats.Cell{Player: 11, Stat: stats.PlusMinus}

	r.Press(cell, 1)
	r.Press(other, 2)
	r.Release(other, 2)
	clock.elapse()
	r.Release(cell, 1)

	got := rec.get()
	if len(got) != 2 || got[0] != 1 || got[1] != -1 {
		t.Errorf("Expected [+1 -1], got %v", got)
	}
}

func TestRealTimer_LongPress(t *testing.T) {
	rec := &recorded{}
	r := NewRecognizer(rec.handle, WithThreshold(20*time.Millisecond))

	r.Press(cell, 1)
	time.Sleep(80 * time.Millisecond)
	r.Release(cell, 1)

	got := rec.get()
	if len(got) != 1 || got[0] != -1 {
		t.Errorf("Expected exactly one -1, got %v", got)
	}
}
