package history

import (
	"testing"

	"rinktally/internal/stats"
)

func TestPushPop_LIFO(t *testing.T) {
	s := NewStack()
	s.Push(Entry{Player: 4, Stat: stats.PlusMinus, Delta: 1})
	s.Push(Entry{Player: 11, Stat: stats.Takeaways, Delta: -1})

	e, ok := s.Pop()
	if !ok || e.Player != 11 || e.Delta != -1 {
		t.Errorf("Expected most recent entry #11 -1, got %+v (ok=%v)", e, ok)
	}
	e, ok = s.Pop()
	if !ok || e.Player != 4 {
		t.Errorf("Expected entry #4, got %+v (ok=%v)", e, ok)
	}
	if _, ok := s.Pop(); ok {
		t.Error("Expected empty stack after two pops")
	}
}

func TestPush_EvictsOldestPastCapacity(t *testing.T) {
	s := NewStack()
	for i := 1; i <= Capacity+1; i++ {
		s.Push(Entry{Player: i, Stat: stats.BlockedShots, Delta: 1})
	}

	if s.Len() != Capacity {
		t.Fatalf("Expected %d entries, got %d", Capacity, s.Len())
	}

	entries := s.Entries()
	if entries[0].Player != 2 {
		t.Errorf("Expected oldest surviving entry to be #2, got #%d", entries[0].Player)
	}
	if entries[len(entries)-1].Player != Capacity+1 {
		t.Errorf("Expected newest entry last, got #%d", entries[len(entries)-1].Player)
	}
}

func TestPush_NeverExceedsCapacity(t *testing.T) {
	s := NewStack()
	for i := 0; i < 200; i++ {
		s.Push(Entry{Player: i % 7, Stat: stats.Takeaways, Delta: 1})
		if s.Len() > Capacity {
			t.Fatalf("Stack grew to %d after %d pushes", s.Len(), i+1)
		}
	}
}

func TestClear(t *testing.T) {
	s := NewStack()
	s.Push(Entry{Player: 1, Stat: stats.PlusMinus, Delta: 1})
	s.Clear()

	if !s.Empty() {
		t.Error("Expected empty stack after Clear")
	}
}

func TestInverse(t *testing.T) {
	e := Entry{Player: 3, Stat: stats.Takeaways, Delta: 1}
	if e.Inverse() != -1 {
		t.Errorf("Expected inverse -1, got %d", e.Inverse())
	}
}
