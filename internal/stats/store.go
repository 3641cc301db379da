package stats

import (
	"fmt"
	"sort"
	"sync"
)

// StatType identifies one of the three tracked counters
type StatType string

const (
	PlusMinus    StatType = "plus_minus"
	BlockedShots StatType = "blocked_shots"
	Takeaways    StatType = "takeaways"
)

// AllStatTypes lists the counters in display order
var AllStatTypes = []StatType{PlusMinus, BlockedShots, Takeaways}

// ParseStatType validates a stat type coming from the frontend
func ParseStatType(s string) (StatType, error) {
	switch StatType(s) {
	case PlusMinus, BlockedShots, Takeaways:
		return StatType(s), nil
	}
	return "", fmt.Errorf("unknown stat type %q", s)
}

// Label returns the human readable name used in status messages
func (t StatType) Label() string {
	switch t {
	case PlusMinus:
		return "+/-"
	case BlockedShots:
		return "Blocked Shots"
	case Takeaways:
		return "Takeaways"
	}
	return string(t)
}

// PlayerStats holds the three counters for one player
type PlayerStats struct {
	PlusMinus    int `json:"plus_minus"`
	BlockedShots int `json:"blocked_shots"`
	Takeaways    int `json:"takeaways"`
}

// Get returns the value of a single counter
func (p PlayerStats) Get(t StatType) int {
	switch t {
	case PlusMinus:
		return p.PlusMinus
	case BlockedShots:
		return p.BlockedShots
	case Takeaways:
		return p.Takeaways
	}
	panic(fmt.Sprintf("stats: unknown stat type %q", t))
}

func (p *PlayerStats) set(t StatType, v int) {
	switch t {
	case PlusMinus:
		p.PlusMinus = v
	case BlockedShots:
		p.BlockedShots = v
	case Takeaways:
		p.Takeaways = v
	default:
		panic(fmt.Sprintf("stats: unknown stat type %q", t))
	}
}

// Totals is the per-stat sum across every player in the store
type Totals struct {
	PlusMinus    int `json:"plus_minus"`
	BlockedShots int `json:"blocked_shots"`
	Takeaways    int `json:"takeaways"`
}

// Get returns the total for a single counter
func (t Totals) Get(s StatType) int {
	return PlayerStats(t).Get(s)
}

// Store mirrors the server-confirmed counters for every player.
// It is only ever written with values the backend has acknowledged.
type Store struct {
	mu      sync.RWMutex
	players map[int]PlayerStats
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{players: make(map[int]PlayerStats)}
}

// Replace swaps the whole mapping, as done after a load or reset
func (s *Store) Replace(players map[int]PlayerStats) {
	next := make(map[int]PlayerStats, len(players))
	for num, ps := range players {
		next[num] = ps
	}

	s.mu.Lock()
	s.players = next
	s.mu.Unlock()
}

// Get returns one counter and whether the player is known
func (s *Store) Get(player int, t StatType) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, ok := s.players[player]
	if !ok {
		return 0, false
	}
	return ps.Get(t), true
}

// ApplyConfirmed sets a single counter to the value returned by the backend.
// It reports false and changes nothing when the player is not present.
func (s *Store) ApplyConfirmed(player int, t StatType, value int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.players[player]
	if !ok {
		return false
	}
	ps.set(t, value)
	s.players[player] = ps
	return true
}

// Totals folds every player's counters into one sum per stat type
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t Totals
	for _, ps := range s.players {
		t.PlusMinus += ps.PlusMinus
		t.BlockedShots += ps.BlockedShots
		t.Takeaways += ps.Takeaways
	}
	return t
}

// Players returns the known player numbers in ascending order
func (s *Store) Players() []int {
	s.mu.RLock()
	nums := make([]int, 0, len(s.players))
	for num := range s.players {
		nums = append(nums, num)
	}
	s.mu.RUnlock()

	sort.Ints(nums)
	return nums
}

// Snapshot returns a copy of the current mapping
func (s *Store) Snapshot() map[int]PlayerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]PlayerStats, len(s.players))
	for num, ps := range s.players {
		out[num] = ps
	}
	return out
}

// Len returns the number of players
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}
