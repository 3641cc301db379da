package stats

import "fmt"

// Cell addresses one counter of one player
type Cell struct {
	Player int      `json:"player"`
	Stat   StatType `json:"stat"`
}

func (c Cell) String() string {
	return fmt.Sprintf("#%d %s", c.Player, c.Stat)
}

// CellRef pairs a cell with the frontend element that displays it
type CellRef struct {
	Cell
	ElementID string `json:"elementId"`
}

// TotalElementID returns the id of the element showing the total for t
func TotalElementID(t StatType) string {
	switch t {
	case PlusMinus:
		return "total-plus-minus"
	case BlockedShots:
		return "total-blocked"
	case Takeaways:
		return "total-takeaways"
	}
	return ""
}

// Layout is the lookup table from cells to frontend elements.
// It is built once per wholesale store replacement.
type Layout struct {
	refs map[Cell]CellRef
}

// NewLayout builds the element table for the given players
func NewLayout(players []int) *Layout {
	l := &Layout{refs: make(map[Cell]CellRef, len(players)*len(AllStatTypes))}
	for _, num := range players {
		for _, t := range AllStatTypes {
			c := Cell{Player: num, Stat: t}
			l.refs[c] = CellRef{Cell: c, ElementID: fmt.Sprintf("%s_%d", t, num)}
		}
	}
	return l
}

// Ref returns the element reference for a cell
func (l *Layout) Ref(c Cell) (CellRef, bool) {
	if l == nil {
		return CellRef{}, false
	}
	ref, ok := l.refs[c]
	return ref, ok
}

// Refs returns every reference in the table
func (l *Layout) Refs() []CellRef {
	if l == nil {
		return nil
	}
	out := make([]CellRef, 0, len(l.refs))
	for _, ref := range l.refs {
		out = append(out, ref)
	}
	return out
}
