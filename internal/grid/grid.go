// Package grid projects a label map onto the venue layout as a per-seat
// availability matrix. A Grid is never authoritative: it is rebuilt from
// the labels whenever allocation runs and discarded afterwards.
package grid

import (
	"github.com/iliyamo/theater-seating/internal/layout"
)

// Grid holds one availability flag per seat (true = free). Rows are
// stored in the combined index space: left half first, then right half.
type Grid struct {
	layout *layout.Layout
	free   map[layout.RowKey][]bool
}

// Rebuild marks every labeled seat unavailable and every other seat of
// l available. Labels for seats outside l are ignored.
func Rebuild(l *layout.Layout, labels map[layout.SeatID]string) *Grid {
	g := &Grid{layout: l, free: make(map[layout.RowKey][]bool, len(l.Rows()))}
	for _, k := range l.Rows() {
		row := make([]bool, l.RowWidth(k.Section))
		for i := range row {
			row[i] = true
		}
		g.free[k] = row
	}
	for id := range labels {
		if l.Contains(id) {
			g.free[id.RowKey()][l.Position(id)] = false
		}
	}
	return g
}

// Layout returns the layout the grid was built from.
func (g *Grid) Layout() *layout.Layout { return g.layout }

// IsAvailable reports whether id is free. Seats outside the layout are
// never available.
func (g *Grid) IsAvailable(id layout.SeatID) bool {
	if !g.layout.Contains(id) {
		return false
	}
	return g.free[id.RowKey()][g.layout.Position(id)]
}

// CountAvailableInRow counts the free seats of one row.
func (g *Grid) CountAvailableInRow(sec layout.Section, row int) int {
	n := 0
	for _, ok := range g.free[layout.RowKey{Section: sec, Row: row}] {
		if ok {
			n++
		}
	}
	return n
}

// Available counts the free seats of the whole venue.
func (g *Grid) Available() int {
	n := 0
	for _, k := range g.layout.Rows() {
		n += g.CountAvailableInRow(k.Section, k.Row)
	}
	return n
}

// Reserve marks id unavailable. It reports false if id was not free.
func (g *Grid) Reserve(id layout.SeatID) bool {
	if !g.IsAvailable(id) {
		return false
	}
	g.free[id.RowKey()][g.layout.Position(id)] = false
	return true
}

// Release marks id available again.
func (g *Grid) Release(id layout.SeatID) {
	if g.layout.Contains(id) {
		g.free[id.RowKey()][g.layout.Position(id)] = true
	}
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{layout: g.layout, free: make(map[layout.RowKey][]bool, len(g.free))}
	for k, row := range g.free {
		c.free[k] = append([]bool(nil), row...)
	}
	return c
}

// Equal reports whether g and other agree on every seat.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || len(g.free) != len(other.free) {
		return false
	}
	for k, row := range g.free {
		o, ok := other.free[k]
		if !ok || len(o) != len(row) {
			return false
		}
		for i := range row {
			if row[i] != o[i] {
				return false
			}
		}
	}
	return true
}
