// Package allocation finds and reserves free seats on a grid: single
// next-available lookups, all-or-nothing contiguous blocks, and batch
// seating of ticket orders.
package allocation

import (
	"github.com/iliyamo/theater-seating/internal/grid"
	"github.com/iliyamo/theater-seating/internal/layout"
)

// Direction is the scan direction across a row's combined index space.
type Direction int

const (
	Forward  Direction = iota // left half to right half
	Backward                  // right half to left half
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// RowDirection returns the serpentine scan direction of a row: even rows
// run forward, odd rows backward, so a group that spills over a row end
// continues on the same side of the next row.
func RowDirection(row int) Direction {
	if row%2 == 0 {
		return Forward
	}
	return Backward
}

// scanOrder lists every position of a row of the given width in dir.
func scanOrder(width int, dir Direction) []int {
	order := make([]int, width)
	for i := range order {
		if dir == Forward {
			order[i] = i
		} else {
			order[i] = width - 1 - i
		}
	}
	return order
}

// wrapOrder lists every position of a row starting at from, running to
// the row end in dir, then wrapping to the row start and stopping just
// before from.
func wrapOrder(width, from int, dir Direction) []int {
	order := make([]int, 0, width)
	if dir == Forward {
		for p := from; p < width; p++ {
			order = append(order, p)
		}
		for p := 0; p < from; p++ {
			order = append(order, p)
		}
		return order
	}
	for p := from; p >= 0; p-- {
		order = append(order, p)
	}
	for p := width - 1; p > from; p-- {
		order = append(order, p)
	}
	return order
}

// FindNext returns the first free seat at or after start. Within a row
// the search begins at preferred (clamped to the row) in dir and wraps,
// so the row is searched completely before moving on. Rows continue
// front to back; ok is false when no seat is free anywhere after start.
func FindNext(g *grid.Grid, start layout.RowKey, preferred int, dir Direction) (layout.SeatID, bool) {
	l := g.Layout()
	for k, ok := start, l.ContainsRow(start); ok; k, ok = l.NextRow(k) {
		width := l.RowWidth(k.Section)
		from := preferred
		if from < 0 {
			from = 0
		}
		if from >= width {
			from = width - 1
		}
		for _, pos := range wrapOrder(width, from, dir) {
			id, err := l.SeatAt(k, pos)
			if err == nil && g.IsAvailable(id) {
				return id, true
			}
		}
	}
	return layout.SeatID{}, false
}

// AllocateBlock reserves count seats starting at row start and returns
// them in allocation order. Each row is scanned in its RowDirection; a
// run of free seats broken before it covers the remaining demand is
// discarded, and the run still open at the row end is kept so the group
// continues on the next row. Seats are reserved on g as each row is
// taken. When the demand cannot be met before the last row, every seat
// reserved by this call is released again and nil is returned, leaving g
// exactly as it was. Counts above the venue capacity are rejected up front.
func AllocateBlock(g *grid.Grid, count int, start layout.RowKey) []layout.SeatID {
	l := g.Layout()
	if count <= 0 || count > l.TotalCapacity() {
		return nil
	}
	taken := make([]layout.SeatID, 0, count)
	need := count

	for k, ok := start, l.ContainsRow(start); ok; k, ok = l.NextRow(k) {
		var run []layout.SeatID
		for _, pos := range scanOrder(l.RowWidth(k.Section), RowDirection(k.Row)) {
			id, err := l.SeatAt(k, pos)
			if err != nil || !g.IsAvailable(id) {
				run = run[:0]
				continue
			}
			run = append(run, id)
			if len(run) == need {
				break
			}
		}
		for _, id := range run {
			// run holds only seats just seen free, so Reserve cannot fail.
			if g.Reserve(id) {
				taken = append(taken, id)
			}
		}
		need = count - len(taken)
		if need == 0 {
			return taken
		}
	}

	for _, id := range taken {
		g.Release(id)
	}
	return nil
}
