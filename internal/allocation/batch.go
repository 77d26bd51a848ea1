package allocation

import (
	"errors"
	"fmt"

	"github.com/iliyamo/theater-seating/internal/grid"
	"github.com/iliyamo/theater-seating/internal/layout"
	"github.com/iliyamo/theater-seating/internal/ticket"
)

// ErrCapacityExceeded is returned before any seat is touched when a batch
// asks for more seats than the venue holds.
var ErrCapacityExceeded = errors.New("requested seats exceed venue capacity")

// AllocationFailedError names the first group whose block could not be
// seated. The batch that produced it has been rolled back.
type AllocationFailedError struct {
	Label     string
	Requested int
}

func (e *AllocationFailedError) Error() string {
	return fmt.Sprintf("could not seat group %q (%d seats)", e.Label, e.Requested)
}

// Group is the seats assigned to one label by a batch.
type Group struct {
	Label string          `json:"label"`
	Seats []layout.SeatID `json:"seats"`
}

// Result lists the groups of a successful batch in ticket order. Orders
// sharing a name are merged into one group.
type Result struct {
	Groups []Group `json:"groups"`
}

// ByLabel returns the label → seats view of r.
func (r *Result) ByLabel() map[string][]layout.SeatID {
	out := make(map[string][]layout.SeatID, len(r.Groups))
	for _, g := range r.Groups {
		out[g.Label] = g.Seats
	}
	return out
}

// Seats counts every seat assigned by r.
func (r *Result) Seats() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Seats)
	}
	return n
}

// AllocateForTickets seats orders, which must already be sorted by
// ascending purchase date, front to back. A cursor starting at the first
// front row feeds each AllocateBlock call; it only moves past a row once
// that row has no free seat left. The batch is all-or-nothing: on the
// first order that cannot be seated every reservation made by the batch
// is released and an *AllocationFailedError is returned.
func AllocateForTickets(g *grid.Grid, orders []ticket.Order) (*Result, error) {
	l := g.Layout()
	if err := checkCapacity(orders, l.TotalCapacity()); err != nil {
		return nil, err
	}

	res := &Result{}
	index := make(map[string]int, len(orders))
	cursor := l.FirstRow()

	for _, o := range orders {
		seats := AllocateBlock(g, o.Tickets, cursor)
		if len(seats) == 0 {
			rollback(g, res)
			return nil, &AllocationFailedError{Label: o.Name, Requested: o.Tickets}
		}
		if i, ok := index[o.Name]; ok {
			res.Groups[i].Seats = append(res.Groups[i].Seats, seats...)
		} else {
			index[o.Name] = len(res.Groups)
			res.Groups = append(res.Groups, Group{Label: o.Name, Seats: seats})
		}
		cursor = advance(g, seats[len(seats)-1].RowKey())
	}
	return res, nil
}

// checkCapacity sums ticket counts, stopping as soon as the total passes
// capacity so huge counts cannot wrap around.
func checkCapacity(orders []ticket.Order, capacity int) error {
	want := 0
	for _, o := range orders {
		if o.Tickets > capacity-want {
			return fmt.Errorf("%w: order %q asks for %d, capacity %d", ErrCapacityExceeded, o.Name, o.Tickets, capacity)
		}
		want += max(o.Tickets, 0)
	}
	return nil
}

// advance keeps the cursor on the row a block ended in while that row
// still has a free seat, and otherwise moves to the following row.
func advance(g *grid.Grid, last layout.RowKey) layout.RowKey {
	if g.CountAvailableInRow(last.Section, last.Row) > 0 {
		return last
	}
	if next, ok := g.Layout().NextRow(last); ok {
		return next
	}
	return last
}

func rollback(g *grid.Grid, res *Result) {
	for _, grp := range res.Groups {
		for _, id := range grp.Seats {
			g.Release(id)
		}
	}
}
