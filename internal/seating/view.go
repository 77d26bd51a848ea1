package seating

import "github.com/iliyamo/theater-seating/internal/layout"

// SeatView is the render state of one seat.
type SeatView struct {
	ID       layout.SeatID `json:"id"`
	Label    string        `json:"label,omitempty"`
	Color    string        `json:"color,omitempty"`
	Selected bool          `json:"selected"`
	Sat      bool          `json:"sat"`
	GroupSat bool          `json:"group_sat"`
}

// Segment is the tag drawn over the seats of one label within one row
// half. First and Last are seat indexes within the half.
type Segment struct {
	Label  string          `json:"label"`
	Color  string          `json:"color"`
	Side   layout.Side     `json:"side"`
	First  int             `json:"first"`
	Last   int             `json:"last"`
	Seats  []layout.SeatID `json:"seats"`
	AllSat bool            `json:"all_sat"`
}

// RowView is one row of the chart.
type RowView struct {
	Section  layout.Section `json:"-"`
	Key      layout.RowKey  `json:"-"`
	Name     string         `json:"row"`
	Left     []SeatView     `json:"left"`
	Right    []SeatView     `json:"right"`
	Segments []Segment      `json:"segments"`
}

// SectionView groups the rows of a section with its aisle width.
type SectionView struct {
	Name       string    `json:"name"`
	AisleWidth int       `json:"aisle_width"`
	Rows       []RowView `json:"rows"`
}

// View is a read-only snapshot of the whole chart.
type View struct {
	Mode         Mode            `json:"mode"`
	Dragging     bool            `json:"dragging"`
	PendingLabel string          `json:"pending_label"`
	PreviewColor string          `json:"preview_color,omitempty"`
	Selection    []layout.SeatID `json:"selection"`
	Sections     []SectionView   `json:"sections"`
	Labeled      int             `json:"labeled"`
	Remaining    int             `json:"remaining_unseated"`
	Capacity     int             `json:"capacity"`
}

// Snapshot builds the render view of the current state.
func (c *Controller) Snapshot() View {
	v := View{
		Mode:         c.mode,
		Dragging:     c.drag.Active(),
		PendingLabel: c.pending,
		PreviewColor: c.PreviewColor(),
		Selection:    c.Selection(),
		Labeled:      len(c.labels),
		Remaining:    c.RemainingUnseatedCount(),
		Capacity:     c.layout.TotalCapacity(),
	}
	for _, sec := range layout.Sections() {
		sv := SectionView{Name: sec.String(), AisleWidth: c.layout.AisleWidth(sec)}
		for r := 0; r < c.layout.RowCount(sec); r++ {
			sv.Rows = append(sv.Rows, c.rowView(layout.RowKey{Section: sec, Row: r}))
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

func (c *Controller) rowView(k layout.RowKey) RowView {
	rv := RowView{Section: k.Section, Key: k, Name: k.String()}
	half := c.layout.SeatsPerHalf(k.Section)
	for _, side := range []layout.Side{layout.Left, layout.Right} {
		seats := make([]SeatView, 0, half)
		for i := 0; i < half; i++ {
			id := layout.SeatID{Section: k.Section, Row: k.Row, Side: side, Index: i}
			sv := SeatView{ID: id, Sat: c.IsSat(id)}
			if lbl, ok := c.labels[id]; ok {
				sv.Label = lbl
				sv.Color, _ = c.colors.Get(lbl)
			}
			_, sv.Selected = c.selection[id]
			seats = append(seats, sv)
		}
		segs := c.segments(side, seats)
		for _, seg := range segs {
			if !seg.AllSat {
				continue
			}
			for _, id := range seg.Seats {
				seats[id.Index].GroupSat = true
			}
		}
		rv.Segments = append(rv.Segments, segs...)
		if side == layout.Left {
			rv.Left = seats
		} else {
			rv.Right = seats
		}
	}
	return rv
}

// segments groups the labeled seats of one row half by label, ordered by
// their first index.
func (c *Controller) segments(side layout.Side, seats []SeatView) []Segment {
	byLabel := map[string]*Segment{}
	order := make([]string, 0)
	for _, s := range seats {
		if s.Label == "" {
			continue
		}
		seg, ok := byLabel[s.Label]
		if !ok {
			seg = &Segment{Label: s.Label, Color: s.Color, Side: side, First: s.ID.Index}
			byLabel[s.Label] = seg
			order = append(order, s.Label)
		}
		seg.Last = s.ID.Index
		seg.Seats = append(seg.Seats, s.ID)
	}
	out := make([]Segment, 0, len(order))
	for _, lbl := range order {
		seg := byLabel[lbl]
		seg.AllSat = c.IsGroupFullySat(seg.Seats)
		out = append(out, *seg)
	}
	return out
}
