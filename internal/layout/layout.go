// Package layout describes the static shape of the venue: two sections,
// each made of rows that a center aisle splits into a left and a right
// half. A Layout never changes after construction; seat identifiers
// derived from it stay valid for its whole lifetime.
package layout

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a row, side or seat index falls outside
// the configured bounds of a section.
var ErrOutOfRange = errors.New("seat position out of range")

// SectionSpec configures one section of the venue.
//
// Fields:
//
//	Rows         – number of rows in the section.
//	SeatsPerHalf – seats on each side of the aisle in every row.
//	AisleWidth   – aisle width expressed in seat units (rendering hint).
type SectionSpec struct {
	Rows         int `json:"rows"`
	SeatsPerHalf int `json:"seats_per_half"`
	AisleWidth   int `json:"aisle_width"`
}

// Layout is the immutable seating plan of the venue.
type Layout struct {
	specs [sectionCount]SectionSpec
}

// DefaultFront and DefaultBack are the sections of the house the chart
// was first drawn for.
var (
	DefaultFront = SectionSpec{Rows: 4, SeatsPerHalf: 7, AisleWidth: 2}
	DefaultBack  = SectionSpec{Rows: 6, SeatsPerHalf: 6, AisleWidth: 4}
)

// New validates the two section specs and returns a Layout.
func New(front, back SectionSpec) (*Layout, error) {
	for _, s := range []struct {
		name string
		spec SectionSpec
	}{{"front", front}, {"back", back}} {
		if s.spec.Rows <= 0 || s.spec.SeatsPerHalf <= 0 {
			return nil, fmt.Errorf("layout: %s section needs positive rows and seats per half (got %d, %d)",
				s.name, s.spec.Rows, s.spec.SeatsPerHalf)
		}
		if s.spec.AisleWidth < 0 {
			return nil, fmt.Errorf("layout: %s aisle width must not be negative", s.name)
		}
	}
	return &Layout{specs: [sectionCount]SectionSpec{front, back}}, nil
}

// Default returns the stock front/back layout.
func Default() *Layout {
	l, _ := New(DefaultFront, DefaultBack)
	return l
}

// Spec returns the configuration of a section. Unknown sections yield
// the zero spec.
func (l *Layout) Spec(sec Section) SectionSpec {
	if !sec.Valid() {
		return SectionSpec{}
	}
	return l.specs[sec]
}

// RowCount returns the number of rows in sec.
func (l *Layout) RowCount(sec Section) int { return l.Spec(sec).Rows }

// SeatsPerHalf returns the number of seats on each side of the aisle in sec.
func (l *Layout) SeatsPerHalf(sec Section) int { return l.Spec(sec).SeatsPerHalf }

// AisleWidth returns the aisle width of sec in seat units.
func (l *Layout) AisleWidth(sec Section) int { return l.Spec(sec).AisleWidth }

// RowWidth is the size of the combined left+right index space of a row.
func (l *Layout) RowWidth(sec Section) int { return 2 * l.SeatsPerHalf(sec) }

// TotalCapacity sums rows × seats per half × 2 over both sections.
func (l *Layout) TotalCapacity() int {
	total := 0
	for _, sec := range Sections() {
		total += l.RowCount(sec) * l.RowWidth(sec)
	}
	return total
}

// SeatIDAt builds a range-checked seat identifier.
func (l *Layout) SeatIDAt(sec Section, row int, side Side, index int) (SeatID, error) {
	id := SeatID{Section: sec, Row: row, Side: side, Index: index}
	if err := l.Validate(id); err != nil {
		return SeatID{}, err
	}
	return id, nil
}

// Validate reports ErrOutOfRange when id does not address a seat of l.
func (l *Layout) Validate(id SeatID) error {
	if !id.Section.Valid() {
		return fmt.Errorf("%w: unknown section %d", ErrOutOfRange, id.Section)
	}
	if id.Row < 0 || id.Row >= l.RowCount(id.Section) {
		return fmt.Errorf("%w: row %d of %s (rows=%d)", ErrOutOfRange, id.Row, id.Section, l.RowCount(id.Section))
	}
	if !id.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrOutOfRange, rune(id.Side))
	}
	if id.Index < 0 || id.Index >= l.SeatsPerHalf(id.Section) {
		return fmt.Errorf("%w: seat %d of %s (seats per half=%d)", ErrOutOfRange, id.Index, id.Section, l.SeatsPerHalf(id.Section))
	}
	return nil
}

// Contains reports whether id addresses a seat of l.
func (l *Layout) Contains(id SeatID) bool { return l.Validate(id) == nil }

// ContainsRow reports whether k addresses a row of l.
func (l *Layout) ContainsRow(k RowKey) bool {
	return k.Section.Valid() && k.Row >= 0 && k.Row < l.RowCount(k.Section)
}

// SeatAt maps a position of the combined row index space (left half
// first, then right half) to a seat identifier.
func (l *Layout) SeatAt(k RowKey, pos int) (SeatID, error) {
	half := l.SeatsPerHalf(k.Section)
	if pos < 0 || pos >= 2*half {
		return SeatID{}, fmt.Errorf("%w: position %d of %s", ErrOutOfRange, pos, k)
	}
	if pos < half {
		return l.SeatIDAt(k.Section, k.Row, Left, pos)
	}
	return l.SeatIDAt(k.Section, k.Row, Right, pos-half)
}

// Position is the inverse of SeatAt. The id must be valid for l.
func (l *Layout) Position(id SeatID) int {
	if id.Side == Right {
		return l.SeatsPerHalf(id.Section) + id.Index
	}
	return id.Index
}

// FirstRow is the first row of the front section.
func (l *Layout) FirstRow() RowKey { return RowKey{Section: Front, Row: 0} }

// NextRow returns the row after k, continuing from the end of the front
// section into the back section. ok is false past the last back row.
func (l *Layout) NextRow(k RowKey) (next RowKey, ok bool) {
	if k.Row+1 < l.RowCount(k.Section) {
		return RowKey{Section: k.Section, Row: k.Row + 1}, true
	}
	for sec := k.Section + 1; sec.Valid(); sec++ {
		if l.RowCount(sec) > 0 {
			return RowKey{Section: sec, Row: 0}, true
		}
	}
	return RowKey{}, false
}

// Rows lists every row of the venue in front-to-back order.
func (l *Layout) Rows() []RowKey {
	rows := make([]RowKey, 0, l.RowCount(Front)+l.RowCount(Back))
	for _, sec := range Sections() {
		for r := 0; r < l.RowCount(sec); r++ {
			rows = append(rows, RowKey{Section: sec, Row: r})
		}
	}
	return rows
}

// RowSeats lists the seats of row k in combined index order.
func (l *Layout) RowSeats(k RowKey) []SeatID {
	if !l.ContainsRow(k) {
		return nil
	}
	half := l.SeatsPerHalf(k.Section)
	seats := make([]SeatID, 0, 2*half)
	for i := 0; i < half; i++ {
		seats = append(seats, SeatID{Section: k.Section, Row: k.Row, Side: Left, Index: i})
	}
	for i := 0; i < half; i++ {
		seats = append(seats, SeatID{Section: k.Section, Row: k.Row, Side: Right, Index: i})
	}
	return seats
}

// Each calls fn for every seat in front-to-back, left-to-right order.
func (l *Layout) Each(fn func(SeatID)) {
	for _, k := range l.Rows() {
		for _, id := range l.RowSeats(k) {
			fn(id)
		}
	}
}
