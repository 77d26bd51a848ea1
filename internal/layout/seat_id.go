package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Section is one of the independent seating blocks of the venue.
type Section uint8

const (
	Front Section = iota
	Back

	sectionCount = 2
)

// Sections lists the sections in front-to-back order.
func Sections() []Section { return []Section{Front, Back} }

// Valid reports whether s is a known section.
func (s Section) Valid() bool { return s < sectionCount }

func (s Section) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	}
	return "section(" + strconv.Itoa(int(s)) + ")"
}

// ParseSection accepts "front" or "back" in any case.
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front":
		return Front, nil
	case "back":
		return Back, nil
	}
	return 0, fmt.Errorf("%w: unknown section %q", ErrOutOfRange, s)
}

// Side is the half of a row relative to the center aisle.
type Side byte

const (
	Left  Side = 'L'
	Right Side = 'R'
)

// Valid reports whether s is L or R.
func (s Side) Valid() bool { return s == Left || s == Right }

func (s Side) String() string { return string(rune(s)) }

// SeatID identifies one seat by section, zero-based row, side and
// zero-based index within the half. Its text form is "front-0-L3".
// SeatID is comparable and is used directly as a map key.
type SeatID struct {
	Section Section
	Row     int
	Side    Side
	Index   int
}

func (id SeatID) String() string {
	return fmt.Sprintf("%s-%d-%c%d", id.Section, id.Row, rune(id.Side), id.Index)
}

// RowKey returns the (section,row) pair the seat sits in.
func (id SeatID) RowKey() RowKey { return RowKey{Section: id.Section, Row: id.Row} }

// MarshalText lets SeatID act as a JSON object key and string value.
func (id SeatID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses the "front-0-L3" form.
func (id *SeatID) UnmarshalText(b []byte) error {
	parsed, err := ParseSeatID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseSeatID parses the text form of a seat identifier. It checks the
// syntax only; use Layout.Validate for bounds.
func ParseSeatID(s string) (SeatID, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[2]) < 2 {
		return SeatID{}, fmt.Errorf("%w: malformed seat id %q", ErrOutOfRange, s)
	}
	sec, err := ParseSection(parts[0])
	if err != nil {
		return SeatID{}, err
	}
	row, err := strconv.Atoi(parts[1])
	if err != nil {
		return SeatID{}, fmt.Errorf("%w: malformed row in seat id %q", ErrOutOfRange, s)
	}
	side := Side(strings.ToUpper(parts[2][:1])[0])
	if !side.Valid() {
		return SeatID{}, fmt.Errorf("%w: malformed side in seat id %q", ErrOutOfRange, s)
	}
	idx, err := strconv.Atoi(parts[2][1:])
	if err != nil {
		return SeatID{}, fmt.Errorf("%w: malformed index in seat id %q", ErrOutOfRange, s)
	}
	return SeatID{Section: sec, Row: row, Side: side, Index: idx}, nil
}

// Less orders seats front-to-back, then left half before right half,
// then by index.
func (id SeatID) Less(other SeatID) bool {
	if id.Section != other.Section {
		return id.Section < other.Section
	}
	if id.Row != other.Row {
		return id.Row < other.Row
	}
	if id.Side != other.Side {
		return id.Side == Left
	}
	return id.Index < other.Index
}

// SortSeats orders ids in place with SeatID.Less.
func SortSeats(ids []SeatID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}

// RowKey is a (section,row) pair.
type RowKey struct {
	Section Section
	Row     int
}

func (k RowKey) String() string { return fmt.Sprintf("%s-%d", k.Section, k.Row) }

// Less orders rows front-to-back.
func (k RowKey) Less(other RowKey) bool {
	if k.Section != other.Section {
		return k.Section < other.Section
	}
	return k.Row < other.Row
}

func (s Side) MarshalText() ([]byte, error) { return []byte{byte(s)}, nil }

func (s *Side) UnmarshalText(b []byte) error {
	if len(b) != 1 || !Side(b[0]).Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrOutOfRange, b)
	}
	*s = Side(b[0])
	return nil
}
