package seating

import (
	"fmt"
	"strings"

	"github.com/iliyamo/theater-seating/internal/layout"
)

// Mode is the active interaction mode. Exactly one is active at a time.
type Mode int

const (
	ModeNone Mode = iota
	ModeLabeling
	ModeClearing
	ModeSeating
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeLabeling:
		return "labeling"
	case ModeClearing:
		return "clearing"
	case ModeSeating:
		return "seating"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of the four modes.
func (m Mode) Valid() bool { return m >= ModeNone && m <= ModeSeating }

// ParseMode accepts the lower-case mode names.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return ModeNone, nil
	case "labeling", "labelling":
		return ModeLabeling, nil
	case "clearing":
		return ModeClearing, nil
	case "seating":
		return ModeSeating, nil
	}
	return ModeNone, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DragSession tracks one press-move-release gesture. Release always ends
// it, wherever the pointer is.
type DragSession struct {
	active   bool
	start    layout.SeatID
	hasStart bool
}

// Begin opens a session anchored at start.
func (d *DragSession) Begin(start layout.SeatID) {
	d.active, d.start, d.hasStart = true, start, true
}

// Active reports whether a button is held.
func (d *DragSession) Active() bool { return d.active }

// Start returns the seat the session began on.
func (d *DragSession) Start() (layout.SeatID, bool) { return d.start, d.hasStart }

// End closes the session. It is safe to call at any time.
func (d *DragSession) End() { *d = DragSession{} }
