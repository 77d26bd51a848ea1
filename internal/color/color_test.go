package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-seating/internal/layout"
)

func seat(t *testing.T, s string) layout.SeatID {
	t.Helper()
	id, err := layout.ParseSeatID(s)
	require.NoError(t, err)
	return id
}

func TestPaletteAt_Cycles(t *testing.T) {
	assert.Equal(t, "#FF6B6B", DefaultPalette.At(0))
	assert.Equal(t, "#FF6B6B", DefaultPalette.At(10))
	assert.Equal(t, "#E67E22", DefaultPalette.At(19))
	assert.Equal(t, "", Palette{}.At(3))
}

func TestColorFor_NewLabelTakesNextPaletteEntry(t *testing.T) {
	reg := NewRegistry(map[string]string{"A": "#FF6B6B"})
	assert.Equal(t, "#4ECDC4", ColorFor(DefaultPalette, "B", reg, nil, nil))
	assert.Equal(t, 1, reg.Len(), "ColorFor must not commit")
}

func TestColorFor_StableWithoutConflict(t *testing.T) {
	reg := NewRegistry(map[string]string{"A": "#9B59B6", "B": "#FF6B6B"})
	assert.Equal(t, "#9B59B6", ColorFor(DefaultPalette, "A", reg, []string{"B"}, nil))
	assert.Equal(t, "#9B59B6", ColorFor(DefaultPalette, "A", reg, []string{"A"}, nil), "a label never conflicts with itself")
}

func TestColorFor_ConflictPicksFirstUnused(t *testing.T) {
	reg := NewRegistry(map[string]string{
		"A": "#FF6B6B",
		"B": "#FF6B6B",
		"C": "#4ECDC4",
	})
	got := ColorFor(DefaultPalette, "A", reg, []string{"B", "C"}, nil)
	assert.Equal(t, "#45B7D1", got)
}

func TestColorFor_NewLabelConflict(t *testing.T) {
	// A new label's default is palette[len(registry)] = palette[2].
	reg := NewRegistry(map[string]string{"X": "#45B7D1", "Y": "#FF6B6B"})
	got := ColorFor(DefaultPalette, "Z", reg, []string{"X", "Y"}, nil)
	assert.Equal(t, "#4ECDC4", got)
}

func TestColorFor_RecolorAvoidsHeldRows(t *testing.T) {
	// X conflicts with Y in the new row; Z sits next to X in its old row.
	reg := NewRegistry(map[string]string{"Z": "#FF6B6B", "X": "#4ECDC4", "Y": "#4ECDC4"})
	got := ColorFor(DefaultPalette, "X", reg, []string{"Y"}, []string{"Z"})
	assert.Equal(t, "#45B7D1", got)

	// held labels do not force a change on their own.
	assert.Equal(t, "#4ECDC4", ColorFor(DefaultPalette, "X", reg, nil, []string{"Y"}))
}

func TestColorFor_ExhaustedPaletteFallsBack(t *testing.T) {
	p := Palette{"red", "blue"}
	reg := NewRegistry(map[string]string{"A": "red", "B": "blue", "C": "red"})
	got := ColorFor(p, "C", reg, []string{"A", "B"}, nil)
	assert.Equal(t, p.At(reg.Len()), got)
}

func TestPreview(t *testing.T) {
	reg := NewRegistry(nil)
	assert.Equal(t, "#FF6B6B", Preview(DefaultPalette, "A", reg))
	reg.Set("A", "#E67E22")
	assert.Equal(t, "#E67E22", Preview(DefaultPalette, "A", reg))
	assert.Equal(t, "#4ECDC4", Preview(DefaultPalette, "B", reg))
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	src := map[string]string{"A": "red"}
	reg := NewRegistry(src)
	src["B"] = "blue"
	assert.Equal(t, 1, reg.Len())

	snap := reg.Snapshot()
	snap["C"] = "green"
	_, ok := reg.Get("C")
	assert.False(t, ok)

	reg.Reset()
	assert.Equal(t, 0, reg.Len())
}

func TestSharedRowLabels(t *testing.T) {
	labels := map[layout.SeatID]string{
		seat(t, "front-0-L0"): "A",
		seat(t, "front-0-R6"): "B",
		seat(t, "front-1-L0"): "C",
		seat(t, "back-0-L0"):  "D",
		seat(t, "front-0-L1"): "Self",
	}
	got := SharedRowLabels(labels, []layout.SeatID{seat(t, "front-0-L3"), seat(t, "back-0-R1")}, "Self")
	assert.Equal(t, []string{"A", "B", "D"}, got)
}
