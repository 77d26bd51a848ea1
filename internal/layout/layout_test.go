package layout

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCapacity(t *testing.T) {
	l := Default()
	assert.Equal(t, 4, l.RowCount(Front))
	assert.Equal(t, 7, l.SeatsPerHalf(Front))
	assert.Equal(t, 6, l.RowCount(Back))
	assert.Equal(t, 6, l.SeatsPerHalf(Back))
	// 4*7*2 + 6*6*2
	assert.Equal(t, 128, l.TotalCapacity())
}

func TestNew_RejectsEmptySections(t *testing.T) {
	_, err := New(SectionSpec{Rows: 0, SeatsPerHalf: 3}, DefaultBack)
	assert.Error(t, err)
	_, err = New(DefaultFront, SectionSpec{Rows: 2, SeatsPerHalf: 0})
	assert.Error(t, err)
	_, err = New(DefaultFront, SectionSpec{Rows: 2, SeatsPerHalf: 2, AisleWidth: -1})
	assert.Error(t, err)
}

func TestSeatIDAt_OutOfRange(t *testing.T) {
	l := Default()

	id, err := l.SeatIDAt(Front, 3, Right, 6)
	require.NoError(t, err)
	assert.Equal(t, "front-3-R6", id.String())

	cases := []struct {
		name  string
		sec   Section
		row   int
		side  Side
		index int
	}{
		{"row past front", Front, 4, Left, 0},
		{"negative row", Back, -1, Left, 0},
		{"index past half", Back, 0, Right, 6},
		{"bad side", Front, 0, Side('X'), 0},
		{"bad section", Section(7), 0, Left, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.SeatIDAt(tc.sec, tc.row, tc.side, tc.index)
			assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)
		})
	}
}

func TestParseSeatID(t *testing.T) {
	id, err := ParseSeatID("back-5-R2")
	require.NoError(t, err)
	assert.Equal(t, SeatID{Section: Back, Row: 5, Side: Right, Index: 2}, id)

	for _, bad := range []string{"", "front", "front-0", "front-x-L1", "front-0-Q1", "front-0-L", "middle-0-L1"} {
		_, err := ParseSeatID(bad)
		assert.ErrorIs(t, err, ErrOutOfRange, bad)
	}
}

func TestSeatID_JSONMapKey(t *testing.T) {
	in := map[SeatID]string{
		{Section: Front, Row: 0, Side: Left, Index: 1}: "A",
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"front-0-L1":"A"}`, string(b))

	var out map[SeatID]string
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestSeatAtAndPosition(t *testing.T) {
	l := Default()
	row := RowKey{Section: Front, Row: 1}

	id, err := l.SeatAt(row, 0)
	require.NoError(t, err)
	assert.Equal(t, "front-1-L0", id.String())

	id, err = l.SeatAt(row, 7)
	require.NoError(t, err)
	assert.Equal(t, "front-1-R0", id.String())
	assert.Equal(t, 7, l.Position(id))

	_, err = l.SeatAt(row, 14)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNextRow_WrapsFrontIntoBack(t *testing.T) {
	l := Default()

	next, ok := l.NextRow(RowKey{Section: Front, Row: 3})
	require.True(t, ok)
	assert.Equal(t, RowKey{Section: Back, Row: 0}, next)

	_, ok = l.NextRow(RowKey{Section: Back, Row: 5})
	assert.False(t, ok)

	assert.Len(t, l.Rows(), 10)
}

func TestEach_VisitsEverySeatOnce(t *testing.T) {
	l := Default()
	seen := map[SeatID]bool{}
	l.Each(func(id SeatID) {
		assert.False(t, seen[id], "visited twice: %s", id)
		assert.True(t, l.Contains(id))
		seen[id] = true
	})
	assert.Len(t, seen, l.TotalCapacity())
}

func TestSortSeats(t *testing.T) {
	ids := []SeatID{
		{Section: Back, Row: 0, Side: Left, Index: 0},
		{Section: Front, Row: 1, Side: Left, Index: 3},
		{Section: Front, Row: 1, Side: Right, Index: 0},
		{Section: Front, Row: 0, Side: Right, Index: 6},
	}
	SortSeats(ids)
	got := make([]string, len(ids))
	for i, id := range ids {
		got[i] = id.String()
	}
	assert.Equal(t, []string{"front-0-R6", "front-1-L3", "front-1-R0", "back-0-L0"}, got)
}
