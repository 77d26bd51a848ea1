package grid

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

func TestRebuild_MatchesLabelMap(t *testing.T) {
	l := layout.Default()
	labels := map[layout.SeatID]string{
		seat(t, "front-0-L0"): "A",
		seat(t, "front-0-R6"): "A",
		seat(t, "back-5-L5"):  "B",
	}
	g := Rebuild(l, labels)

	l.Each(func(id layout.SeatID) {
		_, labeled := labels[id]
		assert.Equal(t, !labeled, g.IsAvailable(id), id.String())
	})
	assert.Equal(t, l.TotalCapacity()-3, g.Available())
}

func TestRebuild_IgnoresSeatsOutsideLayout(t *testing.T) {
	l := layout.Default()
	labels := map[layout.SeatID]string{
		{Section: layout.Front, Row: 9, Side: layout.Left, Index: 0}: "ghost",
	}
	g := Rebuild(l, labels)
	assert.Equal(t, l.TotalCapacity(), g.Available())
}

func TestCountAvailableInRow(t *testing.T) {
	l := layout.Default()
	g := Rebuild(l, map[layout.SeatID]string{
		seat(t, "front-1-L0"): "A",
		seat(t, "front-1-L1"): "A",
	})
	assert.Equal(t, 14, g.CountAvailableInRow(layout.Front, 0))
	assert.Equal(t, 12, g.CountAvailableInRow(layout.Front, 1))
	assert.Equal(t, 12, g.CountAvailableInRow(layout.Back, 0))
	assert.Equal(t, 0, g.CountAvailableInRow(layout.Back, 6))
}

func TestReserveRelease(t *testing.T) {
	l := layout.Default()
	g := Rebuild(l, nil)
	id := seat(t, "back-2-R3")

	assert.True(t, g.Reserve(id))
	assert.False(t, g.IsAvailable(id))
	assert.False(t, g.Reserve(id), "second reserve must fail")

	g.Release(id)
	assert.True(t, g.IsAvailable(id))
}

func TestCloneIsIndependent(t *testing.T) {
	g := Rebuild(layout.Default(), nil)
	c := g.Clone()
	require.True(t, g.Equal(c))

	c.Reserve(seat(t, "front-0-L0"))
	assert.False(t, g.Equal(c))
	assert.True(t, g.IsAvailable(seat(t, "front-0-L0")))
}
