package ticket

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestReadCSV_WithHeader(t *testing.T) {
	in := "Name,Tickets,Purchase Date\nSmith,4,2025-09-20\n\nJones, 14 ,09/21/2025\n"
	orders, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, Order{Name: "Smith", Tickets: 4, PurchaseDate: date("2025-09-20")}, orders[0])
	assert.Equal(t, Order{Name: "Jones", Tickets: 14, PurchaseDate: date("2025-09-21")}, orders[1])
}

func TestReadCSV_ReorderedHeader(t *testing.T) {
	in := "purchase_date,qty,customer\n2025-01-02,2,Lee\n"
	orders, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Lee", orders[0].Name)
	assert.Equal(t, 2, orders[0].Tickets)
}

func TestReadCSV_Positional(t *testing.T) {
	orders, err := ReadCSV(strings.NewReader("Smith,4,2025-09-20\n"))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Smith", orders[0].Name)
}

func TestReadCSV_RejectsMalformedRows(t *testing.T) {
	cases := map[string]string{
		"zero count":     "Name,Tickets,Date\nSmith,0,2025-09-20\n",
		"negative count": "Name,Tickets,Date\nSmith,-2,2025-09-20\n",
		"fraction":       "Name,Tickets,Date\nSmith,2.5,2025-09-20\n",
		"bad date":       "Name,Tickets,Date\nSmith,2,someday\n",
		"missing name":   "Name,Tickets,Date\n,2,2025-09-20\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRow))
			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, 2, rowErr.Line)
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Name,Tickets,Date\n"))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRead_SortsByPurchaseDate(t *testing.T) {
	in := "Name,Tickets,Date\nLate,1,2025-09-22\nEarly,2,2025-09-20\nTieA,1,2025-09-21\nTieB,1,2025-09-21\n"
	orders, err := Read("orders.csv", strings.NewReader(in))
	require.NoError(t, err)
	names := make([]string, len(orders))
	for i, o := range orders {
		names[i] = o.Name
	}
	assert.Equal(t, []string{"Early", "TieA", "TieB", "Late"}, names)
	assert.Equal(t, 5, TotalTickets(orders))
}

func TestTotalTickets_Saturates(t *testing.T) {
	orders := []Order{{Name: "A", Tickets: math.MaxInt}, {Name: "B", Tickets: 2}}
	assert.Equal(t, math.MaxInt, TotalTickets(orders))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Name", "Tickets", "Purchase Date"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Jones", 14, "2025-09-21"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Smith", 4, "2025-09-20"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	orders, err := Read("export.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Smith", orders[0].Name)
	assert.Equal(t, 4, orders[0].Tickets)
	assert.Equal(t, "Jones", orders[1].Name)
}

func TestParseSheetDate_Serial(t *testing.T) {
	got, err := parseSheetDate("45920")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
}
