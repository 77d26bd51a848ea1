package ticket

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// columns holds the zero-based positions of the three fields.
type columns struct {
	name, tickets, date int
}

var positional = columns{name: 0, tickets: 1, date: 2}

var headerAliases = map[string]string{
	"name":          "name",
	"customer":      "name",
	"customer name": "name",
	"group":         "name",
	"party":         "name",
	"tickets":       "tickets",
	"ticket count":  "tickets",
	"ticketcount":   "tickets",
	"quantity":      "tickets",
	"qty":           "tickets",
	"seats":         "tickets",
	"purchase date": "date",
	"purchasedate":  "date",
	"purchased":     "date",
	"order date":    "date",
	"date":          "date",
}

// detectColumns maps a header row to column positions. ok is false when
// the row does not look like a header.
func detectColumns(header []string) (columns, bool) {
	c := columns{name: -1, tickets: -1, date: -1}
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, "_", " ")))
		switch headerAliases[key] {
		case "name":
			if c.name < 0 {
				c.name = i
			}
		case "tickets":
			if c.tickets < 0 {
				c.tickets = i
			}
		case "date":
			if c.date < 0 {
				c.date = i
			}
		}
	}
	if c.name < 0 || c.tickets < 0 || c.date < 0 {
		return columns{}, false
	}
	return c, true
}

// parseRows turns raw cells into orders. Blank rows are skipped; any
// other bad row aborts the whole read.
func parseRows(rows [][]string, parseDate func(string) (time.Time, error)) ([]Order, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	cols, hasHeader := detectColumns(rows[0])
	start := 1
	if !hasHeader {
		cols, start = positional, 0
	}
	orders := make([]Order, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		if blank(row) {
			continue
		}
		name := strings.TrimSpace(cell(row, cols.name))
		if name == "" {
			return nil, &RowError{Line: line, Reason: "missing name"}
		}
		n, err := parseCount(cell(row, cols.tickets))
		if err != nil {
			return nil, &RowError{Line: line, Reason: err.Error()}
		}
		date, err := parseDate(cell(row, cols.date))
		if err != nil {
			return nil, &RowError{Line: line, Reason: err.Error()}
		}
		orders = append(orders, Order{Name: name, Tickets: n, PurchaseDate: date})
	}
	if len(orders) == 0 {
		return nil, ErrEmpty
	}
	return orders, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("ticket count %q is not a whole number", s)
		}
		n = int(f)
	}
	if n <= 0 {
		return 0, fmt.Errorf("ticket count must be positive, got %d", n)
	}
	return n, nil
}

// ReadCSV decodes a comma-separated export. A header row naming the
// name, ticket count and purchase date columns is optional; without one
// the columns are taken in that order.
func ReadCSV(r io.Reader) ([]Order, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRows(rows, ParseDate)
}

// ReadXLSX decodes the first sheet of a spreadsheet export. Date cells
// may arrive formatted or as raw serial numbers.
func ReadXLSX(r io.Reader) ([]Order, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows, parseSheetDate)
}

func parseSheetDate(s string) (time.Time, error) {
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"1/2/06", "01-02-06", "1/2/06 15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	return excelize.ExcelDateToTime(serial, false)
}

// Read picks a decoder from the file extension (.xlsx, otherwise CSV)
// and returns the orders sorted by ascending purchase date.
func Read(filename string, r io.Reader) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		orders, err = ReadXLSX(r)
	default:
		orders, err = ReadCSV(r)
	}
	if err != nil {
		return nil, err
	}
	SortByPurchaseDate(orders)
	return orders, nil
}
