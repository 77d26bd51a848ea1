// Package ticket reads ticket-order exports (CSV or XLSX) into the
// ordered list of records that batch allocation consumes.
package ticket

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrMalformedRow is returned for rows with a missing name, a non-positive
// ticket count or an unparseable purchase date.
var ErrMalformedRow = errors.New("malformed ticket row")

// ErrEmpty is returned when an export contains no orders.
var ErrEmpty = errors.New("no ticket orders found")

// Order is one purchase: a named party buying Tickets seats on
// PurchaseDate. Name becomes the group label on the chart.
type Order struct {
	Name         string    `json:"name"`
	Tickets      int       `json:"tickets"`
	PurchaseDate time.Time `json:"purchase_date"`
}

// RowError wraps ErrMalformedRow with the 1-based line it came from.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, ErrMalformedRow, e.Reason)
}

func (e *RowError) Unwrap() error { return ErrMalformedRow }

// SortByPurchaseDate orders earliest purchasers first. Orders bought at
// the same instant keep their file order.
func SortByPurchaseDate(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PurchaseDate.Before(orders[j].PurchaseDate)
	})
}

// TotalTickets sums the ticket counts of orders, saturating at
// math.MaxInt.
func TotalTickets(orders []Order) int {
	n := 0
	for _, o := range orders {
		if o.Tickets > math.MaxInt-n {
			return math.MaxInt
		}
		n += o.Tickets
	}
	return n
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"2006/01/02",
}

// ParseDate accepts the date formats box-office exports commonly use.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
