// Package queue carries chart events over RabbitMQ: a publisher used by
// the HTTP handlers and an audit consumer that appends each event to a
// log file.
package queue

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/theater-seating/internal/allocation"
)

// DefaultQueueName is the durable queue chart events are published to.
const DefaultQueueName = "seating.events"

// EventKind names what happened to a chart.
type EventKind string

const (
	KindImportCompleted EventKind = "import_completed"
	KindChartReset      EventKind = "chart_reset"
)

// ChartEvent is published after a state change that affects many seats
// at once. Per-seat clicks are not published.
type ChartEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	ChartID    string    `json:"chart_id"`
	Groups     int       `json:"groups"`
	Seats      int       `json:"seats"`
	Labels     []string  `json:"labels,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewImportCompleted describes a committed ticket import. importID is
// also returned to the uploader so log lines can be matched up.
func NewImportCompleted(importID uuid.UUID, chartID string, res *allocation.Result) ChartEvent {
	ev := ChartEvent{
		ID:         importID.String(),
		Kind:       KindImportCompleted,
		ChartID:    chartID,
		OccurredAt: time.Now().UTC(),
	}
	if res != nil {
		ev.Groups = len(res.Groups)
		ev.Seats = res.Seats()
		for _, g := range res.Groups {
			ev.Labels = append(ev.Labels, g.Label)
		}
	}
	return ev
}

// NewChartReset describes a full reset of labels, colors and sat seats.
func NewChartReset(chartID string, clearedSeats int) ChartEvent {
	return ChartEvent{
		ID:         uuid.NewString(),
		Kind:       KindChartReset,
		ChartID:    chartID,
		Seats:      clearedSeats,
		OccurredAt: time.Now().UTC(),
	}
}

// AuditLine renders ev as one human-readable log line.
func (ev ChartEvent) AuditLine() string {
	labels := append([]string(nil), ev.Labels...)
	sort.Strings(labels)
	return fmt.Sprintf("[%s] %s | id=%s | chart=%q | groups=%d | seats=%d | labels=[%s]\n",
		ev.OccurredAt.Format(time.RFC3339), ev.Kind, ev.ID, ev.ChartID, ev.Groups, ev.Seats,
		strings.Join(labels, ","))
}
