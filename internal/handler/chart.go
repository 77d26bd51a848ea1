package handler

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/theater-seating/internal/layout"
	"github.com/iliyamo/theater-seating/internal/queue"
	"github.com/iliyamo/theater-seating/internal/seating"
)

// ChartHandler exposes the seat state controller over HTTP. The mutex
// serializes every controller call so requests are processed one at a
// time, like UI events.
type ChartHandler struct {
	mu      sync.Mutex
	ctrl    *seating.Controller
	pub     queue.Publisher
	chartID string
	log     *zap.Logger
}

func NewChartHandler(ctrl *seating.Controller, pub queue.Publisher, chartID string, log *zap.Logger) *ChartHandler {
	if ctrl == nil {
		panic("nil controller passed to NewChartHandler")
	}
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChartHandler{ctrl: ctrl, pub: pub, chartID: chartID, log: log}
}

// ----- DTOs -----

type modeReq struct {
	Mode seating.Mode `json:"mode"`
}
type textReq struct {
	Text string `json:"text"`
}
type seatsReq struct {
	Seats []layout.SeatID `json:"seats"`
}

type sectionLayout struct {
	Name string `json:"name"`
	layout.SectionSpec
	Capacity int `json:"capacity"`
}

type groupResp struct {
	Label  string          `json:"label"`
	Color  string          `json:"color"`
	Seats  []layout.SeatID `json:"seats"`
	Sat    int             `json:"sat"`
	AllSat bool            `json:"all_sat"`
}

// publish sends ev without holding the controller lock. Failures are only
// logged.
func (h *ChartHandler) publish(parent context.Context, ev queue.ChartEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 5*time.Second)
	defer cancel()
	if err := h.pub.Publish(ctx, ev); err != nil {
		h.log.Warn("chart event not published", zap.String("event_id", ev.ID), zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

// Layout handles GET /v1/layout.
func (h *ChartHandler) Layout(c echo.Context) error {
	l := h.ctrl.Layout()
	out := make([]sectionLayout, 0, 2)
	for _, sec := range layout.Sections() {
		out = append(out, sectionLayout{
			Name:        sec.String(),
			SectionSpec: l.Spec(sec),
			Capacity:    l.RowCount(sec) * l.RowWidth(sec),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"sections": out, "capacity": l.TotalCapacity()})
}

// Chart handles GET /v1/chart and returns the full snapshot.
func (h *ChartHandler) Chart(c echo.Context) error {
	h.mu.Lock()
	v := h.ctrl.Snapshot()
	h.mu.Unlock()
	return c.JSON(http.StatusOK, v)
}

// SetMode handles PUT /v1/mode.
func (h *ChartHandler) SetMode(c echo.Context) error {
	var req modeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid mode"})
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ctrl.SetMode(req.Mode); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"mode": h.ctrl.Mode()})
}

// ToggleMode handles POST /v1/mode/toggle.
func (h *ChartHandler) ToggleMode(c echo.Context) error {
	var req modeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid mode"})
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ctrl.ToggleMode(req.Mode); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"mode": h.ctrl.Mode()})
}

type seatAction func(ctrl *seating.Controller, ctx context.Context, id layout.SeatID) error

func (h *ChartHandler) seatEvent(action seatAction) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := layout.ParseSeatID(c.Param("seat_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if err := action(h.ctrl, c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, h.seatState(id))
	}
}

func (h *ChartHandler) seatState(id layout.SeatID) echo.Map {
	label := h.ctrl.Labels()[id]
	color, _ := h.ctrl.ColorOf(label)
	return echo.Map{
		"seat":      id,
		"mode":      h.ctrl.Mode(),
		"label":     label,
		"color":     color,
		"sat":       h.ctrl.IsSat(id),
		"selection": h.ctrl.Selection(),
		"dragging":  h.ctrl.Dragging(),
		"remaining": h.ctrl.RemainingUnseatedCount(),
	}
}

// Click handles POST /v1/seats/:seat_id/click.
func (h *ChartHandler) Click(c echo.Context) error {
	return h.seatEvent((*seating.Controller).Click)(c)
}

// Press handles POST /v1/seats/:seat_id/press, the start of a drag.
func (h *ChartHandler) Press(c echo.Context) error {
	return h.seatEvent((*seating.Controller).Press)(c)
}

// Enter handles POST /v1/seats/:seat_id/enter while a drag is held.
func (h *ChartHandler) Enter(c echo.Context) error {
	return h.seatEvent((*seating.Controller).Enter)(c)
}

// Release handles POST /v1/drag/release. It always succeeds.
func (h *ChartHandler) Release(c echo.Context) error {
	h.mu.Lock()
	h.ctrl.Release()
	h.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

// SetPending handles PUT /v1/labels/pending.
func (h *ChartHandler) SetPending(c echo.Context) error {
	var req textReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctrl.SetPendingLabel(req.Text)
	return c.JSON(http.StatusOK, echo.Map{
		"pending_label": h.ctrl.PendingLabel(),
		"preview_color": h.ctrl.PreviewColor(),
	})
}

// SubmitLabel handles POST /v1/labels. An empty text or selection is not
// an error; the response reports applied=false.
func (h *ChartHandler) SubmitLabel(c echo.Context) error {
	var req textReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	applied, err := h.ctrl.SubmitLabel(c.Request().Context(), req.Text)
	if err != nil {
		return writeError(c, err)
	}
	color, _ := h.ctrl.ColorOf(strings.TrimSpace(req.Text))
	return c.JSON(http.StatusOK, echo.Map{"applied": applied, "color": color, "remaining": h.ctrl.RemainingUnseatedCount()})
}

// Groups handles GET /v1/groups, sorted by each group's first seat.
func (h *ChartHandler) Groups(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	groups := h.ctrl.GroupsByLabel()
	out := make([]groupResp, 0, len(groups))
	for lbl, seats := range groups {
		color, _ := h.ctrl.ColorOf(lbl)
		sat := 0
		for _, id := range seats {
			if h.ctrl.IsSat(id) {
				sat++
			}
		}
		out = append(out, groupResp{
			Label: lbl, Color: color, Seats: seats, Sat: sat,
			AllSat: h.ctrl.IsGroupFullySat(seats),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seats[0].Less(out[j].Seats[0]) })
	return c.JSON(http.StatusOK, echo.Map{
		"items":     out,
		"count":     len(out),
		"remaining": h.ctrl.RemainingUnseatedCount(),
	})
}

// ClearGroup handles POST /v1/groups/clear. Only acts in clearing mode.
func (h *ChartHandler) ClearGroup(c echo.Context) error {
	var req seatsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seats"})
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	changed, err := h.ctrl.ClearGroupSeats(c.Request().Context(), req.Seats)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"changed": changed, "mode": h.ctrl.Mode()})
}

// ToggleGroupSat handles POST /v1/groups/sat. Only acts in seating mode.
func (h *ChartHandler) ToggleGroupSat(c echo.Context) error {
	var req seatsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seats"})
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	changed, err := h.ctrl.ToggleGroupSat(c.Request().Context(), req.Seats)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"changed":   changed,
		"all_sat":   h.ctrl.IsGroupFullySat(req.Seats),
		"remaining": h.ctrl.RemainingUnseatedCount(),
	})
}

// ClearLabel handles DELETE /v1/groups/:label. Only acts in clearing mode.
func (h *ChartHandler) ClearLabel(c echo.Context) error {
	label := c.Param("label")
	h.mu.Lock()
	defer h.mu.Unlock()
	n, err := h.ctrl.ClearLabel(c.Request().Context(), label)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"label": label, "cleared": n})
}

// ClearAll handles DELETE /v1/labels: a full, irreversible reset.
func (h *ChartHandler) ClearAll(c echo.Context) error {
	h.mu.Lock()
	cleared := len(h.ctrl.Labels())
	err := h.ctrl.ClearAllLabels(c.Request().Context())
	h.mu.Unlock()
	if err != nil {
		return writeError(c, err)
	}
	h.publish(c.Request().Context(), queue.NewChartReset(h.chartID, cleared))
	return c.NoContent(http.StatusNoContent)
}
