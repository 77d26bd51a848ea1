// Package seating holds the seat state controller: the interaction mode,
// the current selection and drag gesture, and the label, color and sat
// maps that every user action mutates. All mutation goes through the
// Controller, which persists each changed map in full.
//
// A Controller is not safe for concurrent use; callers process one event
// at a time.
package seating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/theater-seating/internal/allocation"
	"github.com/iliyamo/theater-seating/internal/color"
	"github.com/iliyamo/theater-seating/internal/grid"
	"github.com/iliyamo/theater-seating/internal/layout"
	"github.com/iliyamo/theater-seating/internal/store"
	"github.com/iliyamo/theater-seating/internal/ticket"
)

// ErrUnknownSeat is returned for seat ids outside the layout. It also
// matches layout.ErrOutOfRange.
var ErrUnknownSeat = errors.New("unknown seat")

// Option customises a Controller.
type Option func(*Controller)

// WithPalette replaces the default color palette.
func WithPalette(p color.Palette) Option {
	return func(c *Controller) {
		if len(p) > 0 {
			c.palette = p
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

type seatSet map[layout.SeatID]struct{}

func (s seatSet) sorted() []layout.SeatID {
	out := make([]layout.SeatID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	layout.SortSeats(out)
	return out
}

// Controller mediates every change to the seating chart.
type Controller struct {
	layout  *layout.Layout
	store   store.Store
	palette color.Palette
	log     *zap.Logger

	mode      Mode
	labels    map[layout.SeatID]string
	colors    *color.Registry
	sat       seatSet
	selection seatSet
	pending   string
	drag      DragSession
}

// New restores the chart from st and returns a controller in ModeNone.
// Seats that no longer exist in l are dropped, and every restored label
// is guaranteed a color.
func New(ctx context.Context, l *layout.Layout, st store.Store, opts ...Option) (*Controller, error) {
	c := &Controller{
		layout:    l,
		store:     st,
		palette:   color.DefaultPalette,
		log:       zap.NewNop(),
		labels:    map[layout.SeatID]string{},
		colors:    color.NewRegistry(nil),
		sat:       seatSet{},
		selection: seatSet{},
	}
	for _, opt := range opts {
		opt(c)
	}

	state, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	dropped := 0
	for id, lbl := range state.Labels {
		if !l.Contains(id) || lbl == "" {
			dropped++
			continue
		}
		c.labels[id] = lbl
	}
	for _, id := range state.Sat {
		if !l.Contains(id) {
			dropped++
			continue
		}
		c.sat[id] = struct{}{}
	}
	if dropped > 0 {
		c.log.Warn("dropped restored seats outside the layout", zap.Int("count", dropped))
	}
	c.colors = color.NewRegistry(state.Colors)

	if assigned := c.ensureColors(); assigned > 0 {
		c.log.Info("assigned colors to restored labels", zap.Int("labels", assigned))
		if err := c.persist(ctx, false, true, false); err != nil {
			return nil, err
		}
	}
	c.log.Info("seating chart restored",
		zap.Int("labeled", len(c.labels)),
		zap.Int("colors", c.colors.Len()),
		zap.Int("sat", len(c.sat)))
	return c, nil
}

// ensureColors commits a color for every label that lacks one, visiting
// labels in seat order so the outcome is deterministic.
func (c *Controller) ensureColors() int {
	groups := c.GroupsByLabel()
	missing := make([]string, 0)
	for lbl := range groups {
		if _, ok := c.colors.Get(lbl); !ok {
			missing = append(missing, lbl)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return groups[missing[i]][0].Less(groups[missing[j]][0])
	})
	for _, lbl := range missing {
		c.colors.Set(lbl, c.resolveColor(lbl, groups[lbl]))
	}
	return len(missing)
}

// resolveColor picks label's color for a write onto targets. Conflicts
// are detected in the target rows; a replacement color must also be free
// in the rows label already occupies.
func (c *Controller) resolveColor(label string, targets []layout.SeatID) string {
	var held []layout.SeatID
	for id, lbl := range c.labels {
		if lbl == label {
			held = append(held, id)
		}
	}
	return color.ColorFor(c.palette, label, c.colors,
		color.SharedRowLabels(c.labels, targets, label),
		color.SharedRowLabels(c.labels, held, label))
}

func (c *Controller) persist(ctx context.Context, labels, colors, sat bool) error {
	var errs []error
	if labels {
		errs = append(errs, c.store.SaveLabels(ctx, c.Labels()))
	}
	if colors {
		errs = append(errs, c.store.SaveColors(ctx, c.colors.Snapshot()))
	}
	if sat {
		errs = append(errs, c.store.SaveSat(ctx, c.sat.sorted()))
	}
	if err := errors.Join(errs...); err != nil {
		c.log.Error("persist seating chart", zap.Error(err))
		return err
	}
	return nil
}

func (c *Controller) checkSeat(id layout.SeatID) error {
	if err := c.layout.Validate(id); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownSeat, err)
	}
	return nil
}

// Layout returns the venue layout.
func (c *Controller) Layout() *layout.Layout { return c.layout }

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// SetMode switches to m. The selection is always cleared and any drag
// gesture ends; labels and sat seats are untouched.
func (c *Controller) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mode %d", int(m))
	}
	if m != c.mode {
		c.log.Debug("mode change", zap.Stringer("from", c.mode), zap.Stringer("to", m))
	}
	c.mode = m
	c.selection = seatSet{}
	c.drag.End()
	return nil
}

// ToggleMode enters m, or returns to ModeNone when m is already active.
func (c *Controller) ToggleMode(m Mode) error {
	if c.mode == m {
		return c.SetMode(ModeNone)
	}
	return c.SetMode(m)
}

// Click applies the click action of the active mode to id: labeling adds
// it to the selection, clearing removes its label, seating toggles it in
// the sat set.
func (c *Controller) Click(ctx context.Context, id layout.SeatID) error {
	if err := c.checkSeat(id); err != nil {
		return err
	}
	switch c.mode {
	case ModeLabeling:
		c.selection[id] = struct{}{}
	case ModeClearing:
		return c.unlabel(ctx, id)
	case ModeSeating:
		if _, ok := c.sat[id]; ok {
			delete(c.sat, id)
		} else {
			c.sat[id] = struct{}{}
		}
		return c.persist(ctx, false, false, true)
	case ModeNone:
	}
	return nil
}

// Press starts a drag gesture on id in labeling and clearing modes and
// applies the click action. Clients send either Press or Click for one
// pointer-down, never both.
func (c *Controller) Press(ctx context.Context, id layout.SeatID) error {
	if err := c.checkSeat(id); err != nil {
		return err
	}
	if c.mode == ModeLabeling || c.mode == ModeClearing {
		c.drag.Begin(id)
	}
	return c.Click(ctx, id)
}

// Enter handles the pointer moving onto id. It only acts while a drag is
// active: labeling selects the seat, clearing removes its label, and
// seating ignores drags.
func (c *Controller) Enter(ctx context.Context, id layout.SeatID) error {
	if err := c.checkSeat(id); err != nil {
		return err
	}
	if !c.drag.Active() {
		return nil
	}
	switch c.mode {
	case ModeLabeling:
		c.selection[id] = struct{}{}
	case ModeClearing:
		return c.unlabel(ctx, id)
	case ModeSeating, ModeNone:
	}
	return nil
}

// Release ends the drag gesture.
func (c *Controller) Release() { c.drag.End() }

// Dragging reports whether a drag gesture is active.
func (c *Controller) Dragging() bool { return c.drag.Active() }

// unlabel removes id from the label map. The label's color entry is kept
// so the label can be reused.
func (c *Controller) unlabel(ctx context.Context, id layout.SeatID) error {
	if _, ok := c.labels[id]; !ok {
		return nil
	}
	delete(c.labels, id)
	return c.persist(ctx, true, false, false)
}

// SetPendingLabel stores the label text being typed.
func (c *Controller) SetPendingLabel(text string) { c.pending = text }

// PendingLabel returns the label text being typed.
func (c *Controller) PendingLabel() string { return c.pending }

// PreviewColor is the color the pending label would show before any row
// conflict is resolved.
func (c *Controller) PreviewColor() string {
	if c.pending == "" {
		return ""
	}
	return color.Preview(c.palette, c.pending, c.colors)
}

// SubmitLabel writes text onto every selected seat and commits its color,
// resolved against the labels already sharing the selected rows. Empty
// text or an empty selection is ignored and reports false. The selection
// and pending text are cleared; the mode stays as it is so the next group
// can be selected straight away.
func (c *Controller) SubmitLabel(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(c.selection) == 0 {
		return false, nil
	}
	targets := c.selection.sorted()
	c.colors.Set(text, c.resolveColor(text, targets))
	for _, id := range targets {
		c.labels[id] = text
	}
	c.selection = seatSet{}
	c.pending = ""
	c.log.Debug("label applied", zap.String("label", text), zap.Int("seats", len(targets)))
	return true, c.persist(ctx, true, true, false)
}

// ClearAllLabels resets labels, colors, sat seats and selection and
// returns to ModeNone.
func (c *Controller) ClearAllLabels(ctx context.Context) error {
	c.labels = map[layout.SeatID]string{}
	c.colors.Reset()
	c.sat = seatSet{}
	c.selection = seatSet{}
	c.pending = ""
	c.mode = ModeNone
	c.drag.End()
	c.log.Info("seating chart cleared")
	return c.persist(ctx, true, true, true)
}

// ClearGroupSeats removes the labels of seats in clearing mode, as when
// a group tag is clicked. It reports whether anything changed.
func (c *Controller) ClearGroupSeats(ctx context.Context, seats []layout.SeatID) (bool, error) {
	if c.mode != ModeClearing {
		return false, nil
	}
	for _, id := range seats {
		if err := c.checkSeat(id); err != nil {
			return false, err
		}
	}
	changed := false
	for _, id := range seats {
		if _, ok := c.labels[id]; ok {
			delete(c.labels, id)
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, c.persist(ctx, true, false, false)
}

// ClearLabel removes label from every seat in clearing mode and returns
// how many seats were cleared.
func (c *Controller) ClearLabel(ctx context.Context, label string) (int, error) {
	if c.mode != ModeClearing {
		return 0, nil
	}
	seats := c.GroupsByLabel()[label]
	if len(seats) == 0 {
		return 0, nil
	}
	for _, id := range seats {
		delete(c.labels, id)
	}
	return len(seats), c.persist(ctx, true, false, false)
}

// ToggleGroupSat marks seats as sat in seating mode, or unmarks them all
// when every one of them is already sat.
func (c *Controller) ToggleGroupSat(ctx context.Context, seats []layout.SeatID) (bool, error) {
	if c.mode != ModeSeating || len(seats) == 0 {
		return false, nil
	}
	for _, id := range seats {
		if err := c.checkSeat(id); err != nil {
			return false, err
		}
	}
	if c.IsGroupFullySat(seats) {
		for _, id := range seats {
			delete(c.sat, id)
		}
	} else {
		for _, id := range seats {
			c.sat[id] = struct{}{}
		}
	}
	return true, c.persist(ctx, false, false, true)
}

// ImportTickets seats a batch of ticket orders, sorted by ascending
// purchase date, around the seats already labeled. On success every
// group is labeled with the order name and given a color; on failure the
// chart is left exactly as it was.
func (c *Controller) ImportTickets(ctx context.Context, orders []ticket.Order) (*allocation.Result, error) {
	g := grid.Rebuild(c.layout, c.labels)
	res, err := allocation.AllocateForTickets(g, orders)
	if err != nil {
		c.log.Warn("ticket import rejected", zap.Int("orders", len(orders)), zap.Error(err))
		return nil, err
	}
	for _, grp := range res.Groups {
		c.colors.Set(grp.Label, c.resolveColor(grp.Label, grp.Seats))
		for _, id := range grp.Seats {
			c.labels[id] = grp.Label
		}
	}
	c.log.Info("ticket import committed", zap.Int("groups", len(res.Groups)), zap.Int("seats", res.Seats()))
	return res, c.persist(ctx, true, true, false)
}

// Labels returns a copy of the label map.
func (c *Controller) Labels() map[layout.SeatID]string {
	out := make(map[layout.SeatID]string, len(c.labels))
	for k, v := range c.labels {
		out[k] = v
	}
	return out
}

// Colors returns a copy of the color map.
func (c *Controller) Colors() map[string]string { return c.colors.Snapshot() }

// ColorOf returns the committed color of label.
func (c *Controller) ColorOf(label string) (string, bool) { return c.colors.Get(label) }

// Sat returns the sat seats in seat order.
func (c *Controller) Sat() []layout.SeatID { return c.sat.sorted() }

// IsSat reports whether id is marked sat.
func (c *Controller) IsSat(id layout.SeatID) bool {
	_, ok := c.sat[id]
	return ok
}

// Selection returns the selected seats in seat order.
func (c *Controller) Selection() []layout.SeatID { return c.selection.sorted() }

// GroupsByLabel inverts the label map. Seats of each group are sorted.
func (c *Controller) GroupsByLabel() map[string][]layout.SeatID {
	groups := map[string][]layout.SeatID{}
	for id, lbl := range c.labels {
		groups[lbl] = append(groups[lbl], id)
	}
	for _, seats := range groups {
		layout.SortSeats(seats)
	}
	return groups
}

// IsGroupFullySat reports whether every seat of the set is sat. An empty
// set is trivially sat.
func (c *Controller) IsGroupFullySat(seats []layout.SeatID) bool {
	for _, id := range seats {
		if _, ok := c.sat[id]; !ok {
			return false
		}
	}
	return true
}

// RemainingUnseatedCount counts labeled seats not yet marked sat.
func (c *Controller) RemainingUnseatedCount() int {
	n := 0
	for id := range c.labels {
		if _, ok := c.sat[id]; !ok {
			n++
		}
	}
	return n
}
