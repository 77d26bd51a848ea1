// Package color picks display colors for group labels so that labels
// sharing a row never look alike, while a label keeps its color for as
// long as nothing forces a change.
package color

import (
	"sort"

	"github.com/iliyamo/theater-seating/internal/layout"
)

// maxCandidates bounds the palette walk when resolving a conflict.
const maxCandidates = 100

// Palette is an ordered list of colors, cycled by index.
type Palette []string

// DefaultPalette is the stock ten-color cycle.
var DefaultPalette = Palette{
	"#FF6B6B", // red
	"#4ECDC4", // teal
	"#45B7D1", // blue
	"#96CEB4", // green
	"#FFEEAD", // yellow
	"#D4A5A5", // pink
	"#9B59B6", // purple
	"#3498DB", // bright blue
	"#F1C40F", // golden
	"#E67E22", // orange
}

// At returns the color at index i, wrapping around the palette.
func (p Palette) At(i int) string {
	if len(p) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}

// Registry owns the label → color mapping. Callers read from it when
// choosing a color and commit the choice explicitly with Set.
type Registry struct {
	colors map[string]string
}

// NewRegistry returns a registry seeded with a copy of initial.
func NewRegistry(initial map[string]string) *Registry {
	r := &Registry{colors: make(map[string]string, len(initial))}
	for k, v := range initial {
		r.colors[k] = v
	}
	return r
}

// Get returns the committed color of label.
func (r *Registry) Get(label string) (string, bool) {
	c, ok := r.colors[label]
	return c, ok
}

// Set commits color for label.
func (r *Registry) Set(label, color string) { r.colors[label] = color }

// Len is the number of labels with a committed color.
func (r *Registry) Len() int { return len(r.colors) }

// Reset drops every entry.
func (r *Registry) Reset() { r.colors = map[string]string{} }

// Snapshot returns a copy of the mapping.
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, len(r.colors))
	for k, v := range r.colors {
		out[k] = v
	}
	return out
}

// Preview is the color label would get with no row conflict: its
// committed color, or the next palette entry for a new label.
func Preview(p Palette, label string, reg *Registry) string {
	if c, ok := reg.Get(label); ok {
		return c
	}
	return p.At(reg.Len())
}

// ColorFor picks the color for label given the other labels that share
// a row with its target seats. The committed color (or, for a new label,
// the next palette entry) is kept unless one of those neighbors already
// shows it; then the first palette color shown by no neighbor and by no
// held label is used. held lists the labels sharing a row with the seats
// label already occupies, since a recolor shows there too. If every
// candidate is taken the choice falls back to the palette entry after
// the registry size. ColorFor does not modify reg.
func ColorFor(p Palette, label string, reg *Registry, neighbors, held []string) string {
	candidate := Preview(p, label, reg)

	used := colorsOf(reg, label, neighbors)
	if !used[candidate] {
		return candidate
	}
	for c := range colorsOf(reg, label, held) {
		used[c] = true
	}
	for i := 0; i < maxCandidates; i++ {
		if c := p.At(i); !used[c] {
			return c
		}
	}
	return p.At(reg.Len())
}

func colorsOf(reg *Registry, self string, labels []string) map[string]bool {
	out := make(map[string]bool, len(labels))
	for _, n := range labels {
		if n == self {
			continue
		}
		if c, ok := reg.Get(n); ok {
			out[c] = true
		}
	}
	return out
}

// SharedRowLabels lists, in sorted order, the labels other than self that
// hold a seat in any row touched by targets.
func SharedRowLabels(labels map[layout.SeatID]string, targets []layout.SeatID, self string) []string {
	rows := make(map[layout.RowKey]bool, len(targets))
	for _, id := range targets {
		rows[id.RowKey()] = true
	}
	seen := map[string]bool{}
	for id, lbl := range labels {
		if lbl != self && rows[id.RowKey()] {
			seen[lbl] = true
		}
	}
	out := make([]string, 0, len(seen))
	for lbl := range seen {
		out = append(out, lbl)
	}
	sort.Strings(out)
	return out
}
