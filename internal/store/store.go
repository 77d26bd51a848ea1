// Package store persists the chart's three maps (seat labels, group
// colors and sat seats) as JSON strings under three keys of a key-value
// backend. Missing or unreadable values load as empty state.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/theater-seating/internal/layout"
)

// State is the persisted part of a seating chart.
type State struct {
	Labels map[layout.SeatID]string
	Colors map[string]string
	Sat    []layout.SeatID
}

// Empty returns a State with non-nil, empty maps.
func Empty() State {
	return State{Labels: map[layout.SeatID]string{}, Colors: map[string]string{}}
}

// Store is the persistence boundary of the seating controller. Every
// Save call writes the complete value for its key.
type Store interface {
	Load(ctx context.Context) (State, error)
	SaveLabels(ctx context.Context, labels map[layout.SeatID]string) error
	SaveColors(ctx context.Context, colors map[string]string) error
	SaveSat(ctx context.Context, sat []layout.SeatID) error
}

// Backend is a string-valued key-value substrate. Get omits keys that
// have no value.
type Backend interface {
	Get(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// Keys names the three values of one chart.
type Keys struct {
	Labels string
	Colors string
	Sat    string
}

// NewKeys builds "<prefix>:<chart>:labels|colors|sat".
func NewKeys(prefix, chartID string) Keys {
	base := prefix + ":" + chartID + ":"
	return Keys{Labels: base + "labels", Colors: base + "colors", Sat: base + "sat"}
}

func (k Keys) all() []string { return []string{k.Labels, k.Colors, k.Sat} }

// KVStore implements Store on top of any Backend.
type KVStore struct {
	backend Backend
	keys    Keys
	log     *zap.Logger
}

// NewKVStore binds a backend to the keys of one chart.
func NewKVStore(backend Backend, keys Keys, log *zap.Logger) *KVStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &KVStore{backend: backend, keys: keys, log: log}
}

// Load reads all three keys. Backend failures are returned; absent or
// corrupt values are logged and treated as empty.
func (s *KVStore) Load(ctx context.Context) (State, error) {
	vals, err := s.backend.Get(ctx, s.keys.all())
	if err != nil {
		return State{}, fmt.Errorf("load chart state: %w", err)
	}
	st := Empty()
	if raw, ok := vals[s.keys.Labels]; ok {
		labels, skipped, err := DecodeLabels(raw)
		if err != nil {
			s.log.Warn("discarding unreadable label map", zap.String("key", s.keys.Labels), zap.Error(err))
		} else {
			st.Labels = labels
		}
		if skipped > 0 {
			s.log.Warn("skipped malformed seat ids in label map", zap.Int("skipped", skipped))
		}
	}
	if raw, ok := vals[s.keys.Colors]; ok {
		colors, err := DecodeColors(raw)
		if err != nil {
			s.log.Warn("discarding unreadable color map", zap.String("key", s.keys.Colors), zap.Error(err))
		} else {
			st.Colors = colors
		}
	}
	if raw, ok := vals[s.keys.Sat]; ok {
		sat, skipped, err := DecodeSat(raw)
		if err != nil {
			s.log.Warn("discarding unreadable sat set", zap.String("key", s.keys.Sat), zap.Error(err))
		} else {
			st.Sat = sat
		}
		if skipped > 0 {
			s.log.Warn("skipped malformed seat ids in sat set", zap.Int("skipped", skipped))
		}
	}
	return st, nil
}

func (s *KVStore) SaveLabels(ctx context.Context, labels map[layout.SeatID]string) error {
	raw, err := EncodeLabels(labels)
	if err != nil {
		return err
	}
	return s.set(ctx, s.keys.Labels, raw)
}

func (s *KVStore) SaveColors(ctx context.Context, colors map[string]string) error {
	raw, err := EncodeColors(colors)
	if err != nil {
		return err
	}
	return s.set(ctx, s.keys.Colors, raw)
}

func (s *KVStore) SaveSat(ctx context.Context, sat []layout.SeatID) error {
	raw, err := EncodeSat(sat)
	if err != nil {
		return err
	}
	return s.set(ctx, s.keys.Sat, raw)
}

func (s *KVStore) set(ctx context.Context, key, raw string) error {
	if err := s.backend.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// EncodeLabels renders the label map as a JSON object keyed by seat id.
func EncodeLabels(labels map[layout.SeatID]string) (string, error) {
	if labels == nil {
		labels = map[layout.SeatID]string{}
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("encode labels: %w", err)
	}
	return string(b), nil
}

// DecodeLabels parses a label map, skipping entries whose key is not a
// seat id. skipped counts those entries.
func DecodeLabels(raw string) (labels map[layout.SeatID]string, skipped int, err error) {
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, 0, err
	}
	labels = make(map[layout.SeatID]string, len(m))
	for k, v := range m {
		id, perr := layout.ParseSeatID(k)
		if perr != nil {
			skipped++
			continue
		}
		labels[id] = v
	}
	return labels, skipped, nil
}

// EncodeColors renders the color map as a JSON object.
func EncodeColors(colors map[string]string) (string, error) {
	if colors == nil {
		colors = map[string]string{}
	}
	b, err := json.Marshal(colors)
	if err != nil {
		return "", fmt.Errorf("encode colors: %w", err)
	}
	return string(b), nil
}

// DecodeColors parses a color map.
func DecodeColors(raw string) (map[string]string, error) {
	m := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// EncodeSat renders the sat set as a sorted JSON array of seat ids.
func EncodeSat(sat []layout.SeatID) (string, error) {
	ids := append([]layout.SeatID{}, sat...)
	layout.SortSeats(ids)
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode sat set: %w", err)
	}
	return string(b), nil
}

// DecodeSat parses a sat set, skipping malformed ids.
func DecodeSat(raw string) (sat []layout.SeatID, skipped int, err error) {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, 0, err
	}
	sat = make([]layout.SeatID, 0, len(list))
	for _, s := range list {
		id, perr := layout.ParseSeatID(s)
		if perr != nil {
			skipped++
			continue
		}
		sat = append(sat, id)
	}
	return sat, skipped, nil
}
