// Package track holds the keyframe data model: keys, named tracks and ordered track collections.
package track

import (
	"math"

	"github.com/robmorgan/halosync/interpolation"
	"golang.org/x/exp/slices"
)

// Key is a single keyframe. Two keys with the same row are the same key.
type Key struct {
	Row           uint32
	Value         float32
	Interpolation interpolation.Kind
}

// NewKey builds a key.
func NewKey(row uint32, value float32, kind interpolation.Kind) Key {
	return Key{Row: row, Value: value, Interpolation: kind}
}

// Track is a named sequence of keys kept sorted by row with no duplicate rows.
type Track struct {
	name string
	keys []Key
}

// New returns an empty track.
func New(name string) *Track {
	return &Track{name: name}
}

func (t *Track) Name() string {
	return t.name
}

// Keys returns a copy of the keys in row order.
func (t *Track) Keys() []Key {
	return slices.Clone(t.keys)
}

// Len returns the number of keys on the track.
func (t *Track) Len() int {
	return len(t.keys)
}

func (t *Track) exactPosition(row uint32) int {
	return slices.IndexFunc(t.keys, func(k Key) bool { return k.Row == row })
}

// SetKey replaces the key at key.Row, or inserts it keeping the keys ordered.
func (t *Track) SetKey(key Key) {
	if pos := t.exactPosition(key.Row); pos >= 0 {
		t.keys[pos] = key
		return
	}
	if pos := slices.IndexFunc(t.keys, func(k Key) bool { return k.Row >= key.Row }); pos >= 0 {
		t.keys = slices.Insert(t.keys, pos, key)
		return
	}
	t.keys = append(t.keys, key)
}

// DeleteKey removes the key at row. Deleting a row without a key does nothing.
func (t *Track) DeleteKey(row uint32) {
	if pos := t.exactPosition(row); pos >= 0 {
		t.keys = slices.Delete(t.keys, pos, pos+1)
	}
}

// Value returns the track value at a fractional row.
//
// Rows at or before the first key return the first key's value, rows at or after the
// last key return the last key's value. In between, the curve of the lower key of the
// bracketing pair decides how the value moves towards the higher key.
func (t *Track) Value(row float32) float32 {
	if len(t.keys) == 0 {
		return 0
	}

	first, last := t.keys[0], t.keys[len(t.keys)-1]
	r := float64(row)
	if math.IsNaN(r) || r <= float64(first.Row) {
		return first.Value
	}
	if r >= float64(last.Row) {
		return last.Value
	}

	floor := uint32(math.Floor(r))
	pos := slices.IndexFunc(t.keys, func(k Key) bool { return k.Row > floor }) - 1

	lower, higher := t.keys[pos], t.keys[pos+1]
	phase := (row - float32(lower.Row)) / (float32(higher.Row) - float32(lower.Row))
	it := lower.Interpolation.Interpolate(phase)

	return lower.Value + (higher.Value-lower.Value)*it
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	return &Track{name: t.name, keys: slices.Clone(t.keys)}
}
