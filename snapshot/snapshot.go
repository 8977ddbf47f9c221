// Package snapshot converts tracks to and from a plain, ordered record form that can be
// persisted with any self-describing codec.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/robmorgan/halosync/interpolation"
	"github.com/robmorgan/halosync/track"
)

// KeyRecord is one persisted keyframe.
type KeyRecord struct {
	Row           uint32             `yaml:"row" json:"row"`
	Value         float32            `yaml:"value" json:"value"`
	Interpolation interpolation.Kind `yaml:"interpolation" json:"interpolation"`
}

// jsonKey is KeyRecord as JSON sees it. JSON has no NaN or infinities, so those values
// are written as the strings "NaN", "+Inf" and "-Inf".
type jsonKey struct {
	Row           uint32             `json:"row"`
	Value         json.RawMessage    `json:"value"`
	Interpolation interpolation.Kind `json:"interpolation"`
}

func (k KeyRecord) MarshalJSON() ([]byte, error) {
	v := float64(k.Value)
	var value []byte
	switch {
	case math.IsNaN(v):
		value = []byte(`"NaN"`)
	case math.IsInf(v, 1):
		value = []byte(`"+Inf"`)
	case math.IsInf(v, -1):
		value = []byte(`"-Inf"`)
	default:
		var err error
		if value, err = json.Marshal(k.Value); err != nil {
			return nil, err
		}
	}
	return json.Marshal(jsonKey{Row: k.Row, Value: value, Interpolation: k.Interpolation})
}

func (k *KeyRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var raw jsonKey
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	var value float32
	var text string
	switch {
	case len(raw.Value) == 0:
	case json.Unmarshal(raw.Value, &text) == nil:
		switch text {
		case "NaN", "+Inf", "-Inf":
		default:
			return fmt.Errorf("snapshot: key value %q is not a number", text)
		}
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return err
		}
		value = float32(f)
	default:
		if err := json.Unmarshal(raw.Value, &value); err != nil {
			return err
		}
	}

	*k = KeyRecord{Row: raw.Row, Value: value, Interpolation: raw.Interpolation}
	return nil
}

// TrackRecord is one persisted track.
type TrackRecord struct {
	Name string      `yaml:"name" json:"name"`
	Keys []KeyRecord `yaml:"keys" json:"keys"`
}

// Snapshot is the ordered record form of a track collection.
type Snapshot struct {
	Tracks []TrackRecord `yaml:"tracks" json:"tracks"`
}

// FromTracks copies tracks into records, keeping track and key order.
func FromTracks(tracks *track.Tracks) Snapshot {
	snap := Snapshot{Tracks: make([]TrackRecord, 0, tracks.Len())}
	for _, t := range tracks.All() {
		rec := TrackRecord{Name: t.Name(), Keys: make([]KeyRecord, 0, t.Len())}
		for _, k := range t.Keys() {
			rec.Keys = append(rec.Keys, KeyRecord{Row: k.Row, Value: k.Value, Interpolation: k.Interpolation})
		}
		snap.Tracks = append(snap.Tracks, rec)
	}
	return snap
}

// ToTracks rebuilds the track collection. Keys may come in any order; a later key with the
// same row wins. Duplicate track names are rejected.
func (s Snapshot) ToTracks() (*track.Tracks, error) {
	tracks := track.NewTracks()
	for _, rec := range s.Tracks {
		t, _, created := tracks.GetOrCreate(rec.Name)
		if !created {
			return nil, fmt.Errorf("snapshot: duplicate track %q", rec.Name)
		}
		for _, k := range rec.Keys {
			t.SetKey(track.NewKey(k.Row, k.Value, k.Interpolation))
		}
	}
	return tracks, nil
}
