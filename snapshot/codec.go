package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/halosync/track"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding.
type Format int

const (
	YAML Format = iota
	JSON
)

// FormatFromPath picks the format by file extension. Anything that isn't .json is YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Encode writes snap to w.
func Encode(w io.Writer, snap Snapshot, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("snapshot: unknown format %d", format)
	}
}

// Decode reads one snapshot from r.
func Decode(r io.Reader, format Format) (Snapshot, error) {
	var snap Snapshot
	switch format {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return Snapshot{}, err
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&snap); err != nil && err != io.EOF {
			return Snapshot{}, err
		}
	default:
		return Snapshot{}, fmt.Errorf("snapshot: unknown format %d", format)
	}
	return snap, nil
}

// SaveFile writes tracks to path, replacing it atomically.
func SaveFile(path string, tracks *track.Tracks) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.WithStackTrace(err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, FromTracks(tracks), FormatFromPath(path)); err != nil {
		tmp.Close()
		return errors.WithStackTraceAndPrefix(err, "encoding tracks for %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStackTrace(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WithStackTrace(err)
	}
	return nil
}

// LoadFile reads the tracks stored at path.
func LoadFile(path string) (*track.Tracks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	defer f.Close()

	snap, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "decoding tracks from %s", path)
	}
	tracks, err := snap.ToTracks()
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "loading tracks from %s", path)
	}
	return tracks, nil
}
