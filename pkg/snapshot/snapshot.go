// Package snapshot persists the record of pre-change preference values
// that makes unapply possible.
//
// The snapshot is a JSON file co-located with the configuration. It is
// created empty on first apply, mutated in place across applies, and
// deleted wholesale by a successful unapply or a full reset.
package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/machlit/cutler/internal/version"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/prefs"
)

// SettingState records one managed key and the value it held before
// management began. A nil OriginalValue means the key did not exist;
// undo deletes it instead of restoring.
type SettingState struct {
	Domain        string       `json:"domain"`
	Key           string       `json:"key"`
	OriginalValue *prefs.Value `json:"original_value"`
}

// Snapshot is the persisted undo record. Settings keeps insertion
// order across the snapshot's lifetime, oldest first; (domain, key)
// pairs are unique within it.
type Snapshot struct {
	Settings     []SettingState `json:"settings"`
	ExecRunCount int            `json:"exec_run_count"`
	Version      string         `json:"version"`
	Digest       string         `json:"digest"`

	path string
}

// New returns an empty snapshot bound to path, tagged with the current
// tool version.
func New(path string) *Snapshot {
	return &Snapshot{
		Settings: []SettingState{},
		Version:  version.Version,
		path:     path,
	}
}

// Path returns the file the snapshot is bound to.
func (s *Snapshot) Path() string { return s.path }

// Lookup builds an index of the snapshot's entries by effective key.
func (s *Snapshot) Lookup() map[[2]string]SettingState {
	idx := make(map[[2]string]SettingState, len(s.Settings))
	for _, entry := range s.Settings {
		idx[[2]string{entry.Domain, entry.Key}] = entry
	}
	return idx
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the snapshot at path. A file that does not deserialize as
// a full snapshot is retried as a bare entry list (the older format),
// with the remaining fields defaulted; only when that also fails is the
// snapshot reported corrupt.
func Load(path string) (*Snapshot, error) {
	if !Exists(path) {
		return nil, errors.Newf(errors.ErrSnapshotNotFound, "no snapshot at %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotIO, "could not read snapshot")
	}

	var snap Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err == nil {
		snap.path = path
		if snap.Settings == nil {
			snap.Settings = []SettingState{}
		}
		return &snap, nil
	}

	// settings-only fallback, tolerant of missing metadata
	var partial struct {
		Settings []SettingState `json:"settings"`
	}
	if err := json.Unmarshal(data, &partial); err != nil || partial.Settings == nil {
		return nil, errors.New(errors.ErrSnapshotCorrupt, "snapshot file is not readable")
	}
	snap = *New(path)
	snap.Settings = partial.Settings
	return &snap, nil
}

// Save writes the snapshot to its path, creating parent directories.
// The file is written at most once per apply/unapply invocation,
// strictly after all live-store writes complete.
func (s *Snapshot) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrSnapshotIO, "could not create snapshot directory")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrSnapshotIO, "could not serialize snapshot")
	}
	return os.WriteFile(s.path, data, 0644)
}

// Delete removes the snapshot file.
func (s *Snapshot) Delete() error {
	if err := os.Remove(s.path); err != nil {
		return errors.Wrapf(err, errors.ErrSnapshotIO, "could not delete snapshot at %s", s.path)
	}
	return nil
}
