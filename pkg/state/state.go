// Package state persists the installed-version marker for the resource
// distributor. The marker is a single-slot versioned cache: it records which
// package version last completed a full install, and the installer consults
// its staleness predicate to decide whether to redistribute.
//
// The marker must only ever be written after a copy has fully succeeded;
// that ordering is what makes a crashed install self-healing on the next
// run.
package state

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// markerFile holds the on-disk shape of the persisted state.
type markerFile struct {
	InstalledVersion string `json:"installedVersion"`
}

// Store reads and writes the installed-version marker file.
type Store struct {
	fsys afero.Fs
	path string
}

// NewStore creates a marker store persisted at the given file path.
func NewStore(fsys afero.Fs, path string) *Store {
	return &Store{fsys: fsys, path: path}
}

// Path returns the marker file location.
func (s *Store) Path() string {
	return s.path
}

// InstalledVersion returns the recorded version, or the empty string when no
// install has ever completed.
func (s *Store) InstalledVersion() (string, error) {
	data, err := afero.ReadFile(s.fsys, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to read version marker %s", s.path)
	}

	var marker markerFile
	if err := json.Unmarshal(data, &marker); err != nil {
		// A corrupt marker is indistinguishable from no marker: the next
		// install rewrites it.
		return "", nil
	}

	return marker.InstalledVersion, nil
}

// Stale reports whether the recorded version differs from runningVersion.
// An absent marker is always stale.
func (s *Store) Stale(runningVersion string) (bool, error) {
	installed, err := s.InstalledVersion()
	if err != nil {
		return false, err
	}
	return installed == "" || installed != runningVersion, nil
}

// RecordInstalled persists runningVersion as the installed version. Callers
// must invoke this only after the resource copy has fully succeeded.
func (s *Store) RecordInstalled(runningVersion string) error {
	if runningVersion == "" {
		return errors.New("refusing to record an empty version")
	}

	data, err := json.MarshalIndent(markerFile{InstalledVersion: runningVersion}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode version marker")
	}

	if err := s.fsys.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create marker directory %s", filepath.Dir(s.path))
	}

	if err := s.writeFile(data); err != nil {
		return errors.Wrapf(err, "failed to write version marker %s", s.path)
	}

	return nil
}

// writeFile writes atomically on the real disk so a crash mid-write cannot
// leave a torn marker. In-memory filesystems get a plain write.
func (s *Store) writeFile(data []byte) error {
	if _, ok := s.fsys.(*afero.OsFs); ok {
		return atomic.WriteFile(s.path, bytes.NewReader(data))
	}
	return afero.WriteFile(s.fsys, s.path, data, 0o644)
}

// Reset removes the marker so the next install runs unconditionally.
func (s *Store) Reset() error {
	if err := s.fsys.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove version marker %s", s.path)
	}
	return nil
}
