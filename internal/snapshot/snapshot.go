// Package snapshot reads and writes raw tables stored as a directory of
// JSON files, and watches such a directory for changes.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/matchups/internal/matchups"
)

// File names inside a snapshot directory.
const (
	MatchupsFile   = "matchups.json"
	PopularityFile = "popularity.json"
	ArchetypesFile = "archetypes.json"
)

// Files lists every file a snapshot directory must contain.
var Files = []string{MatchupsFile, PopularityFile, ArchetypesFile}

// Load reads the three payloads from dir.
func Load(dir string) (matchups.RawTables, error) {
	var raw matchups.RawTables
	targets := []*[]byte{&raw.Matchups, &raw.Popularity, &raw.Archetypes}

	for i, name := range Files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return matchups.RawTables{}, fmt.Errorf("read snapshot %s: %w", name, err)
		}
		*targets[i] = data
	}
	return raw, nil
}

// LoadTables reads and decodes the snapshot in dir.
func LoadTables(dir string) (*matchups.Tables, error) {
	raw, err := Load(dir)
	if err != nil {
		return nil, err
	}
	tables, err := raw.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", dir, err)
	}
	return tables, nil
}

// Write stores raw into dir, creating it if needed. Each file is written to a
// temporary name and renamed so watchers never observe a partial file.
func Write(dir string, raw matchups.RawTables) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	payloads := [][]byte{raw.Matchups, raw.Popularity, raw.Archetypes}
	for i, name := range Files {
		path := filepath.Join(dir, name)
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, payloads[i], 0o644); err != nil {
			return fmt.Errorf("write snapshot %s: %w", name, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return fmt.Errorf("replace snapshot %s: %w", name, err)
		}
	}
	return nil
}

// Dir is a table source backed by a snapshot directory.
type Dir string

// Fetch loads the snapshot. The context is unused; reads are local.
func (d Dir) Fetch(_ context.Context) (matchups.RawTables, error) {
	return Load(string(d))
}

// Name describes the source for logs.
func (d Dir) Name() string {
	return "snapshot:" + string(d)
}
