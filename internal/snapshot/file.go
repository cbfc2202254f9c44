// Package snapshot provides the persistence implementations for the memory
// engine: a JSON file and a SQLite database. Both write the full state on
// every save; last successful save wins.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kh1ye/memory/internal/memory"
)

// File persists the snapshot as a single JSON document. Saves go through a
// temp file and rename so a crash mid-write never leaves a torn snapshot.
type File struct {
	Path string
}

// NewFile creates a File store at the given path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the snapshot. A missing file means no snapshot yet: (nil, nil).
func (f *File) Load() (*memory.State, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", f.Path, err)
	}

	var st memory.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", f.Path, err)
	}
	return &st, nil
}

// Save overwrites the snapshot atomically.
func (f *File) Save(st *memory.State) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, f.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
