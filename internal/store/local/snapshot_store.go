// Package local persists the feed's small filesystem state: the live and
// staged snapshot slots and the user's source selection. Every write goes to
// a temp file first and is renamed into place, so readers only ever see a
// complete artifact.
package local

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/senthilkr/tamil-news-feed/internal/feed"
)

const (
	liveFile   = "news_live.json"
	stagedFile = "news_temp.json"
)

// Config captures the parameters for the local store.
type Config struct {
	// BaseDir is the directory holding the snapshot slots and preferences.
	BaseDir string `mapstructure:"base_dir"`
}

// Store implements feed.SnapshotStore over the local filesystem.
type Store struct {
	baseDir string
}

// New creates the store, ensuring the base directory exists and is writable.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	testFile := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("clean up writability probe: %w", err)
	}

	return &Store{baseDir: cfg.BaseDir}, nil
}

// WriteLive atomically replaces the live snapshot.
func (s *Store) WriteLive(snap feed.Snapshot) error {
	return s.writeJSON(liveFile, snap)
}

// WriteStaged atomically replaces the staged snapshot.
func (s *Store) WriteStaged(snap feed.Snapshot) error {
	return s.writeJSON(stagedFile, snap)
}

// Promote atomically renames the staged slot over the live one. It fails if
// nothing has been staged.
func (s *Store) Promote() error {
	if err := os.Rename(s.path(stagedFile), s.path(liveFile)); err != nil {
		return fmt.Errorf("promote staged snapshot: %w", err)
	}
	return nil
}

// ReadLive returns the published snapshot, or an empty one if none exists.
func (s *Store) ReadLive() (feed.Snapshot, error) {
	data, err := os.ReadFile(s.path(liveFile))
	if err != nil {
		if os.IsNotExist(err) {
			return feed.Snapshot{}, nil
		}
		return feed.Snapshot{}, fmt.Errorf("read live snapshot: %w", err)
	}
	var snap feed.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return feed.Snapshot{}, fmt.Errorf("decode live snapshot: %w", err)
	}
	return snap, nil
}

// LiveModTime reports the last publish time of the live slot.
func (s *Store) LiveModTime() (time.Time, bool) {
	info, err := os.Stat(s.path(liveFile))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// writeJSON writes the value to a temp file and renames it into place.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp := s.path(name + ".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
