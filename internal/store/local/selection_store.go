package local

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/senthilkr/tamil-news-feed/internal/feed"
)

const selectionFile = "user_newspapers.json"

type selectionDoc struct {
	Selected []string `json:"selected"`
}

// SelectionStore persists the user's active source keys. Reads are total: a
// missing, corrupt, or empty file yields the default selection, never an
// error. Implements feed.SelectionProvider.
type SelectionStore struct {
	path string
}

// NewSelectionStore creates a selection store rooted in baseDir.
func NewSelectionStore(baseDir string) *SelectionStore {
	return &SelectionStore{path: filepath.Join(baseDir, selectionFile)}
}

// Selection returns the persisted keys with unknown keys dropped, falling
// back to the default selection whenever the file is unreadable or the
// surviving set is empty.
func (s *SelectionStore) Selection() []string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return feed.DefaultSelection()
	}
	var doc selectionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return feed.DefaultSelection()
	}
	var valid []string
	for _, k := range doc.Selected {
		if feed.KnownKey(k) {
			valid = append(valid, k)
		}
	}
	if len(valid) == 0 {
		return feed.DefaultSelection()
	}
	return valid
}

// Save persists the given keys atomically. Unknown keys are dropped; an empty
// surviving set stores the default selection instead, so the file can never
// disable every source. It returns the keys actually stored.
func (s *SelectionStore) Save(keys []string) ([]string, error) {
	var valid []string
	for _, k := range keys {
		if feed.KnownKey(k) {
			valid = append(valid, k)
		}
	}
	if len(valid) == 0 {
		valid = feed.DefaultSelection()
	}

	data, err := json.Marshal(selectionDoc{Selected: valid})
	if err != nil {
		return nil, fmt.Errorf("encode selection: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return nil, fmt.Errorf("write selection: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return nil, fmt.Errorf("replace selection: %w", err)
	}
	return valid, nil
}
