package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// fileDoc is the on-disk layout
type fileDoc struct {
	HighScores []int `toml:"high_scores"`
}

// FileStore keeps the list in a TOML file
// A missing file reads as an empty list
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path, created on first save
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(ctx context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return doc.HighScores, nil
}

// Save writes to a temp file and renames it over the target
func (f *FileStore) Save(ctx context.Context, entries []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := toml.Marshal(fileDoc{HighScores: entries})
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Close() error { return nil }
