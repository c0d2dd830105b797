package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/frontierlabs/itemwatch/internal/item"
)

const checkpointFileName = "frontier"

// FileStore keeps the checkpoint as a single text-encoded integer in a file
// under a configured directory.
type FileStore struct {
	path string
}

// NewFileStore validates the directory up front — an unwritable state
// directory is a misconfigured environment and should abort startup, not
// surface mid-run.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("state directory is required")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("create state directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("stat state directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("state path is not a directory")
	}

	testFile := filepath.Join(dir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("state directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("clean up writability probe: %w", err)
	}

	return &FileStore{path: filepath.Join(dir, checkpointFileName)}, nil
}

// Load reads and parses the checkpoint file.
func (s *FileStore) Load(_ context.Context) (item.ID, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}
	id, err := item.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse checkpoint %q: %w", strings.TrimSpace(string(data)), err)
	}
	return id, nil
}

// Save writes the checkpoint via temp-file-plus-rename so a crash mid-write
// never leaves a truncated checkpoint behind.
func (s *FileStore) Save(_ context.Context, id item.ID) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(id.String()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

// Path returns the checkpoint file location, mostly for logging.
func (s *FileStore) Path() string {
	return s.path
}
