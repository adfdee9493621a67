package lockout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"socguard/pkg/models"
)

// FileStore keeps the lock state in a single file on disk. Exclusive
// creation makes engagement atomic: the first writer wins, later writers
// see the existing lock.
type FileStore struct {
	path string
}

// NewFileStore constructs a file-backed lock store.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("lock file path is required")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Get returns the current lock state.
func (s *FileStore) Get(ctx context.Context) (models.LockState, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return models.LockState{}, nil
	}
	if err != nil {
		return models.LockState{}, fmt.Errorf("read lock file: %w", err)
	}

	var state models.LockState
	if err := json.Unmarshal(raw, &state); err != nil {
		// An unparsable lock file still means locked; someone put it
		// there and only an administrator may remove it.
		return models.LockState{Locked: true, Reason: "unreadable lock file"}, nil
	}
	return state, nil
}

// Engage writes the lock file if absent.
func (s *FileStore) Engage(ctx context.Context, state models.LockState) (bool, error) {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create lock file: %w", err)
	}
	defer f.Close()

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal lock state: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		return false, fmt.Errorf("write lock file: %w", err)
	}
	return true, nil
}

// Clear removes the lock file.
func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
