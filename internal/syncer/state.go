package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"yieldScope/internal/model"
)

// StateStore persists the checkpoint of the last successful run.
type StateStore interface {
	LoadState(ctx context.Context, name string) (model.SyncState, bool, error)
	SaveState(ctx context.Context, state model.SyncState) error
}

// FileStateStore keeps one JSON state file per name under dir.
type FileStateStore struct {
	dir string
}

func NewFileStateStore(dir string) *FileStateStore {
	return &FileStateStore{dir: dir}
}

func (f *FileStateStore) path(name string) string {
	return filepath.Join(f.dir, name+".state.json")
}

func (f *FileStateStore) LoadState(_ context.Context, name string) (model.SyncState, bool, error) {
	if name == "" {
		return model.SyncState{}, false, fmt.Errorf("state name required")
	}
	path := f.path(name)

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.SyncState{}, false, nil
		}
		return model.SyncState{}, false, fmt.Errorf("stat state: %w", err)
	}
	if stat.IsDir() {
		return model.SyncState{}, false, fmt.Errorf("state path is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.SyncState{}, false, fmt.Errorf("read state: %w", err)
	}

	var st model.SyncState
	if err := json.Unmarshal(data, &st); err != nil {
		return model.SyncState{}, false, fmt.Errorf("parse state: %w", err)
	}
	return st, true, nil
}

func (f *FileStateStore) SaveState(_ context.Context, state model.SyncState) error {
	if state.Name == "" {
		return fmt.Errorf("state name required")
	}
	if f.dir != "" && f.dir != "." {
		if err := os.MkdirAll(f.dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	path := f.path(state.Name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}
