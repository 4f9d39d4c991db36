package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"liquidityEngine/internal/model"
)

// WriteSnapshot stores a snapshot as indented JSON, replacing any previous file.
func WriteSnapshot(path string, snap model.PoolSnapshot) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (model.PoolSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap model.PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
