package cpsc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cpsc: mkdir %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cpsc: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("cpsc: write %s: %w", path, err)
	}
	return nil
}

// ReadSnapshotFile loads a previously written snapshot (the December
// baseline) for change calculation.
func ReadSnapshotFile[T any](path string, v *T) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cpsc: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("cpsc: decode %s: %w", path, err)
	}
	return nil
}
