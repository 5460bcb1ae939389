package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads the catalog JSON file and returns normalized records. Records
// without a name or url are rejected instead of silently trusted downstream.
func Load(path string) ([]Assessment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()

	var items []Assessment
	if err := json.NewDecoder(file).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode catalog file %q: %w", path, err)
	}

	for i := range items {
		items[i].Normalize()
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}

	return items, nil
}

// Save writes the catalog entries as indented JSON, creating the parent
// directory when needed.
func Save(path string, items []Assessment) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode catalog file %q: %w", path, err)
	}
	return nil
}

// DumpToTmpFile writes the given assessments to a temporary JSON file and
// returns its name.
func DumpToTmpFile(items []Assessment) (string, error) {
	file, err := os.CreateTemp("", "recommendations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return "", err
	}
	return file.Name(), nil
}
