package savefile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"magnate/internal/econ"
)

// DefaultPath resolves the local save location, ~/.mgt/save.json, creating
// the directory on first use.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".mgt")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "save.json"), nil
}

func resolve(path string) (string, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return "", err
		}
		return path, nil
	}
	return DefaultPath()
}

// Load reads a snapshot from the given path, or the default location when
// path is empty. A missing or empty file is not an error; the second return
// reports whether a snapshot was found.
func Load(path string) (econ.Snapshot, bool, error) {
	path, err := resolve(path)
	if err != nil {
		return econ.Snapshot{}, false, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return econ.Snapshot{}, false, nil
		}
		return econ.Snapshot{}, false, err
	}
	if len(raw) == 0 {
		return econ.Snapshot{}, false, nil
	}
	var snap econ.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return econ.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Save writes the snapshot to the given path, or the default location when
// path is empty.
func Save(path string, snap econ.Snapshot) error {
	path, err := resolve(path)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}
