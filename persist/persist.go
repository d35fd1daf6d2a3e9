// Package persist stores cache snapshots as pretty-printed JSON files.
//
// A missing file is the one recovered condition: it loads as an empty
// snapshot. Every other read or decode failure is returned.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/IvanBrykalov/ttlcache/validate"
)

// ErrNotObject is returned when a snapshot is not a JSON object.
var ErrNotObject = fmt.Errorf("%w: snapshot is not a JSON object", validate.ErrDeserialization)

var emptyObject = []byte("{}")

// LoadBytes returns the raw file content, or "{}" when the file does not exist.
func LoadBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyObject, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", path, err)
	}
	return data, nil
}

// Load reads a snapshot file into its top-level members.
func Load(path string) (map[string]json.RawMessage, error) {
	data, err := LoadBytes(path)
	if err != nil {
		return nil, err
	}
	if !isObject(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, path)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", validate.ErrDeserialization, path, err)
	}
	return out, nil
}

// Save writes v as JSON indented by two spaces. v must encode to an object.
// The file is replaced atomically through a temporary file in the same directory.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	if !isObject(data) {
		return ErrNotObject
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("persist: rename %s: %w", path, err)
	}
	return nil
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{' && json.Valid(data)
}
