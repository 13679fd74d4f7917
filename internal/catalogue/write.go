package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Save writes the catalogue as an indented JSON array. An empty path means Source().
//
// The write is atomic: entries go to a temp file in the same directory which is
// then renamed over the target, all while holding <path>.lock.
func (c *Catalogue) Save(path string) error {
	if path == "" {
		path = c.Source()
	}
	if path == "" {
		return fmt.Errorf("no target path supplied for saving the catalogue")
	}

	b, err := json.MarshalIndent(c.Entries(), "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal catalogue: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create catalogue dir %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("cannot lock catalogue %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create temp catalogue: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write catalogue: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	_ = os.Chmod(tmpName, 0o644)
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot install catalogue %s: %w", path, err)
	}
	return nil
}
