package catalogue

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed default_catalogue.json
var defaultCatalogue []byte

// Load reads a JSON catalogue from path. A missing file yields an empty catalogue
// that still remembers path, so a later Save or refresh creates it.
func Load(path string) (*Catalogue, error) {
	c := &Catalogue{source: path}
	entries, err := readFile(path)
	if err != nil {
		return nil, err
	}
	c.setLocked(entries)
	return c, nil
}

// Default returns the catalogue shipped with the binary.
func Default() *Catalogue {
	entries, err := Decode(defaultCatalogue)
	if err != nil {
		// The embedded file is covered by tests.
		panic(fmt.Sprintf("embedded catalogue is invalid: %v", err))
	}
	return New(entries)
}

// DefaultJSON returns the raw bytes of the embedded catalogue.
func DefaultJSON() []byte {
	return append([]byte(nil), defaultCatalogue...)
}

// Reload re-reads the catalogue from its source file.
func (c *Catalogue) Reload() error {
	path := c.Source()
	if path == "" {
		return fmt.Errorf("catalogue has no source file to reload from")
	}
	entries, err := readFile(path)
	if err != nil {
		return err
	}
	c.Replace(entries)
	return nil
}

// Decode parses a JSON array of catalogue entries.
func Decode(b []byte) ([]Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: catalogue must be a JSON array: %v", ErrInvalidInput, err)
	}
	out := make([]Entry, 0, len(raw))
	for i, r := range raw {
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			return nil, fmt.Errorf("catalogue entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func readFile(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read catalogue %s: %w", path, err)
	}
	entries, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("invalid catalogue %s: %w", path, err)
	}
	return entries, nil
}
