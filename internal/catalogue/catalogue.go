// Package catalogue holds the package registry consumed by the matcher.
//
// A Catalogue is an explicitly owned value: callers load it, pass it around, and
// reload or refresh it when they choose to. There is no process-global instance.
package catalogue

import (
	"sort"
	"sync"
)

// Catalogue is a reloadable, concurrency-safe set of entries keyed by name.
type Catalogue struct {
	mu      sync.RWMutex
	entries map[string]Entry
	source  string
}

// New builds an in-memory catalogue. Later entries with the same name replace earlier ones.
func New(entries []Entry) *Catalogue {
	c := &Catalogue{}
	c.setLocked(entries)
	return c
}

// Source returns the file the catalogue was loaded from, or "".
func (c *Catalogue) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// SetSource changes the file used by Reload and by Save("").
func (c *Catalogue) SetSource(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = path
}

// Len returns the number of entries.
func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of all entries sorted by name.
func (c *Catalogue) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, copyEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the entry named name.
func (c *Catalogue) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, false
	}
	return copyEntry(e), true
}

// Has reports whether name is in the catalogue.
func (c *Catalogue) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Describe returns the payload form of the named entry, or nil.
func (c *Catalogue) Describe(name string) map[string]any {
	e, ok := c.Get(name)
	if !ok {
		return nil
	}
	return e.Describe()
}

// Ensure returns the sorted subset of names present in the catalogue.
func (c *Catalogue) Ensure(names []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, n := range names {
		if _, ok := c.entries[n]; !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Categories returns all distinct categories, sorted.
func (c *Catalogue) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, e := range c.entries {
		seen[e.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns entries in category, sorted by name.
func (c *Catalogue) ByCategory(category string) []Entry {
	var out []Entry
	for _, e := range c.Entries() {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Replace swaps the full entry set.
func (c *Catalogue) Replace(entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(entries)
}

func (c *Catalogue) setLocked(entries []Entry) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Category == "" {
			e.Category = CategoryUnknown
		}
		m[e.Name] = copyEntry(e)
	}
	c.entries = m
}

func copyEntry(e Entry) Entry {
	e.Tags = append([]string(nil), e.Tags...)
	return e
}
