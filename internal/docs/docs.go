// Package docs serves the analysis SOP and reference markdown documents from
// a local directory.
package docs

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed sop.md
var defaultSOP string

// SOPFile is the document name that overrides the embedded SOP.
const SOPFile = "SOP.md"

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Doc is the metadata of one markdown document.
type Doc struct {
	ID          string   `json:"id"`
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Discover scans dir recursively for *.md files. A missing dir yields no documents.
func Discover(dir string) ([]Doc, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Doc{}, nil
		}
		return nil, fmt.Errorf("cannot stat docs directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs path is not a directory: %s", dir)
	}

	out := []Doc{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		out = append(out, describe(docID(rel), filepath.ToSlash(rel), string(b)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan docs: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Read returns the full content of the document with the given id.
func Read(dir, id string) (string, error) {
	if id == "" || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	path := filepath.Join(dir, filepath.FromSlash(id)+".md")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(b), nil
}

// SOP returns dir/SOP.md when present, otherwise the built-in procedure.
func SOP(dir string) string {
	if dir != "" {
		if b, err := os.ReadFile(filepath.Join(dir, SOPFile)); err == nil && len(strings.TrimSpace(string(b))) > 0 {
			return string(b)
		}
	}
	return defaultSOP
}

// DefaultSOP returns the built-in procedure text.
func DefaultSOP() string {
	return defaultSOP
}

// SOPPrompt wraps the SOP in the instruction sent with the standard_operating_procedure prompt.
func SOPPrompt(dir string) string {
	return "Please follow the Standard Operating Procedure for this analysis:\n\n" + SOP(dir)
}

func describe(id, rel, content string) Doc {
	h, body := parseDocument(content)
	name := h.Name
	if name == "" {
		name = h.Title
	}
	if name == "" {
		name = firstHeading(body)
	}
	if name == "" {
		name = id
	}
	desc := h.Description
	if desc == "" {
		desc = firstParagraphLine(body)
	}
	return Doc{ID: id, Path: rel, Name: name, Description: desc, Tags: h.Tags}
}

func docID(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
