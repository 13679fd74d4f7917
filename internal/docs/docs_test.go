package docs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestDiscover_ParsesFrontmatterAndBody(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "delays.md", "---\nname: Delay distributions\ndescription: Where to find delays\ntags: [epiparameter]\n---\n# Ignored\n")
	writeDoc(t, dir, "guides/rt.md", "# Estimating Rt\n\nUse EpiEstim for daily incidence.\n")
	writeDoc(t, dir, "notes.txt", "not markdown")
	writeDoc(t, dir, ".hidden/secret.md", "# Hidden\n")

	got, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 docs, got %d: %+v", len(got), got)
	}

	if got[0].ID != "delays" || got[0].Name != "Delay distributions" || got[0].Description != "Where to find delays" {
		t.Fatalf("unexpected frontmatter doc: %+v", got[0])
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0] != "epiparameter" {
		t.Fatalf("unexpected tags: %v", got[0].Tags)
	}
	if got[1].ID != "guides/rt" || got[1].Path != "guides/rt.md" {
		t.Fatalf("unexpected nested doc: %+v", got[1])
	}
	if got[1].Name != "Estimating Rt" || got[1].Description != "Use EpiEstim for daily incidence." {
		t.Fatalf("expected heading name and body description, got %+v", got[1])
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	got, err := Discover(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestDiscover_MalformedFrontmatterKeepsContent(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "broken.md", "---\nname: [unterminated\n---\nbody line\n")

	got, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 || got[0].Name != "broken" {
		t.Fatalf("expected fallback to id, got %+v", got)
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guides/rt.md", "# Rt\n")

	content, err := Read(dir, "guides/rt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if content != "# Rt\n" {
		t.Fatalf("unexpected content %q", content)
	}

	for _, id := range []string{"", "missing", "../etc/passwd"} {
		if _, err := Read(dir, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Read(%q) = %v, want ErrNotFound", id, err)
		}
	}
}

func TestSOP_OverrideAndDefault(t *testing.T) {
	dir := t.TempDir()
	if got := SOP(dir); got != DefaultSOP() {
		t.Fatalf("expected embedded SOP when no override exists")
	}
	if !strings.Contains(DefaultSOP(), "find_tools") {
		t.Fatalf("embedded SOP should mention find_tools")
	}

	writeDoc(t, dir, SOPFile, "# Local SOP\n")
	if got := SOP(dir); got != "# Local SOP\n" {
		t.Fatalf("expected override, got %q", got)
	}
	if !strings.HasPrefix(SOPPrompt(dir), "Please follow the Standard Operating Procedure") {
		t.Fatalf("unexpected prompt prefix")
	}
}
