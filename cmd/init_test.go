package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "packages.json")

	wrote, err := writeIfMissing(path, []byte("first"), false)
	if err != nil || !wrote {
		t.Fatalf("first write: wrote=%v err=%v", wrote, err)
	}
	wrote, err = writeIfMissing(path, []byte("second"), false)
	if err != nil || wrote {
		t.Fatalf("second write should be skipped: wrote=%v err=%v", wrote, err)
	}
	if b, _ := os.ReadFile(path); string(b) != "first" {
		t.Fatalf("content = %q, want first", b)
	}
	wrote, err = writeIfMissing(path, []byte("forced"), true)
	if err != nil || !wrote {
		t.Fatalf("forced write: wrote=%v err=%v", wrote, err)
	}
	if b, _ := os.ReadFile(path); string(b) != "forced" {
		t.Fatalf("content = %q, want forced", b)
	}
}

func TestOpenCatalogue_FallsBackToDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EPIAGENT_CATALOGUE", "")
	t.Setenv("EPIAGENT_RSCRIPT", "")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cat, err := openCatalogue(cfg)
	if err != nil {
		t.Fatalf("openCatalogue: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatal("expected built-in catalogue")
	}
	if cat.Source() != cfg.CataloguePath {
		t.Fatalf("source = %q, want %q", cat.Source(), cfg.CataloguePath)
	}
	if !cat.Has("incidence2") {
		t.Fatal("built-in catalogue should include incidence2")
	}
}
