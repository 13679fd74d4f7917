package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("EPIAGENT_CATALOGUE", "")
	t.Setenv("EPIAGENT_RSCRIPT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CataloguePath != filepath.Join(home, ".epiagent", "packages.json") {
		t.Fatalf("unexpected catalogue path: %q", cfg.CataloguePath)
	}
	if cfg.Match.Weights.Tag != 3 || cfg.Match.Weights.Name != 2 || cfg.Match.Weights.Summary != 1 {
		t.Fatalf("unexpected default weights: %+v", cfg.Match.Weights)
	}
	if cfg.CallTimeout != 2*time.Minute {
		t.Fatalf("unexpected call timeout: %v", cfg.CallTimeout)
	}
}

func TestLoad_FileOverridesAndExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("EPIAGENT_CATALOGUE", "")
	t.Setenv("EPIAGENT_RSCRIPT", "")

	dir := filepath.Join(home, ".epiagent")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "catalogue_path: ~/data/pkgs.json\n" +
		"call_timeout: 45s\n" +
		"match:\n  weights: {tag: 5, name: 1, summary: 0.5}\n  limit: 3\n" +
		"plan_rules:\n  - keywords: [cfr]\n    package: cfr\n    function: cfr_static\n"
	if err := os.WriteFile(filepath.Join(dir, "epiagent.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CataloguePath != filepath.Join(home, "data", "pkgs.json") {
		t.Fatalf("unexpected catalogue path: %q", cfg.CataloguePath)
	}
	if cfg.CallTimeout != 45*time.Second {
		t.Fatalf("unexpected call timeout: %v", cfg.CallTimeout)
	}
	if cfg.Match.Weights.Tag != 5 || cfg.Match.Limit != 3 {
		t.Fatalf("unexpected match config: %+v", cfg.Match)
	}
	if len(cfg.PlanRules) != 1 || cfg.PlanRules[0].Function != "cfr_static" {
		t.Fatalf("unexpected plan rules: %+v", cfg.PlanRules)
	}
	// untouched keys keep defaults
	if cfg.Rscript != "Rscript" {
		t.Fatalf("unexpected rscript: %q", cfg.Rscript)
	}
}

func TestLoad_EnvOverridesCatalogue(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EPIAGENT_CATALOGUE", "/tmp/override.json")
	t.Setenv("EPIAGENT_RSCRIPT", "/opt/R/bin/Rscript")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CataloguePath != "/tmp/override.json" {
		t.Fatalf("expected env override, got %q", cfg.CataloguePath)
	}
	if cfg.Rscript != "/opt/R/bin/Rscript" {
		t.Fatalf("expected env override, got %q", cfg.Rscript)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("match: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EPIAGENT_CATALOGUE", "")
	t.Setenv("EPIAGENT_RSCRIPT", "")

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Organizations = []string{"only-this"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Organizations) != 1 || got.Organizations[0] != "only-this" {
		t.Fatalf("unexpected organizations: %v", got.Organizations)
	}
}

func TestGitHubToken_Precedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EPIAGENT_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "generic")

	tok, err := GitHubToken()
	if err != nil || tok != "generic" {
		t.Fatalf("GitHubToken = %q, %v", tok, err)
	}

	t.Setenv("EPIAGENT_GITHUB_TOKEN", "specific")
	tok, err = GitHubToken()
	if err != nil || tok != "specific" {
		t.Fatalf("GitHubToken = %q, %v", tok, err)
	}
}
