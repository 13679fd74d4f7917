package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/config"
	"github.com/epiagent/epiagent-cli/internal/docs"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that epiagent's dependencies (R, jsonlite, git) and files are in place.
Run this command when something seems wrong, or before filing a bug report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}
	header := func(title string) {
		fmt.Fprintf(stdout, "[ %s ]\n", title)
	}

	printSection("epiagent doctor")
	fmt.Fprintln(stdout)

	// ── Check 1: config ───────────────────────────────────────────────────────
	header("epiagent.yaml")
	cfgPath, _ := config.ConfigPath()
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", "~/.epiagent/epiagent.yaml not found — using defaults (run 'epiagent init')")
	}
	cfg, loadErr := config.Load()
	if loadErr != nil {
		failD("cannot parse epiagent.yaml: %v", loadErr)
	} else {
		printOK("", fmt.Sprintf("config loaded — %d plan rule(s), log level %s", len(cfg.PlanRules), cfg.LogLevel))
	}
	fmt.Fprintln(stdout)

	// ── Check 2: catalogue ────────────────────────────────────────────────────
	header("Catalogue")
	if loadErr == nil {
		if _, err := os.Stat(cfg.CataloguePath); os.IsNotExist(err) {
			printMiss("", fmt.Sprintf("%s not found — the built-in catalogue will be used", cfg.CataloguePath))
		}
		cat, err := openCatalogue(cfg)
		switch {
		case err != nil:
			failD("%v", err)
		case cat.Len() == 0:
			printWarn("", "catalogue is empty — run 'epiagent packages refresh'")
		default:
			printOK("", fmt.Sprintf("%d package(s), %d R package(s)", cat.Len(), len(cat.ByCategory(catalogue.CategoryRPackage))))
		}
	} else {
		printWarn("", "skipped (epiagent.yaml not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Check 3: R ────────────────────────────────────────────────────────────
	header("R")
	rscript := "Rscript"
	if loadErr == nil && cfg.Rscript != "" {
		rscript = cfg.Rscript
	}
	if out, err := exec.Command(rscript, "--version").CombinedOutput(); err != nil {
		failD("%s not found — install R from https://cran.r-project.org", rscript)
	} else {
		printOK("", firstLine(string(out)))
		probe := `cat(requireNamespace("jsonlite", quietly = TRUE))`
		if out, err := exec.Command(rscript, "--vanilla", "-e", probe).Output(); err != nil || strings.TrimSpace(string(out)) != "TRUE" {
			failD("R package jsonlite is missing — run: Rscript -e 'install.packages(\"jsonlite\")'")
		} else {
			printOK("", "jsonlite available")
		}
	}
	fmt.Fprintln(stdout)

	// ── Check 4: git ──────────────────────────────────────────────────────────
	header("git")
	if out, err := exec.Command("git", "--version").Output(); err != nil {
		printWarn("", "git not found — 'epiagent ingest' of remote repositories will fail")
	} else {
		printOK("", firstLine(string(out)))
	}
	fmt.Fprintln(stdout)

	// ── Check 5: docs and SOP ─────────────────────────────────────────────────
	header("Docs")
	if loadErr == nil {
		found, err := docs.Discover(cfg.DocsDir)
		if err != nil {
			failD("%v", err)
		} else {
			printOK("", fmt.Sprintf("%d document(s) in %s", len(found), cfg.DocsDir))
		}
		if _, err := os.Stat(filepath.Join(cfg.DocsDir, docs.SOPFile)); err == nil {
			printOK("", "custom SOP in use")
		} else {
			printSkip("", "no SOP.md — the built-in SOP is served")
		}
	} else {
		printWarn("", "skipped (epiagent.yaml not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Check 6: GitHub token ─────────────────────────────────────────────────
	header("GitHub token")
	if token, err := config.GitHubToken(); err != nil {
		failD("cannot read .env: %v", err)
	} else if token == "" {
		printWarn("", "no EPIAGENT_GITHUB_TOKEN or GITHUB_TOKEN — refreshes use the anonymous rate limit")
	} else {
		printOK("", "token configured")
	}
	fmt.Fprintln(stdout)

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Fprintln(stdout, "===================")
	if allOK {
		fmt.Fprintln(stdout, "✓  All checks passed. epiagent is ready to use.")
		return nil
	}
	fmt.Fprintln(stderr, "✗  One or more checks failed. See details above.")
	return fmt.Errorf("doctor found issues")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
