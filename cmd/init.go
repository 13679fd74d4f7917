package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/config"
	"github.com/epiagent/epiagent-cli/internal/docs"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.epiagent with a config, .env template and seed catalogue",
	Long: `Initialise the epiagent home directory at ~/.epiagent/.

Writes epiagent.yaml, a .env template for tokens, the built-in package
catalogue and an editable copy of the analysis SOP. Existing files are kept
unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var flagInitForce bool

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite the catalogue and SOP with the built-in versions")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. ~/.epiagent ─────────────────────────────────────────────────────────
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("epiagent directory ready: %s", dir))

	// ── 2. epiagent.yaml ───────────────────────────────────────────────────────
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. .env template ───────────────────────────────────────────────────────
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(envPath)
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	if os.IsNotExist(statErr) {
		printOK("", fmt.Sprintf(".env template written: %s", envPath))
	} else {
		printSkip("", fmt.Sprintf(".env already exists: %s", envPath))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// ── 4. Seed catalogue ──────────────────────────────────────────────────────
	wrote, err := writeIfMissing(cfg.CataloguePath, catalogue.DefaultJSON(), flagInitForce)
	if err != nil {
		return err
	}
	if wrote {
		printOK("", fmt.Sprintf("Catalogue seeded: %s (%d packages)", cfg.CataloguePath, catalogue.Default().Len()))
	} else {
		printSkip("", fmt.Sprintf("Catalogue already exists: %s", cfg.CataloguePath))
	}

	// ── 5. Editable SOP ────────────────────────────────────────────────────────
	sopPath := filepath.Join(cfg.DocsDir, docs.SOPFile)
	wrote, err = writeIfMissing(sopPath, []byte(docs.DefaultSOP()), flagInitForce)
	if err != nil {
		return err
	}
	if wrote {
		printOK("", fmt.Sprintf("SOP written: %s", sopPath))
	} else {
		printSkip("", fmt.Sprintf("SOP already exists: %s", sopPath))
	}

	fmt.Fprintln(stdout, "\n✓  epiagent init complete. Run 'epiagent doctor' to verify your environment.")
	return nil
}

// writeIfMissing writes data to path unless it exists and force is false.
func writeIfMissing(path string, data []byte, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("cannot write %s: %w", path, err)
	}
	return true, nil
}
