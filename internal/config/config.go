package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PlanRule maps goal keywords to a suggested package function call.
type PlanRule struct {
	Keywords    []string `yaml:"keywords"`
	Package     string   `yaml:"package"`
	Function    string   `yaml:"function"`
	Description string   `yaml:"description"`
}

// MatchWeights mirrors match.Weights without importing it.
type MatchWeights struct {
	Tag     float64 `yaml:"tag"`
	Name    float64 `yaml:"name"`
	Summary float64 `yaml:"summary"`
}

// MatchConfig tunes find_tools / `epiagent find`.
type MatchConfig struct {
	Weights           MatchWeights `yaml:"weights"`
	Limit             int          `yaml:"limit"`
	MinScore          float64      `yaml:"min_score,omitempty"`
	ExcludeCategories []string     `yaml:"exclude_categories,omitempty"`
	KeepStopWords     bool         `yaml:"keep_stop_words,omitempty"`
}

// Config is the in-memory representation of ~/.epiagent/epiagent.yaml.
type Config struct {
	CataloguePath string        `yaml:"catalogue_path"`
	DocsDir       string        `yaml:"docs_dir,omitempty"`
	Organizations []string      `yaml:"organizations,omitempty"`
	Rscript       string        `yaml:"rscript,omitempty"`
	CallTimeout   time.Duration `yaml:"call_timeout,omitempty"`
	LogLevel      string        `yaml:"log_level,omitempty"`
	Match         MatchConfig   `yaml:"match"`
	PlanRules     []PlanRule    `yaml:"plan_rules,omitempty"`
}

// Dir returns the absolute path to ~/.epiagent/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".epiagent"), nil
}

// ConfigPath returns the absolute path to ~/.epiagent/epiagent.yaml.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "epiagent.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written by `epiagent init` and used when no file exists.
func DefaultConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Config{
		CataloguePath: filepath.Join(dir, "packages.json"),
		DocsDir:       filepath.Join(dir, "docs"),
		Organizations: []string{"epiverse-trace", "epiforecasts", "reconverse"},
		Rscript:       "Rscript",
		CallTimeout:   2 * time.Minute,
		LogLevel:      "info",
		Match: MatchConfig{
			Weights: MatchWeights{Tag: 3, Name: 2, Summary: 1},
			Limit:   5,
			ExcludeCategories: []string{
				"infrastructure",
				"documentation",
				"repository",
			},
		},
	}, nil
}

// Load reads ~/.epiagent/epiagent.yaml, falling back to DefaultConfig when it
// does not exist. Values left empty in the file keep their defaults, and
// EPIAGENT_CATALOGUE / EPIAGENT_RSCRIPT override the file.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if v, err := GetConfigValue("EPIAGENT_CATALOGUE"); err != nil {
		return nil, err
	} else if v != "" {
		cfg.CataloguePath = v
	}
	if v, err := GetConfigValue("EPIAGENT_RSCRIPT"); err != nil {
		return nil, err
	} else if v != "" {
		cfg.Rscript = v
	}

	// Expand ~ in paths at load time.
	if cfg.CataloguePath, err = ExpandPath(cfg.CataloguePath); err != nil {
		return nil, err
	}
	if cfg.DocsDir, err = ExpandPath(cfg.DocsDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save marshals cfg and writes it to ~/.epiagent/epiagent.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// GitHubToken returns the token used for catalogue refreshes, if any.
func GitHubToken() (string, error) {
	if v, err := GetConfigValue("EPIAGENT_GITHUB_TOKEN"); err != nil || v != "" {
		return v, err
	}
	return GetConfigValue("GITHUB_TOKEN")
}
