package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epiagent/epiagent-cli/internal/agent"
	"github.com/epiagent/epiagent-cli/internal/bridge"
	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/config"
	"github.com/epiagent/epiagent-cli/internal/match"
)

var rootCmd = &cobra.Command{
	Use:          "epiagent",
	Short:        "epiagent — epidemiology R package catalogue and MCP server",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `epiagent helps language-model agents find and run epidemiological R packages
(Epiverse-TRACE, Epiforecasts, RECON). It keeps a package catalogue at
~/.epiagent/packages.json and serves it over MCP with 'epiagent serve'.`,
}

// checkRscriptAvailable returns a clear error if Rscript is not found.
func checkRscriptAvailable(path string) error {
	if path == "" {
		path = "Rscript"
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("%s is not installed or not on PATH\n"+
			"  epiagent calls R functions through Rscript.\n"+
			"  Install R from https://cran.r-project.org and try again.", path)
	}
	return nil
}

// checkGitAvailable returns a clear error if git is not found on PATH.
func checkGitAvailable() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is not installed or not on PATH\n" +
			"  epiagent needs git to ingest remote repositories.\n" +
			"  Install git from https://git-scm.com and try again.")
	}
	return nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'epiagent init' to create one.", err)
	}
	return cfg, nil
}

// openCatalogue loads the configured catalogue file, falling back to the
// built-in seed when the file has not been written yet.
func openCatalogue(cfg *config.Config) (*catalogue.Catalogue, error) {
	if _, err := os.Stat(cfg.CataloguePath); os.IsNotExist(err) {
		cat := catalogue.Default()
		cat.SetSource(cfg.CataloguePath)
		return cat, nil
	}
	cat, err := catalogue.Load(cfg.CataloguePath)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalogue: %w", err)
	}
	return cat, nil
}

func matchOptions(cfg *config.Config) match.Options {
	return match.Options{
		Limit:    cfg.Match.Limit,
		MinScore: cfg.Match.MinScore,
		Weights: match.Weights{
			Tag:     cfg.Match.Weights.Tag,
			Name:    cfg.Match.Weights.Name,
			Summary: cfg.Match.Weights.Summary,
		},
		ExcludeCategories: append([]string(nil), cfg.Match.ExcludeCategories...),
		KeepStopWords:     cfg.Match.KeepStopWords,
	}
}

func newRefresher(cfg *config.Config) (*catalogue.Refresher, error) {
	token, err := config.GitHubToken()
	if err != nil {
		return nil, err
	}
	return &catalogue.Refresher{Token: token, Orgs: cfg.Organizations}, nil
}

func newInvoker(cfg *config.Config, cat *catalogue.Catalogue, logger *zap.Logger) *bridge.Invoker {
	return &bridge.Invoker{
		Runner: &bridge.RscriptRunner{
			Path:    cfg.Rscript,
			Timeout: cfg.CallTimeout,
			Logger:  logger,
		},
		Catalogue: cat,
		Logger:    logger,
	}
}

func newAgent(cfg *config.Config, cat *catalogue.Catalogue, inv *bridge.Invoker, logger *zap.Logger) *agent.Agent {
	return &agent.Agent{
		Catalogue: cat,
		Rules:     agent.RulesFromConfig(cfg.PlanRules),
		Caller:    inv,
		Options:   matchOptions(cfg),
		Logger:    logger,
	}
}
