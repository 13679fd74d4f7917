package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/config"
	"github.com/epiagent/epiagent-cli/internal/logging"
	"github.com/epiagent/epiagent-cli/internal/mcpserver"
)

var flagServeNoWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve the epiagent tools over the Model Context Protocol on stdin/stdout.

Logs go to stderr as JSON. The catalogue file is watched and reloaded when it
changes on disk. 'epiagent setup <dir>' writes an editor configuration that
launches this command.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagServeNoWatch, "no-watch", false, "Do not reload the catalogue when its file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cat, err := openCatalogue(cfg)
	if err != nil {
		return err
	}
	refresher, err := newRefresher(cfg)
	if err != nil {
		return err
	}
	token, err := config.GitHubToken()
	if err != nil {
		return err
	}
	if err := checkRscriptAvailable(cfg.Rscript); err != nil {
		logger.Warn("R bridge unavailable; call_function will report errors", zap.Error(err))
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flagServeNoWatch {
		if err := catalogue.Watch(ctx, cat, logger.Named("watch"), nil); err != nil {
			logger.Warn("catalogue will not be reloaded on change", zap.Error(err))
		}
	}

	inv := newInvoker(cfg, cat, logger.Named("bridge"))
	srv := mcpserver.New(mcpserver.Options{
		Version:     version,
		Catalogue:   cat,
		Refresher:   refresher,
		Invoker:     inv,
		Agent:       newAgent(cfg, cat, inv, logger.Named("agent")),
		Match:       matchOptions(cfg),
		DocsDir:     cfg.DocsDir,
		GitHubToken: token,
		Logger:      logger,
	})

	err = srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("mcp server stopped")
	return nil
}
