package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/epiagent/epiagent-cli/internal/bridge"
	"github.com/epiagent/epiagent-cli/internal/logging"
)

var (
	flagCallArgs    string
	flagCallKwargs  string
	flagCallTimeout time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call <package> <function>",
	Short: "Call an R function through Rscript and print the JSON result",
	Long: `Call package::function in a fresh Rscript process.

Arguments are JSON. Data frames use {"type":"dataframe","records":[...]}:

  epiagent call epiparameter epiparameter_db --kwargs '{"disease":"Ebola"}'
  epiagent call incidence2 incidence --args '[{"type":"dataframe","records":[{"date":"2024-01-01"}]}]' --kwargs '{"date_index":"date"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVar(&flagCallArgs, "args", "", "Positional arguments as a JSON array")
	callCmd.Flags().StringVar(&flagCallKwargs, "kwargs", "", "Keyword arguments as a JSON object")
	callCmd.Flags().DurationVar(&flagCallTimeout, "timeout", 0, "Override the configured call timeout")
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := checkRscriptAvailable(cfg.Rscript); err != nil {
		return err
	}
	req, err := parseCallRequest(args[0], args[1], flagCallArgs, flagCallKwargs)
	if err != nil {
		return err
	}
	if flagCallTimeout > 0 {
		cfg.CallTimeout = flagCallTimeout
	}

	cat, err := openCatalogue(cfg)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res := newInvoker(cfg, cat, logger).Call(ctx, req)
	if err := writeJSON(stdout, res.Payload()); err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%s failed", req.Target())
	}
	return nil
}

// parseCallRequest builds and validates a request from CLI arguments.
func parseCallRequest(pkg, fn, rawArgs, rawKwargs string) (bridge.CallRequest, error) {
	req := bridge.CallRequest{Package: pkg, Function: fn}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &req.Args); err != nil {
			return req, fmt.Errorf("--args must be a JSON array: %w", err)
		}
	}
	if rawKwargs != "" {
		if err := json.Unmarshal([]byte(rawKwargs), &req.Kwargs); err != nil {
			return req, fmt.Errorf("--kwargs must be a JSON object: %w", err)
		}
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}
