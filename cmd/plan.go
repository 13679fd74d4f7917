package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epiagent/epiagent-cli/internal/agent"
	"github.com/epiagent/epiagent-cli/internal/logging"
)

var (
	flagPlanExecute bool
	flagPlanK       int
	flagPlanJSON    bool
)

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Shortlist packages and propose R calls for an analysis goal",
	Long: `Shortlist catalogue packages for a goal and propose a sequence of R calls
from the configured plan rules. With --execute the calls are run through Rscript
in order; a failing step is reported and the remaining steps still run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&flagPlanExecute, "execute", false, "Run the planned calls through Rscript")
	planCmd.Flags().IntVar(&flagPlanK, "k", agent.DefaultShortlistSize, "Shortlist size")
	planCmd.Flags().BoolVar(&flagPlanJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagPlanExecute {
		if err := checkRscriptAvailable(cfg.Rscript); err != nil {
			return err
		}
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
	a := newAgent(cfg, cat, newInvoker(cfg, cat, logger), logger)
	goal := strings.Join(args, " ")
	report, err := a.Run(ctx, goal, flagPlanK, flagPlanExecute)
	if err != nil {
		return err
	}

	if flagPlanJSON {
		return writeJSON(stdout, report.Payload())
	}
	printReport(report, flagPlanExecute)
	return nil
}

func printReport(report agent.Report, executed bool) {
	printSection(fmt.Sprintf("epiagent plan %q", report.Goal))

	printBullet("Shortlist:")
	if len(report.Shortlist) == 0 {
		printMiss("", "no matching packages")
	}
	for _, r := range report.Shortlist {
		printInfo(r.Entry.Name, fmt.Sprintf("score %g — %s", r.Score, strings.Join(r.Matched, ", ")))
	}

	printBullet("Plan:")
	if len(report.Plan) == 0 {
		printSkip("", "no rule matched this goal")
		return
	}
	for i, step := range report.Plan {
		printInfo(fmt.Sprintf("%d", i+1), fmt.Sprintf("%s::%s  %s", step.Package, step.Function, step.Description))
	}

	if !executed {
		return
	}
	printBullet("Execution:")
	for _, step := range report.Execution {
		target := step.Package + "::" + step.Function
		if step.Status == "success" {
			printOK(target, emptyAsNA(step.Message))
		} else {
			printErr(target, step.Message)
		}
	}
}
