package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epiagent/epiagent-cli/internal/config"
	"github.com/epiagent/epiagent-cli/internal/ingest"
)

var (
	flagIngestBranch      string
	flagIngestInclude     []string
	flagIngestExclude     []string
	flagIngestMaxFileSize int64
	flagIngestOutput      string
	flagIngestJSON        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url|dir>",
	Short: "Build a text digest of a repository for an AI assistant",
	Long: `Produce a summary, directory tree and file contents for a git repository
or a local directory. Remote URLs are shallow-cloned into a temporary directory.

Without --output the digest is printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&flagIngestBranch, "branch", "", "Branch to clone (remote sources only)")
	ingestCmd.Flags().StringSliceVar(&flagIngestInclude, "include", nil, "Glob patterns of files to include")
	ingestCmd.Flags().StringSliceVar(&flagIngestExclude, "exclude", nil, "Glob patterns of files or directories to exclude")
	ingestCmd.Flags().Int64Var(&flagIngestMaxFileSize, "max-file-size", ingest.DefaultMaxFileSize, "Skip files larger than this many bytes")
	ingestCmd.Flags().StringVarP(&flagIngestOutput, "output", "o", "", "Write the digest to this file")
	ingestCmd.Flags().BoolVar(&flagIngestJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	source := args[0]
	if ingest.IsRemote(source) {
		if err := checkGitAvailable(); err != nil {
			return err
		}
	}
	token, err := config.GitHubToken()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := ingest.Ingest(ctx, ingest.Options{
		Source:      source,
		Branch:      flagIngestBranch,
		Token:       token,
		Include:     flagIngestInclude,
		Exclude:     flagIngestExclude,
		MaxFileSize: flagIngestMaxFileSize,
		OutputPath:  flagIngestOutput,
	})
	if err != nil {
		return fmt.Errorf("cannot ingest %s: %w", source, err)
	}

	switch {
	case flagIngestJSON:
		return writeJSON(stdout, res.Payload())
	case res.OutputPath != "":
		fmt.Fprintln(stdout, res.Summary)
		fmt.Fprintln(stdout)
		printOK("", fmt.Sprintf("Repository analysis saved to %s", res.OutputPath))
	default:
		fmt.Fprint(stdout, res.FullContext())
	}
	return nil
}
