package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/config"
)

var (
	flagPackagesCategory string
	flagPackagesJSON     bool
	flagPackagesRefresh  bool
)

var packagesCmd = &cobra.Command{
	Use:     "packages",
	Aliases: []string{"pkgs"},
	Short:   "List, describe and refresh the package catalogue",
	Args:    cobra.NoArgs,
	RunE:    runPackagesList,
}

var packagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogue packages",
	Args:  cobra.NoArgs,
	RunE:  runPackagesList,
}

var packagesDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show the catalogue entry for one package",
	Args:  cobra.ExactArgs(1),
	RunE:  runPackagesDescribe,
}

var packagesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the catalogue from the configured GitHub organisations",
	Long: `Fetch every non-archived repository of the configured organisations and
merge it into ~/.epiagent/packages.json. Set EPIAGENT_GITHUB_TOKEN or
GITHUB_TOKEN in ~/.epiagent/.env to raise the GitHub rate limit.`,
	Args: cobra.NoArgs,
	RunE: runPackagesRefresh,
}

func init() {
	for _, c := range []*cobra.Command{packagesCmd, packagesListCmd} {
		c.Flags().StringVar(&flagPackagesCategory, "category", "", "Only list packages of this category")
		c.Flags().BoolVar(&flagPackagesJSON, "json", false, "Print as JSON")
		c.Flags().BoolVar(&flagPackagesRefresh, "refresh", false, "Refresh from GitHub before listing")
	}
	packagesDescribeCmd.Flags().BoolVar(&flagPackagesJSON, "json", false, "Print as JSON")
	packagesCmd.AddCommand(packagesListCmd, packagesDescribeCmd, packagesRefreshCmd)
	rootCmd.AddCommand(packagesCmd)
}

func runPackagesList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalogue(cfg)
	if err != nil {
		return err
	}
	if flagPackagesRefresh {
		if err := refreshCatalogue(cmd.Context(), cfg, cat); err != nil {
			return err
		}
	}

	var entries []catalogue.Entry
	if flagPackagesCategory != "" {
		entries = cat.ByCategory(flagPackagesCategory)
	} else {
		entries = cat.Entries()
	}

	if flagPackagesJSON {
		out := make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Describe())
		}
		return writeJSON(stdout, map[string]any{"packages": out})
	}

	printSection(fmt.Sprintf("epiagent packages (%d)", len(entries)))
	fmt.Fprintln(stdout)
	printPackageTable(stdout, entries)
	return nil
}

func runPackagesDescribe(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalogue(cfg)
	if err != nil {
		return err
	}
	e, ok := cat.Get(args[0])
	if !ok {
		return fmt.Errorf("package %q is not in the catalogue\nRun 'epiagent packages refresh' to update it.", args[0])
	}
	if flagPackagesJSON {
		return writeJSON(stdout, e.Describe())
	}

	printSection(e.Name)
	fmt.Fprintf(stdout, "\n  Category:     %s\n", e.Category)
	fmt.Fprintf(stdout, "  Organization: %s\n", emptyAsNA(e.Organization))
	fmt.Fprintf(stdout, "  Homepage:     %s\n", emptyAsNA(e.Homepage))
	fmt.Fprintf(stdout, "  Topics:       %s\n", emptyAsNA(strings.Join(e.Tags, ", ")))
	if e.Summary != "" {
		fmt.Fprintf(stdout, "\n  %s\n", e.Summary)
	}
	return nil
}

func runPackagesRefresh(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalogue(cfg)
	if err != nil {
		return err
	}
	return refreshCatalogue(cmd.Context(), cfg, cat)
}

func refreshCatalogue(ctx context.Context, cfg *config.Config, cat *catalogue.Catalogue) error {
	r, err := newRefresher(cfg)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	orgs := r.Orgs
	if len(orgs) == 0 {
		orgs = catalogue.DefaultOrganizations
	}
	printInfo("", fmt.Sprintf("refreshing from %s", strings.Join(orgs, ", ")))
	entries, err := r.Refresh(ctx, cat)
	if err != nil {
		printErr("", err.Error())
		return fmt.Errorf("catalogue refresh failed")
	}
	printOK("", fmt.Sprintf("Registry refreshed. Found %d packages.", len(entries)))
	if src := cat.Source(); src != "" {
		printOK("", fmt.Sprintf("saved %s", src))
	}
	return nil
}

func printPackageTable(w io.Writer, entries []catalogue.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tCATEGORY\tORGANIZATION\tSUMMARY")
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", e.Name, e.Category, emptyAsNA(e.Organization), shorten(e.Summary, 60))
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
