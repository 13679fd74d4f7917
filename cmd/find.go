package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/match"
)

var (
	flagFindK        int
	flagFindCategory string
	flagFindMinScore float64
	flagFindAll      bool
	flagFindJSON     bool
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Recommend catalogue packages for a free-text task",
	Long: `Rank catalogue packages against a description of an analysis task.

Keywords found in a package's topics score highest, then its name, then its
summary. Infrastructure, documentation and repository entries are hidden
unless --all or --category is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().IntVar(&flagFindK, "k", 0, "Number of results to show (default from config)")
	findCmd.Flags().StringVar(&flagFindCategory, "category", "", "Only show packages of this category")
	findCmd.Flags().Float64Var(&flagFindMinScore, "min-score", 0, "Minimum score to include")
	findCmd.Flags().BoolVar(&flagFindAll, "all", false, "Include infrastructure, documentation and repository entries")
	findCmd.Flags().BoolVar(&flagFindJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalogue(cfg)
	if err != nil {
		return err
	}

	opts := matchOptions(cfg)
	if cmd.Flags().Changed("k") {
		opts.Limit = flagFindK
	}
	if cmd.Flags().Changed("min-score") {
		opts.MinScore = flagFindMinScore
	}
	if flagFindAll || flagFindCategory != "" {
		opts.ExcludeCategories = nil
	}
	opts.Category = flagFindCategory

	query := strings.Join(args, " ")
	results, err := match.Match(query, cat.Entries(), opts)
	if err != nil {
		return err
	}

	if flagFindJSON {
		out := make([]map[string]any, 0, len(results))
		for _, r := range results {
			out = append(out, r.Payload())
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printFindResults(stdout, query, results)
	return nil
}

// categoryPriority orders result groups; unknown categories sort after these alphabetically.
var categoryPriority = map[string]int{
	catalogue.CategoryRPackage:    0,
	catalogue.CategoryApplication: 1,
	catalogue.CategoryTraining:    2,
}

// groupByCategory splits ranked results by category, keeping rank order inside each group.
func groupByCategory(results []match.Result) ([]string, map[string][]match.Result) {
	grouped := make(map[string][]match.Result)
	order := make([]string, 0, 4)
	for _, r := range results {
		c := r.Entry.Category
		if c == "" {
			c = catalogue.CategoryUnknown
		}
		if _, ok := grouped[c]; !ok {
			order = append(order, c)
		}
		grouped[c] = append(grouped[c], r)
	}
	sort.SliceStable(order, func(i, j int) bool {
		pi, okI := categoryPriority[order[i]]
		pj, okJ := categoryPriority[order[j]]
		switch {
		case okI && okJ:
			return pi < pj
		case okI:
			return true
		case okJ:
			return false
		}
		return order[i] < order[j]
	})
	return order, grouped
}

func printFindResults(w io.Writer, query string, results []match.Result) {
	fmt.Fprintf(w, "\nepiagent find %q\n\n", query)
	fmt.Fprintf(w, "Results (%d found):\n", len(results))
	if len(results) == 0 {
		return
	}

	order, grouped := groupByCategory(results)
	for _, g := range order {
		items := grouped[g]
		fmt.Fprintf(w, "\n%s (%d):\n", g, len(items))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, r := range items {
			fmt.Fprintf(tw, "  %d.\t[%g]\t%s\n", i+1, r.Score, r.Entry.Name)
			if s := strings.TrimSpace(r.Entry.Summary); s != "" {
				fmt.Fprintf(tw, "  - %s\n", s)
			}
			if len(r.Matched) > 0 {
				fmt.Fprintf(tw, "    matched: %s\n", strings.Join(r.Matched, ", "))
			}
		}
		_ = tw.Flush()
	}
}
