package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/epiagent/epiagent-cli/internal/agent"
	"github.com/epiagent/epiagent-cli/internal/bridge"
	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/ingest"
	"github.com/epiagent/epiagent-cli/internal/match"
)

var (
	stringItems = mcp.Items(map[string]any{"type": "string"})
	anyItems    = mcp.Items(map[string]any{})
)

// --- find_tools ---

type findToolsArgs struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit"`
	Category string `json:"category"`
}

func findToolsTool() mcp.Tool {
	return mcp.NewTool("find_tools",
		mcp.WithDescription("Find catalogue packages relevant to an epidemiological task. "+
			"Call this before writing custom analysis code."),
		mcp.WithString("query", mcp.Required(),
			mcp.Description(`Natural language description of the task, e.g. "estimate incubation period".`)),
		mcp.WithNumber("limit", mcp.Description("Maximum number of packages to return (default 5).")),
		mcp.WithString("category", mcp.Description("Only return packages of this category, e.g. r_package.")),
	)
}

func (s *Server) handleFindTools(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args findToolsArgs
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	opts := s.opts.Match
	if args.Limit != 0 {
		opts.Limit = args.Limit
	}
	if opts.Limit == 0 {
		opts.Limit = agent.DefaultShortlistSize
	}
	if args.Category != "" {
		opts.Category = args.Category
		opts.ExcludeCategories = nil
	}

	results, err := match.Match(args.Query, s.opts.Catalogue.Entries(), opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.logger.Debug("find_tools", zap.String("query", args.Query), zap.Int("results", len(results)))

	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		out = append(out, r.Payload())
	}
	return jsonResult(out, false)
}

// --- list_packages / get_packages / refresh_packages ---

type listPackagesArgs struct {
	Refresh  bool   `json:"refresh"`
	Category string `json:"category"`
}

func listPackagesTool() mcp.Tool {
	return mcp.NewTool("list_packages",
		mcp.WithDescription("List all known Epiverse-TRACE, Epiforecasts and RECON packages."),
		mcp.WithBoolean("refresh", mcp.Description("Refresh the package catalogue from GitHub first.")),
		mcp.WithString("category", mcp.Description("Only list packages of this category.")),
	)
}

func getPackagesTool() mcp.Tool {
	return mcp.NewTool("get_packages",
		mcp.WithDescription("Get all known packages. Alias for list_packages without refresh."),
	)
}

func refreshPackagesTool() mcp.Tool {
	return mcp.NewTool("refresh_packages",
		mcp.WithDescription("Refresh the package catalogue from GitHub and return a summary."),
	)
}

func (s *Server) handleListPackages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args listPackagesArgs
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Refresh {
		if _, err := s.refresh(ctx); err != nil {
			return jsonResult(errorPayload(err.Error()), true)
		}
	}
	return jsonResult(s.packagesPayload(args.Category), false)
}

func (s *Server) handleGetPackages(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.packagesPayload(""), false)
}

func (s *Server) handleRefreshPackages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.refresh(ctx)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Failed to refresh registry: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Registry refreshed. Found %d packages.", len(entries))), nil
}

func (s *Server) refresh(ctx context.Context) ([]catalogue.Entry, error) {
	if s.opts.Refresher == nil {
		return nil, errors.New("catalogue refresh is not configured")
	}
	entries, err := s.opts.Refresher.Refresh(ctx, s.opts.Catalogue)
	if err != nil {
		s.logger.Warn("catalogue refresh failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("catalogue refreshed", zap.Int("packages", len(entries)))
	return entries, nil
}

func (s *Server) packagesPayload(category string) map[string]any {
	var entries []catalogue.Entry
	if category != "" {
		entries = s.opts.Catalogue.ByCategory(category)
	} else {
		entries = s.opts.Catalogue.Entries()
	}
	packages := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		packages = append(packages, e.Describe())
	}
	return map[string]any{
		"status": bridge.StatusOK,
		"data":   map[string]any{"packages": packages},
	}
}

// --- describe_package ---

type describePackageArgs struct {
	Name string `json:"name"`
}

func describePackageTool() mcp.Tool {
	return mcp.NewTool("describe_package",
		mcp.WithDescription("Return the catalogue metadata for one package."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Package name, e.g. incidence2.")),
	)
}

func (s *Server) handleDescribePackage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args describePackageArgs
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc := s.opts.Catalogue.Describe(args.Name)
	if desc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("package %q is not in the catalogue; try refresh_packages", args.Name)), nil
	}
	return jsonResult(desc, false)
}

// --- call_function ---

func callFunctionTool() mcp.Tool {
	return mcp.NewTool("call_function",
		mcp.WithDescription("Call a function from an Epiverse, Epiforecasts or RECON R package. "+
			`Data frames are passed as {"type":"dataframe","records":[...]}.`),
		mcp.WithString("package", mcp.Required(), mcp.Description("Name of the R package, e.g. epiparameter.")),
		mcp.WithString("function", mcp.Required(), mcp.Description("Name of the function to call.")),
		mcp.WithArray("args", anyItems, mcp.Description("Positional arguments.")),
		mcp.WithObject("kwargs", mcp.Description("Keyword arguments.")),
	)
}

func (s *Server) handleCallFunction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var call bridge.CallRequest
	if err := bindArgs(req, &call); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	call = call.Normalize()
	if err := call.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.opts.Invoker == nil {
		return jsonResult(errorPayload("R bridge is not configured"), true)
	}
	res := s.opts.Invoker.Call(ctx, call)
	return jsonResult(res.Payload(), !res.OK())
}

// --- plan_goal ---

type planGoalArgs struct {
	Goal    string `json:"goal"`
	Execute bool   `json:"execute"`
	Limit   int    `json:"limit"`
}

func planGoalTool() mcp.Tool {
	return mcp.NewTool("plan_goal",
		mcp.WithDescription("Shortlist packages and propose R calls for an analysis goal, optionally running them."),
		mcp.WithString("goal", mcp.Required(), mcp.Description("The analysis goal in plain language.")),
		mcp.WithBoolean("execute", mcp.Description("Run the proposed calls through the R bridge.")),
		mcp.WithNumber("limit", mcp.Description("Shortlist size (default 5).")),
	)
}

func (s *Server) handlePlanGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args planGoalArgs
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(args.Goal) == "" {
		return mcp.NewToolResultError("goal is required"), nil
	}
	if s.opts.Agent == nil {
		return mcp.NewToolResultError("planner is not configured"), nil
	}
	report, err := s.opts.Agent.Run(ctx, args.Goal, args.Limit, args.Execute)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report.Payload(), false)
}

// --- ingest_git_repo ---

type ingestArgs struct {
	URL             string   `json:"url"`
	Branch          string   `json:"branch"`
	MaxFileSize     int64    `json:"max_file_size"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`
	OutputPath      string   `json:"output_path"`
}

func ingestRepoTool() mcp.Tool {
	return mcp.NewTool("ingest_git_repo",
		mcp.WithDescription("Ingest a git repository into a text digest (summary, tree, file contents) to understand its codebase."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL of the repository.")),
		mcp.WithString("branch", mcp.Description("Branch to analyse; defaults to the remote HEAD.")),
		mcp.WithNumber("max_file_size", mcp.Description("Maximum file size in bytes to process.")),
		mcp.WithArray("include_patterns", stringItems, mcp.Description("Glob patterns for files to include.")),
		mcp.WithArray("exclude_patterns", stringItems, mcp.Description("Glob patterns for files to exclude.")),
		mcp.WithString("output_path", mcp.Description("Also write the digest to this file.")),
	)
}

func (s *Server) handleIngestRepo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ingestArgs
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(args.URL) == "" {
		return mcp.NewToolResultError("url is required"), nil
	}

	res, err := ingest.Ingest(ctx, ingest.Options{
		Source:      args.URL,
		Branch:      args.Branch,
		Token:       s.opts.GitHubToken,
		Include:     args.IncludePatterns,
		Exclude:     args.ExcludePatterns,
		MaxFileSize: args.MaxFileSize,
		OutputPath:  args.OutputPath,
	})
	if err != nil {
		s.logger.Warn("ingest failed", zap.String("url", args.URL), zap.Error(err))
		return jsonResult(errorPayload(fmt.Sprintf("Failed to ingest repository '%s': %v", args.URL, err)), true)
	}

	payload := map[string]any{"status": bridge.StatusOK, "data": res.Payload()}
	if res.OutputPath != "" {
		payload["message"] = "Repository analysis saved to " + res.OutputPath
		payload["artifact_path"] = res.OutputPath
	}
	return jsonResult(payload, false)
}
