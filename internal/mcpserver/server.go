// Package mcpserver exposes the catalogue, matcher, R bridge, planner and
// repository digest as MCP tools over stdio.
package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/epiagent/epiagent-cli/internal/agent"
	"github.com/epiagent/epiagent-cli/internal/bridge"
	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/match"
)

// Name is the server name announced during MCP initialisation.
const Name = "epiagent"

// Options wires the server to its collaborators. Catalogue is required; the
// rest may be nil, in which case the dependent tools report an error result.
type Options struct {
	Version     string
	Catalogue   *catalogue.Catalogue
	Refresher   *catalogue.Refresher
	Invoker     *bridge.Invoker
	Agent       *agent.Agent
	Match       match.Options
	DocsDir     string
	GitHubToken string
	Logger      *zap.Logger
}

// Server holds the MCP server and the state its handlers share.
type Server struct {
	opts   Options
	logger *zap.Logger
	mcp    *server.MCPServer
}

// New builds the server and registers every tool, resource and prompt.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Catalogue == nil {
		opts.Catalogue = catalogue.New(nil)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{opts: opts, logger: logger}
	s.mcp = server.NewMCPServer(
		Name,
		opts.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	s.mcp.AddTool(findToolsTool(), s.handleFindTools)
	s.mcp.AddTool(listPackagesTool(), s.handleListPackages)
	s.mcp.AddTool(getPackagesTool(), s.handleGetPackages)
	s.mcp.AddTool(refreshPackagesTool(), s.handleRefreshPackages)
	s.mcp.AddTool(describePackageTool(), s.handleDescribePackage)
	s.mcp.AddTool(callFunctionTool(), s.handleCallFunction)
	s.mcp.AddTool(planGoalTool(), s.handlePlanGoal)
	s.mcp.AddTool(ingestRepoTool(), s.handleIngestRepo)

	s.mcp.AddResource(sopResource(), s.handleSOPResource)
	s.mcp.AddResourceTemplate(docTemplate(), s.handleDocResource)
	s.mcp.AddPrompt(sopPrompt(), s.handleSOPPrompt)
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio speaks JSON-RPC on in/out until ctx is cancelled or in closes.
// Nothing else may write to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))
	s.logger.Info("mcp server listening on stdio",
		zap.String("version", s.opts.Version),
		zap.Int("packages", s.opts.Catalogue.Len()),
	)
	return stdio.Listen(ctx, in, out)
}

const instructions = `epiagent connects you to a catalogue of epidemiological R packages
(Epiverse-TRACE, Epiforecasts, RECON) and can run their functions.

Before writing analysis code, call find_tools with a short description of the task
and prefer the packages it returns. Use describe_package for details, call_function
to run an R function, and plan_goal for a suggested sequence of calls. Read the
epiagent://sop resource for the standard operating procedure.`
