package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/epiagent/epiagent-cli/internal/docs"
)

const (
	sopURI       = "epiagent://sop"
	docURIPrefix = "epiagent://docs/"
)

func sopResource() mcp.Resource {
	return mcp.NewResource(sopURI, "Standard Operating Procedure",
		mcp.WithResourceDescription("Standard operating procedure for epidemiological analysis."),
		mcp.WithMIMEType("text/markdown"),
	)
}

func docTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(docURIPrefix+"{id}", "Reference document",
		mcp.WithTemplateDescription("A markdown document from the epiagent docs directory."),
		mcp.WithTemplateMIMEType("text/markdown"),
	)
}

func sopPrompt() mcp.Prompt {
	return mcp.NewPrompt("standard_operating_procedure",
		mcp.WithPromptDescription("Instructs the assistant to follow the analysis SOP."),
	)
}

func (s *Server) handleSOPResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     docs.SOP(s.opts.DocsDir),
		},
	}, nil
}

func (s *Server) handleDocResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, docURIPrefix)
	if id == req.Params.URI {
		return nil, fmt.Errorf("unsupported resource URI %q", req.Params.URI)
	}
	text, err := docs.Read(s.opts.DocsDir, id)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "text/markdown", Text: text},
	}, nil
}

func (s *Server) handleSOPPrompt(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Standard Operating Procedure for epidemiological analysis",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(docs.SOPPrompt(s.opts.DocsDir))),
		},
	), nil
}
