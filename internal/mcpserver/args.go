package mcpserver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
)

// bindArgs decodes the tool arguments into dst.
func bindArgs(req mcp.CallToolRequest, dst any) error {
	raw, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", catalogue.ErrInvalidInput, err)
	}
	if bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", catalogue.ErrInvalidInput, err)
	}
	return nil
}

// jsonResult renders v as indented JSON text content.
func jsonResult(v any, isError bool) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode result: %v", err)), nil
	}
	res := mcp.NewToolResultText(string(b))
	res.IsError = isError
	return res, nil
}

func errorPayload(msg string) map[string]any {
	return map[string]any{"status": "error", "message": msg}
}
