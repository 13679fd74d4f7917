package bridge

// Status values for ToolResult.
const (
	StatusOK    = "success"
	StatusError = "error"
)

// ToolResult is the outcome of a bridged call.
type ToolResult struct {
	Status       string `json:"status"`
	Data         *Value `json:"data,omitempty"`
	Message      string `json:"message,omitempty"`
	ArtifactPath string `json:"artifact_path,omitempty"`
}

// OK reports whether the call succeeded.
func (r ToolResult) OK() bool { return r.Status == StatusOK }

// Payload returns the result as a plain map for JSON responses.
func (r ToolResult) Payload() map[string]any {
	out := map[string]any{"status": r.Status}
	if r.Message != "" {
		out["message"] = r.Message
	}
	if r.Data != nil {
		out["data"] = r.Data.Interface()
	}
	if r.ArtifactPath != "" {
		out["artifact_path"] = r.ArtifactPath
	}
	return out
}

func errorResult(msg string) ToolResult {
	return ToolResult{Status: StatusError, Message: msg}
}
