package bridge

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed driver.R
var driverScript []byte

// DefaultTimeout bounds a single R call when the runner has no timeout set.
const DefaultTimeout = 2 * time.Minute

// Runner executes a validated call request.
type Runner interface {
	Run(ctx context.Context, req CallRequest) (ToolResult, error)
}

// RscriptRunner runs calls in a fresh Rscript process per request.
type RscriptRunner struct {
	Path    string
	Timeout time.Duration
	Logger  *zap.Logger
}

// DriverScript returns the R source used to perform bridged calls.
func DriverScript() []byte {
	return bytes.Clone(driverScript)
}

// Run writes the request to a temp dir, executes the driver and decodes its response.
func (r *RscriptRunner) Run(ctx context.Context, req CallRequest) (ToolResult, error) {
	bin, err := r.lookPath()
	if err != nil {
		return ToolResult{}, err
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "epiagent-call-*")
	if err != nil {
		return ToolResult{}, fmt.Errorf("cannot create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	driverPath := filepath.Join(dir, "driver.R")
	if err := os.WriteFile(driverPath, driverScript, 0o644); err != nil {
		return ToolResult{}, fmt.Errorf("cannot write driver: %w", err)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return ToolResult{}, fmt.Errorf("cannot encode request: %w", err)
	}
	reqPath := filepath.Join(dir, "request.json")
	if err := os.WriteFile(reqPath, body, 0o644); err != nil {
		return ToolResult{}, fmt.Errorf("cannot write request: %w", err)
	}
	respPath := filepath.Join(dir, "response.json")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--vanilla", driverPath, reqPath, respPath)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	started := time.Now()
	runErr := cmd.Run()
	logger.Debug("rscript finished",
		zap.String("target", req.Target()),
		zap.Duration("elapsed", time.Since(started)),
		zap.Error(runErr),
	)
	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ToolResult{}, fmt.Errorf("%s timed out after %s", req.Target(), timeout)
		}
		return ToolResult{}, fmt.Errorf("Rscript failed for %s: %w%s", req.Target(), runErr, stderrTail(stderr.String()))
	}

	raw, err := os.ReadFile(respPath)
	if err != nil {
		return ToolResult{}, fmt.Errorf("cannot read response for %s: %w%s", req.Target(), err, stderrTail(stderr.String()))
	}
	var result ToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ToolResult{}, fmt.Errorf("cannot decode response for %s: %w", req.Target(), err)
	}
	if result.Status == "" {
		return ToolResult{}, fmt.Errorf("response for %s has no status", req.Target())
	}
	return result, nil
}

func (r *RscriptRunner) lookPath() (string, error) {
	name := r.Path
	if name == "" {
		name = "Rscript"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRscriptMissing, name)
	}
	return bin, nil
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	const limit = 2000
	if len(s) > limit {
		s = "..." + s[len(s)-limit:]
	}
	return ": " + s
}
