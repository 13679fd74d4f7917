package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
)

// UnknownPackageNote is attached to successful calls into packages the catalogue does not list.
const UnknownPackageNote = "Executed function successfully but the package was not present in the local registry. " +
	"Consider refreshing the package list."

// Invoker validates call requests and runs them through a Runner.
type Invoker struct {
	Runner    Runner
	Catalogue *catalogue.Catalogue
	Logger    *zap.Logger
}

// Call never returns a Go error: failures are reported as status=error results.
func (i *Invoker) Call(ctx context.Context, req CallRequest) ToolResult {
	logger := i.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return errorResult(err.Error())
	}
	if i.Runner == nil {
		return errorResult("no R runner configured")
	}

	logger.Info("calling R function", zap.String("target", req.Target()))
	result, err := i.Runner.Run(ctx, req)
	if err != nil {
		logger.Warn("R call failed", zap.String("target", req.Target()), zap.Error(err))
		return errorResult(err.Error())
	}
	if !result.OK() {
		if result.Message == "" {
			result.Message = fmt.Sprintf("%s returned status %q", req.Target(), result.Status)
		}
		return result
	}
	if i.Catalogue != nil && !i.Catalogue.Has(req.Package) && result.Message == "" {
		result.Message = UnknownPackageNote
	}
	return result
}
