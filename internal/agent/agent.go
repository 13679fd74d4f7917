// Package agent turns a free-text analysis goal into a package shortlist and
// a sequence of R calls, optionally running them through the bridge.
package agent

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/epiagent/epiagent-cli/internal/bridge"
	"github.com/epiagent/epiagent-cli/internal/catalogue"
	"github.com/epiagent/epiagent-cli/internal/match"
)

// DefaultShortlistSize is used when Shortlist is called with k <= 0.
const DefaultShortlistSize = 5

// ErrNoCaller is returned by Execute when the agent has no bridge configured.
var ErrNoCaller = errors.New("R bridge is unavailable; install R and Rscript before executing plans")

// Caller performs a single bridged call. *bridge.Invoker satisfies it.
type Caller interface {
	Call(ctx context.Context, req bridge.CallRequest) bridge.ToolResult
}

// Agent ties the catalogue, plan rules and bridge together.
type Agent struct {
	Catalogue *catalogue.Catalogue
	Rules     []Rule
	Caller    Caller
	Options   match.Options
	Logger    *zap.Logger
}

// PlannedCall is one suggested R invocation.
type PlannedCall struct {
	Package     string                  `json:"package"`
	Function    string                  `json:"function"`
	Description string                  `json:"description"`
	Args        []bridge.Value          `json:"args,omitempty"`
	Kwargs      map[string]bridge.Value `json:"kwargs,omitempty"`
}

// StepResult records the outcome of executing one PlannedCall.
type StepResult struct {
	Package     string        `json:"package"`
	Function    string        `json:"function"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Message     string        `json:"message,omitempty"`
	Data        *bridge.Value `json:"data,omitempty"`
}

// Report is the combined output of Run.
type Report struct {
	Goal      string         `json:"goal"`
	Shortlist []match.Result `json:"-"`
	Plan      []PlannedCall  `json:"plan"`
	Execution []StepResult   `json:"execution"`
}

// Payload renders the report with shortlist entries in their tool-response form.
func (r Report) Payload() map[string]any {
	shortlist := make([]map[string]any, 0, len(r.Shortlist))
	for _, res := range r.Shortlist {
		shortlist = append(shortlist, res.Payload())
	}
	plan := r.Plan
	if plan == nil {
		plan = []PlannedCall{}
	}
	execution := r.Execution
	if execution == nil {
		execution = []StepResult{}
	}
	return map[string]any{
		"goal":      r.Goal,
		"shortlist": shortlist,
		"plan":      plan,
		"execution": execution,
	}
}

// Shortlist ranks catalogue entries against goal and keeps the top k.
func (a *Agent) Shortlist(goal string, k int) ([]match.Result, error) {
	if k <= 0 {
		k = DefaultShortlistSize
	}
	opts := a.Options
	opts.Limit = k
	var entries []catalogue.Entry
	if a.Catalogue != nil {
		entries = a.Catalogue.Entries()
	}
	return match.Match(goal, entries, opts)
}

// Plan returns one call per rule whose keywords appear in goal, in rule order.
func (a *Agent) Plan(goal string) []PlannedCall {
	tokens := make(map[string]struct{})
	for _, tok := range match.Tokenize(goal) {
		tokens[tok] = struct{}{}
	}
	plan := []PlannedCall{}
	for _, rule := range a.Rules {
		if rule.matches(tokens) {
			plan = append(plan, PlannedCall{
				Package:     rule.Package,
				Function:    rule.Function,
				Description: rule.Description,
			})
		}
	}
	return plan
}

// Execute runs each planned call in order. A failing step does not stop later steps.
func (a *Agent) Execute(ctx context.Context, plan []PlannedCall) ([]StepResult, error) {
	if len(plan) == 0 {
		return []StepResult{}, nil
	}
	if a.Caller == nil {
		return nil, ErrNoCaller
	}
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]StepResult, 0, len(plan))
	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := a.Caller.Call(ctx, bridge.CallRequest{
			Package:  step.Package,
			Function: step.Function,
			Args:     step.Args,
			Kwargs:   step.Kwargs,
		})
		logger.Info("plan step finished",
			zap.String("package", step.Package),
			zap.String("function", step.Function),
			zap.String("status", res.Status),
		)
		results = append(results, StepResult{
			Package:     step.Package,
			Function:    step.Function,
			Description: step.Description,
			Status:      res.Status,
			Message:     res.Message,
			Data:        res.Data,
		})
	}
	return results, nil
}

// Run shortlists, plans and, when execute is set and the plan is non-empty, executes.
func (a *Agent) Run(ctx context.Context, goal string, k int, execute bool) (Report, error) {
	shortlist, err := a.Shortlist(goal, k)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Goal:      goal,
		Shortlist: shortlist,
		Plan:      a.Plan(goal),
		Execution: []StepResult{},
	}
	if !execute || len(report.Plan) == 0 {
		return report, nil
	}
	report.Execution, err = a.Execute(ctx, report.Plan)
	if err != nil {
		return report, err
	}
	return report, nil
}
