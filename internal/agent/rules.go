package agent

import (
	"github.com/epiagent/epiagent-cli/internal/config"
	"github.com/epiagent/epiagent-cli/internal/match"
)

// Rule proposes Package::Function whenever any of Keywords occurs in a goal.
type Rule struct {
	Keywords    []string
	Package     string
	Function    string
	Description string
}

func (r Rule) matches(goal map[string]struct{}) bool {
	for _, kw := range r.Keywords {
		for _, tok := range match.Tokenize(kw) {
			if _, ok := goal[tok]; ok {
				return true
			}
		}
	}
	return false
}

// DefaultRules covers incidence, reproduction number, linelist cleaning and contact data.
func DefaultRules() []Rule {
	return []Rule{
		{
			Keywords:    []string{"incidence", "case", "count"},
			Package:     "incidence2",
			Function:    "incidence",
			Description: "Compute incidence curves from linelist data.",
		},
		{
			Keywords:    []string{"reproduction", "rt", "estimate"},
			Package:     "EpiEstim",
			Function:    "estimate_R",
			Description: "Estimate time-varying reproduction numbers.",
		},
		{
			Keywords:    []string{"clean", "linelist", "standardise"},
			Package:     "linelist",
			Function:    "clean_variable_names",
			Description: "Standardise column names in linelist style datasets.",
		},
		{
			Keywords:    []string{"contact", "network", "epicontacts"},
			Package:     "epicontacts",
			Function:    "make_epicontacts",
			Description: "Build an epicontacts object from contact tracing data.",
		},
	}
}

// RulesFromConfig converts configured rules, falling back to DefaultRules when none are set.
func RulesFromConfig(rules []config.PlanRule) []Rule {
	if len(rules) == 0 {
		return DefaultRules()
	}
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Package == "" || r.Function == "" || len(r.Keywords) == 0 {
			continue
		}
		out = append(out, Rule{
			Keywords:    append([]string(nil), r.Keywords...),
			Package:     r.Package,
			Function:    r.Function,
			Description: r.Description,
		})
	}
	return out
}
