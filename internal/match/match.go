// Package match ranks catalogue entries against a free-text request.
//
// Scoring is a fixed heuristic: every query keyword found in an entry's tags,
// name or summary earns that field's weight, and the per-keyword points are
// summed. It is deliberately not a search engine.
package match

import (
	"fmt"
	"strings"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
)

// Match scores entries against query and returns the ranked shortlist.
//
// Results are ordered by score (descending); ties keep the input order. Entries
// scoring zero are never returned. An empty catalogue or a query without any
// word tokens yields an empty, non-nil slice. A blank entry name, a negative
// limit or a negative weight fails with ErrInvalidInput.
func Match(query string, entries []catalogue.Entry, opts Options) ([]Result, error) {
	if opts.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative (got %d)", ErrInvalidInput, opts.Limit)
	}
	w := opts.Weights
	if w.isZero() {
		w = DefaultWeights()
	}
	if w.Tag < 0 || w.Name < 0 || w.Summary < 0 {
		return nil, fmt.Errorf("%w: weights must not be negative (%+v)", ErrInvalidInput, w)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidInput, i)
		}
	}

	out := []Result{}
	keywords := queryKeywords(query, opts.KeepStopWords)
	if len(keywords) == 0 || len(entries) == 0 {
		return out, nil
	}

	excluded := make(map[string]struct{}, len(opts.ExcludeCategories))
	for _, c := range opts.ExcludeCategories {
		excluded[c] = struct{}{}
	}

	for _, e := range entries {
		if opts.Category != "" && e.Category != opts.Category {
			continue
		}
		if _, skip := excluded[e.Category]; skip {
			continue
		}
		score, matched := scoreEntry(keywords, e, w)
		if score <= 0 {
			continue
		}
		if opts.MinScore > 0 && score < opts.MinScore {
			continue
		}
		out = append(out, Result{Entry: e, Score: score, Matched: matched})
	}

	SortResults(out)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func scoreEntry(keywords []string, e catalogue.Entry, w Weights) (float64, []string) {
	tags := tagSet(e.Tags)
	name := keywordSet(e.Name)
	summary := keywordSet(e.Summary)

	var score float64
	var matched []string
	for _, kw := range keywords {
		if _, ok := tags[kw]; ok {
			score += w.Tag
			matched = append(matched, "tag:"+kw)
		}
		if _, ok := name[kw]; ok {
			score += w.Name
			matched = append(matched, "name:"+kw)
		}
		if _, ok := summary[kw]; ok {
			score += w.Summary
			matched = append(matched, "summary:"+kw)
		}
	}
	return score, matched
}
