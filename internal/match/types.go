package match

import "github.com/epiagent/epiagent-cli/internal/catalogue"

// Weights are the points awarded when a query keyword appears in a field.
type Weights struct {
	Tag     float64 `yaml:"tag" json:"tag"`
	Name    float64 `yaml:"name" json:"name"`
	Summary float64 `yaml:"summary" json:"summary"`
}

// DefaultWeights biases toward curated metadata (tags, name) over free text.
func DefaultWeights() Weights {
	return Weights{Tag: 3, Name: 2, Summary: 1}
}

func (w Weights) isZero() bool {
	return w.Tag == 0 && w.Name == 0 && w.Summary == 0
}

// Options tunes a Match call. The zero value returns every entry with a positive
// score using DefaultWeights.
type Options struct {
	// Limit truncates the ranked output; 0 means no limit.
	Limit int
	// MinScore drops results scoring below it when > 0.
	MinScore float64
	// Category keeps only entries of this category when non-empty.
	Category string
	// ExcludeCategories drops entries of these categories.
	ExcludeCategories []string
	// Weights overrides DefaultWeights when non-zero.
	Weights Weights
	// KeepStopWords disables stop-word stripping for the query.
	KeepStopWords bool
}

// Result is one ranked catalogue entry.
type Result struct {
	Entry   catalogue.Entry
	Score   float64
	Matched []string
}

// Payload returns the map form used in tool responses.
func (r Result) Payload() map[string]any {
	out := r.Entry.Describe()
	out["score"] = r.Score
	out["matched_keywords"] = append([]string{}, r.Matched...)
	return out
}
