package catalogue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Well-known categories. The set is small but not enforced; unknown strings are kept as-is.
const (
	CategoryRPackage       = "r_package"
	CategoryTraining       = "training"
	CategoryApplication    = "application"
	CategoryInfrastructure = "infrastructure"
	CategoryDocumentation  = "documentation"
	CategoryRepository     = "repository"
	CategoryUnknown        = "unknown"
)

// Entry is one described package in the catalogue.
type Entry struct {
	Name         string
	Organization string
	Summary      string
	Category     string
	Homepage     string
	Tags         []string
}

// entryJSON is the on-disk shape of an entry. "topics" is canonical; "tags" is accepted on read.
type entryJSON struct {
	Name         string   `json:"name"`
	Organization string   `json:"organization,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Category     string   `json:"category"`
	Homepage     string   `json:"homepage,omitempty"`
	Topics       []string `json:"topics,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// MarshalJSON writes the entry with sorted, de-duplicated topics.
func (e Entry) MarshalJSON() ([]byte, error) {
	cat := e.Category
	if cat == "" {
		cat = CategoryUnknown
	}
	return json.Marshal(entryJSON{
		Name:         e.Name,
		Organization: e.Organization,
		Summary:      e.Summary,
		Category:     cat,
		Homepage:     e.Homepage,
		Topics:       uniqueSorted(e.Tags),
	})
}

// UnmarshalJSON accepts either a bare string (the package name) or an object.
func (e *Entry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("%w: empty catalogue entry", ErrInvalidInput)
	}
	switch b[0] {
	case '"':
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: catalogue entry has an empty name", ErrInvalidInput)
		}
		*e = Entry{Name: strings.TrimSpace(name), Category: CategoryUnknown}
		return nil
	case '{':
		var raw entryJSON
		if err := json.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return fmt.Errorf("%w: catalogue entry has no name", ErrInvalidInput)
		}
		cat := strings.TrimSpace(raw.Category)
		if cat == "" {
			cat = CategoryUnknown
		}
		tags := raw.Topics
		if len(tags) == 0 {
			tags = raw.Tags
		}
		*e = Entry{
			Name:         name,
			Organization: raw.Organization,
			Summary:      strings.TrimSpace(raw.Summary),
			Category:     cat,
			Homepage:     raw.Homepage,
			Tags:         append([]string(nil), tags...),
		}
		return nil
	default:
		return fmt.Errorf("%w: catalogue entry must be a string or an object, got %s", ErrInvalidInput, truncate(string(b), 40))
	}
}

// Merge fills in summary and homepage when they are missing and unions topics.
func (e *Entry) Merge(summary string, topics []string, homepage string) {
	if s := strings.TrimSpace(summary); s != "" && e.Summary == "" {
		e.Summary = s
	}
	if len(topics) > 0 {
		e.Tags = uniqueSorted(append(append([]string(nil), e.Tags...), topics...))
	}
	if homepage != "" && e.Homepage == "" {
		e.Homepage = homepage
	}
}

// Describe returns the map form used in tool payloads.
func (e Entry) Describe() map[string]any {
	out := map[string]any{
		"name":     e.Name,
		"category": e.Category,
	}
	if e.Category == "" {
		out["category"] = CategoryUnknown
	}
	if e.Organization != "" {
		out["organization"] = e.Organization
	}
	if e.Summary != "" {
		out["summary"] = e.Summary
	}
	if e.Homepage != "" {
		out["homepage"] = e.Homepage
	}
	if tags := uniqueSorted(e.Tags); len(tags) > 0 {
		out["topics"] = tags
	}
	return out
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
