package docs

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// header is the optional YAML block at the top of a document.
type header struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// parseDocument splits "---\n<yaml>\n---\n<body>". Malformed or missing
// frontmatter yields an empty header and the content unchanged.
func parseDocument(content string) (header, string) {
	s := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(s, "---") {
		return header{}, content
	}
	rest := strings.TrimPrefix(s, "---")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return header{}, content
	}

	var h header
	if err := yaml.Unmarshal([]byte(rest[:end]), &h); err != nil {
		return header{}, content
	}
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(strings.TrimPrefix(body, "\r"), "\n")
	h.Name = strings.TrimSpace(h.Name)
	h.Title = strings.TrimSpace(h.Title)
	h.Description = strings.TrimSpace(h.Description)
	return h, body
}

// firstParagraphLine returns the first non-empty line that is not a heading.
func firstParagraphLine(body string) string {
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		return ln
	}
	return ""
}

// firstHeading returns the text of the first markdown heading, if any.
func firstHeading(body string) string {
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "#") {
			return strings.TrimSpace(strings.TrimLeft(ln, "#"))
		}
	}
	return ""
}
