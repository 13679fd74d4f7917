package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const separator = "================================================"

func digest(name string, files []file) Result {
	tree := renderTree(name, files)

	var content strings.Builder
	for _, f := range files {
		content.WriteString(separator + "\n")
		content.WriteString("FILE: " + f.rel + "\n")
		content.WriteString(separator + "\n")
		content.WriteString(f.content)
		if !strings.HasSuffix(f.content, "\n") {
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	tokens := (len(tree) + content.Len()) / 4
	summary := fmt.Sprintf("Repository: %s\nFiles analyzed: %d\n\nEstimated tokens: %s",
		name, len(files), FormatTokens(tokens))
	return Result{
		Summary:         summary,
		Tree:            tree,
		Content:         content.String(),
		FilesAnalyzed:   len(files),
		EstimatedTokens: tokens,
	}
}

// FormatTokens renders n as 950, 1.2k or 3.4M.
func FormatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "k"
	default:
		return strconv.Itoa(n)
	}
}

// ParseSummary reads the file and token counts back out of a summary block.
// Unparseable values are reported as zero.
func ParseSummary(summary string) (files, tokens int) {
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Files analyzed:"):
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Files analyzed:"))); err == nil {
				files = n
			}
		case strings.HasPrefix(line, "Estimated tokens:"):
			tokens = parseTokens(strings.TrimSpace(strings.TrimPrefix(line, "Estimated tokens:")))
		}
	}
	return files, tokens
}

func parseTokens(val string) int {
	mult := 1.0
	switch {
	case strings.HasSuffix(val, "M"):
		mult, val = 1_000_000, strings.TrimSuffix(val, "M")
	case strings.HasSuffix(val, "k"):
		mult, val = 1_000, strings.TrimSuffix(val, "k")
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return int(f * mult)
}

type node struct {
	name     string
	children map[string]*node
	isDir    bool
}

func renderTree(rootName string, files []file) string {
	root := &node{name: rootName, isDir: true, children: map[string]*node{}}
	for _, f := range files {
		cur := root
		parts := strings.Split(f.rel, "/")
		for i, p := range parts {
			child, ok := cur.children[p]
			if !ok {
				child = &node{name: p, isDir: i < len(parts)-1, children: map[string]*node{}}
				cur.children[p] = child
			}
			cur = child
		}
	}

	var b strings.Builder
	b.WriteString("Directory structure:\n")
	b.WriteString("└── " + rootName + "/\n")
	writeChildren(&b, root, "    ")
	return b.String()
}

func writeChildren(b *strings.Builder, n *node, prefix string) {
	kids := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		kids = append(kids, c)
	}
	// Files first, then directories, each alphabetical.
	sort.Slice(kids, func(i, j int) bool {
		if kids[i].isDir != kids[j].isDir {
			return !kids[i].isDir
		}
		return kids[i].name < kids[j].name
	})
	for i, c := range kids {
		last := i == len(kids)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		label := c.name
		if c.isDir {
			label += "/"
		}
		b.WriteString(prefix + branch + label + "\n")
		if c.isDir {
			writeChildren(b, c, prefix+next)
		}
	}
}
