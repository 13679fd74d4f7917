// Package ingest builds a plain-text digest of a repository (summary, directory
// tree and file contents) sized for a language-model context window.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize skips files larger than 10 MiB.
const DefaultMaxFileSize int64 = 10 << 20

// ErrNoSource is returned when Options.Source is empty.
var ErrNoSource = errors.New("repository source is required")

// Options configures one ingest run.
type Options struct {
	// Source is a local directory or a git URL.
	Source      string
	Branch      string
	Token       string
	Include     []string
	Exclude     []string
	MaxFileSize int64
	// OutputPath, when set, receives the full digest text.
	OutputPath string
}

// Result is the digest of one repository.
type Result struct {
	Summary         string `json:"summary"`
	Tree            string `json:"tree"`
	Content         string `json:"content"`
	RepositoryURL   string `json:"repository_url"`
	FilesAnalyzed   int    `json:"files_analyzed"`
	EstimatedTokens int    `json:"estimated_tokens"`
	OutputPath      string `json:"-"`
}

// FullContext joins summary, tree and content the way it is written to OutputPath.
func (r Result) FullContext() string {
	return r.Summary + "\n\n" + r.Tree + "\n\n" + r.Content
}

// Payload returns the result as a plain map for JSON responses.
func (r Result) Payload() map[string]any {
	return map[string]any{
		"summary":          r.Summary,
		"tree":             r.Tree,
		"content":          r.Content,
		"repository_url":   r.RepositoryURL,
		"files_analyzed":   r.FilesAnalyzed,
		"estimated_tokens": r.EstimatedTokens,
	}
}

// Ingest clones (when Source is a URL) and digests a repository.
func Ingest(ctx context.Context, opts Options) (Result, error) {
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		return Result{}, ErrNoSource
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}

	root := source
	if IsRemote(source) {
		tmp, err := os.MkdirTemp("", "epiagent-ingest-*")
		if err != nil {
			return Result{}, fmt.Errorf("cannot create clone dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		root = filepath.Join(tmp, repoSlug(source))
		if err := clone(ctx, source, opts.Branch, opts.Token, root); err != nil {
			return Result{}, err
		}
	} else {
		info, err := os.Stat(source)
		if err != nil {
			return Result{}, fmt.Errorf("cannot read source %s: %w", source, err)
		}
		if !info.IsDir() {
			return Result{}, fmt.Errorf("source is not a directory: %s", source)
		}
	}

	files, err := collect(ctx, root, filter{
		include: opts.Include,
		exclude: opts.Exclude,
		maxSize: opts.MaxFileSize,
	})
	if err != nil {
		return Result{}, err
	}

	res := digest(displayName(source), files)
	res.RepositoryURL = source
	if opts.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
			return Result{}, fmt.Errorf("cannot create output dir: %w", err)
		}
		if err := os.WriteFile(opts.OutputPath, []byte(res.FullContext()), 0o644); err != nil {
			return Result{}, fmt.Errorf("cannot write digest to %s: %w", opts.OutputPath, err)
		}
		res.OutputPath = opts.OutputPath
	}
	return res, nil
}

func displayName(source string) string {
	if IsRemote(source) {
		s := strings.TrimSuffix(strings.TrimRight(source, "/"), ".git")
		if i := strings.LastIndexAny(s, ":/"); i >= 0 {
			head := s[:i]
			if j := strings.LastIndexAny(head, ":/"); j >= 0 {
				return s[j+1:]
			}
			return s[i+1:]
		}
		return s
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return filepath.Base(source)
	}
	return filepath.Base(abs)
}

func repoSlug(source string) string {
	name := strings.TrimSuffix(strings.TrimRight(source, "/"), ".git")
	if i := strings.LastIndexAny(name, ":/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "repo"
	}
	return name
}
