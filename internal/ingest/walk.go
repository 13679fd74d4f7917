package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sniffLen is how much of a file is checked for NUL bytes.
const sniffLen = 8 << 10

type filter struct {
	include []string
	exclude []string
	maxSize int64
}

type file struct {
	rel     string // slash-separated, relative to the root
	content string
}

func collect(ctx context.Context, root string, f filter) ([]file, error) {
	var out []file
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || matchesAny(rel, f.exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchesAny(rel, f.exclude) {
			return nil
		}
		if len(f.include) > 0 && !matchesAny(rel, f.include) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > f.maxSize {
			return nil
		}
		content, binary, err := readText(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", rel, err)
		}
		if binary {
			return nil
		}
		out = append(out, file{rel: rel, content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rel < out[j].rel })
	return out, nil
}

// matchesAny reports whether rel matches any glob, tried against the full
// relative path, the basename and each leading directory prefix.
func matchesAny(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	name := filepath.Base(rel)
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(pattern)), "/")
		if pattern == "" {
			continue
		}
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		parts := strings.Split(rel, "/")
		for i := 1; i < len(parts); i++ {
			if ok, _ := filepath.Match(pattern, strings.Join(parts[:i], "/")); ok {
				return true
			}
		}
	}
	return false
}

func readText(path string) (string, bool, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer fh.Close()

	b, err := io.ReadAll(fh)
	if err != nil {
		return "", false, err
	}
	head := b
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return "", true, nil
	}
	return string(b), false, nil
}
