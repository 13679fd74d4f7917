package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
)

// IsRemote reports whether source names a git remote rather than a local path.
func IsRemote(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	for _, prefix := range []string{"http://", "https://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	if strings.HasPrefix(s, "github.com/") || strings.HasPrefix(s, "gitlab.com/") {
		return true
	}
	return false
}

// cloneURL normalises bare host paths and injects token into https URLs.
func cloneURL(source, token string) string {
	raw := source
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "github.com/") || strings.HasPrefix(lower, "gitlab.com/") {
		raw = "https://" + raw
	}
	if token == "" || !strings.HasPrefix(strings.ToLower(raw), "https://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = url.UserPassword("x-access-token", token)
	return u.String()
}

// clone runs a shallow git clone of source into dst.
func clone(ctx context.Context, source, branch, token, dst string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found in PATH: %w", err)
	}
	args := []string{"clone", "--depth", "1", "--single-branch"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, cloneURL(source, token), dst)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if token != "" {
			msg = strings.ReplaceAll(msg, token, "***")
		}
		if msg != "" {
			return fmt.Errorf("cannot clone %s: %w: %s", source, err, msg)
		}
		return fmt.Errorf("cannot clone %s: %w", source, err)
	}
	return nil
}
