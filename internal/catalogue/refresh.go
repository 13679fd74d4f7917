package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultOrganizations are the GitHub organisations scanned by a refresh.
var DefaultOrganizations = []string{"epiverse-trace", "epiforecasts", "reconverse"}

// Refresher rebuilds a catalogue from GitHub organisation repository listings.
type Refresher struct {
	Client  *http.Client
	BaseURL string // defaults to https://api.github.com
	Token   string
	Orgs    []string
	PerPage int
}

// githubRepo models the subset of the GitHub repository payload used by a refresh.
type githubRepo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Topics      []string `json:"topics"`
	Archived    bool     `json:"archived"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Refresh lists every non-archived repository of the configured organisations,
// one concurrent request chain per organisation, merges the metadata into cat
// and replaces its entries. When cat has a source file the result is saved
// there first. A failed listing or save leaves cat untouched. The refreshed entries are returned
// sorted by name.
func (r *Refresher) Refresh(ctx context.Context, cat *Catalogue) ([]Entry, error) {
	orgs := r.Orgs
	if len(orgs) == 0 {
		orgs = DefaultOrganizations
	}

	listings := make([][]githubRepo, len(orgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, org := range orgs {
		g.Go(func() error {
			items, err := r.listOrg(gctx, org)
			if err != nil {
				return err
			}
			listings[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var repos []githubRepo
	for _, items := range listings {
		repos = append(repos, items...)
	}

	existing := make(map[string]Entry)
	for _, e := range cat.Entries() {
		existing[e.Name] = e
	}

	refreshed := make([]Entry, 0, len(repos))
	for _, repo := range repos {
		if repo.Archived || repo.Name == "" {
			continue
		}
		e, ok := existing[repo.Name]
		if !ok {
			e = Entry{Name: repo.Name, Category: CategoryUnknown}
		}
		if e.Organization == "" {
			e.Organization = repo.Owner.Login
		}
		e.Merge(repo.Description, repo.Topics, repo.HTMLURL)
		refreshed = append(refreshed, e)
	}

	// Write the new set before swapping it in so a failed save leaves cat as it was.
	staged := New(refreshed)
	if src := cat.Source(); src != "" {
		if err := staged.Save(src); err != nil {
			return nil, err
		}
	}
	cat.Replace(staged.Entries())
	return cat.Entries(), nil
}

func (r *Refresher) listOrg(ctx context.Context, org string) ([]githubRepo, error) {
	base := strings.TrimRight(r.BaseURL, "/")
	if base == "" {
		base = "https://api.github.com"
	}
	perPage := r.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	var out []githubRepo
	next := fmt.Sprintf("%s/orgs/%s/repos?per_page=%d", base, org, perPage)
	for next != "" {
		items, nextURL, err := r.fetchPage(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("cannot list repositories for %s: %w", org, err)
		}
		out = append(out, items...)
		next = nextURL
	}
	return out, nil
}

func (r *Refresher) fetchPage(ctx context.Context, url string) ([]githubRepo, string, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "epiagent-registry")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("github api request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, "", fmt.Errorf("github api request failed: %s\n%s", resp.Status, strings.TrimSpace(string(body)))
	}

	var items []githubRepo
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, "", fmt.Errorf("cannot decode repository listing: %w", err)
	}
	return items, nextLink(resp.Header.Get("Link")), nil
}

// nextLink extracts the rel="next" target from an RFC 8288 Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end <= start {
			return ""
		}
		return part[start+1 : end]
	}
	return ""
}
