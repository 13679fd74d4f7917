package catalogue

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresh_PaginatesAndMerges(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/orgs/epi/repos?per_page=2&page=2>; rel="next", <%s/orgs/epi/repos?per_page=2&page=2>; rel="last"`, srv.URL, srv.URL))
			fmt.Fprint(w, `[
				{"name": "cfr", "description": "new summary", "html_url": "https://github.com/epi/cfr", "topics": ["severity"], "owner": {"login": "epi"}},
				{"name": "old", "archived": true, "owner": {"login": "epi"}}
			]`)
		case "2":
			fmt.Fprint(w, `[{"name": "finalsize", "description": "Final size", "topics": ["sir"], "owner": {"login": "epi"}}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "packages.json")
	cat := New([]Entry{
		{Name: "cfr", Summary: "existing", Category: CategoryRPackage, Tags: []string{"case-fatality-rate"}},
		{Name: "gone", Category: CategoryRPackage},
	})
	cat.SetSource(path)

	r := &Refresher{Client: srv.Client(), BaseURL: srv.URL, Token: "tok", Orgs: []string{"epi"}, PerPage: 2}
	got, err := r.Refresh(context.Background(), cat)
	require.NoError(t, err)

	require.Equal(t, []string{"cfr", "finalsize"}, names(got))
	assert.Equal(t, "existing", got[0].Summary)
	assert.Equal(t, CategoryRPackage, got[0].Category)
	assert.Equal(t, []string{"case-fatality-rate", "severity"}, got[0].Tags)
	assert.Equal(t, "https://github.com/epi/cfr", got[0].Homepage)
	assert.Equal(t, "epi", got[1].Organization)
	assert.Equal(t, CategoryUnknown, got[1].Category)

	saved, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Len())
}

func TestRefresh_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	cat := New([]Entry{{Name: "cfr"}})
	r := &Refresher{Client: srv.Client(), BaseURL: srv.URL, Orgs: []string{"epi"}}
	_, err := r.Refresh(context.Background(), cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, 1, cat.Len(), "catalogue must be untouched on failure")
}

func TestRefresh_MultipleOrganisations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orgs/epiverse-trace/repos":
			fmt.Fprint(w, `[{"name": "cfr", "owner": {"login": "epiverse-trace"}}]`)
		case "/orgs/reconverse/repos":
			fmt.Fprint(w, `[{"name": "incidence2", "owner": {"login": "reconverse"}}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cat := New(nil)
	r := &Refresher{Client: srv.Client(), BaseURL: srv.URL, Orgs: []string{"reconverse", "epiverse-trace"}}
	got, err := r.Refresh(context.Background(), cat)
	require.NoError(t, err)
	assert.Equal(t, []string{"cfr", "incidence2"}, names(got))
	assert.Equal(t, "reconverse", got[1].Organization)
}

func TestRefresh_OneOrganisationFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orgs/missing/repos" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `[{"name": "cfr", "owner": {"login": "epi"}}]`)
	}))
	defer srv.Close()

	cat := New([]Entry{{Name: "linelist"}})
	r := &Refresher{Client: srv.Client(), BaseURL: srv.URL, Orgs: []string{"epi", "missing"}}
	_, err := r.Refresh(context.Background(), cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, []string{"linelist"}, names(cat.Entries()))
}

func TestRefresh_SaveFailureKeepsCatalogue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "cfr", "owner": {"login": "epi"}}]`)
	}))
	defer srv.Close()

	// The source's parent is a regular file, so the directory cannot be created.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cat := New([]Entry{{Name: "linelist"}})
	cat.SetSource(filepath.Join(blocker, "packages.json"))
	r := &Refresher{Client: srv.Client(), BaseURL: srv.URL, Orgs: []string{"epi"}}
	_, err := r.Refresh(context.Background(), cat)
	require.Error(t, err)
	assert.Equal(t, []string{"linelist"}, names(cat.Entries()))
}

func TestNextLink(t *testing.T) {
	assert.Equal(t, "https://x/2", nextLink(`<https://x/2>; rel="next", <https://x/9>; rel="last"`))
	assert.Equal(t, "", nextLink(`<https://x/1>; rel="prev"`))
	assert.Equal(t, "", nextLink(""))
}
