package gitlabx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer routes on the escaped request path so "grp%2Fapp" stays intact.
type fakeServer struct {
	t        *testing.T
	mu       sync.Mutex
	requests []*http.Request
	routes   map[string]http.HandlerFunc
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{t: t, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (f *fakeServer) handle(method, path string, h http.HandlerFunc) {
	f.routes[method+" "+path] = h
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	h, ok := f.routes[r.Method+" "+r.URL.EscapedPath()]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "404 Not Found"})
		return
	}
	h(w, r)
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeServer) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, srv *httptest.Server, jobToken bool) *Client {
	t.Helper()
	c, err := NewClient(Options{
		BaseURL:  srv.URL,
		Token:    "secret",
		JobToken: jobToken,
		Scope:    Scope{Namespace: "mycompany", GroupPath: "mycompany/devops"},
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_EmptyToken(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "https://gitlab.example.com"})
	require.Error(t, err)
}

func TestClient_Authenticate(t *testing.T) {
	fs, srv := newFakeServer(t)

	t.Run("accepted", func(t *testing.T) {
		fs.handle("GET", "/api/v4/user", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret", r.Header.Get("PRIVATE-TOKEN"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "username": "ops"})
		})
		require.NoError(t, newTestClient(t, srv, false).Authenticate(context.Background()))
	})

	t.Run("rejected", func(t *testing.T) {
		fs.handle("GET", "/api/v4/user", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "401 Unauthorized"})
		})
		err := newTestClient(t, srv, false).Authenticate(context.Background())
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("job token skips check", func(t *testing.T) {
		before := fs.count()
		require.NoError(t, newTestClient(t, srv, true).Authenticate(context.Background()))
		assert.Equal(t, before, fs.count())
	})
}

func TestClient_ResolveProject(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.handle("GET", "/api/v4/projects/mycompany%2Fdevops%2Fapps", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":                  11110000,
			"path_with_namespace": "mycompany/devops/apps",
			"web_url":             "https://gitlab.example.com/mycompany/devops/apps",
		})
	})
	fs.handle("GET", "/api/v4/projects/22223333", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":                  22223333,
			"path_with_namespace": "mycompany/infra/aws-terraform",
		})
	})
	c := newTestClient(t, srv, false)
	ctx := context.Background()

	p, err := c.ResolveProject(ctx, "apps")
	require.NoError(t, err)
	assert.Equal(t, 11110000, p.ID)
	assert.Equal(t, "mycompany/devops/apps", p.PathWithNamespace)

	p, err = c.ResolveProject(ctx, "22223333")
	require.NoError(t, err)
	assert.Equal(t, "mycompany/infra/aws-terraform", p.PathWithNamespace)

	_, err = c.ResolveProject(ctx, "missing")
	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Contains(t, err.Error(), "mycompany/devops/missing")
}

func TestClient_ResolveGroup(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.handle("GET", "/api/v4/groups/mycompany%2Fdevops", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 11112222, "full_path": "mycompany/devops"})
	})
	c := newTestClient(t, srv, false)

	g, err := c.ResolveGroup(context.Background(), "devops")
	require.NoError(t, err)
	assert.Equal(t, 11112222, g.ID)

	_, err = c.ResolveGroup(context.Background(), "nope")
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestClient_ListBranches_Paginates(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.handle("GET", "/api/v4/projects/grp%2Fapp/repository/branches", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("X-Next-Page", "2")
			writeJSON(w, http.StatusOK, []map[string]interface{}{
				{"name": "main", "protected": true},
				{"name": "feature/x", "commit": map[string]interface{}{
					"id": "abc", "title": "wip", "committed_date": "2023-01-01T00:00:00.000+00:00",
				}},
			})
		case "2":
			writeJSON(w, http.StatusOK, []map[string]interface{}{{"name": "feature/y"}})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	c := newTestClient(t, srv, false)

	branches, err := c.ListBranches(context.Background(), "grp/app")
	require.NoError(t, err)
	require.Len(t, branches, 3)
	assert.True(t, branches[0].Protected)
	assert.Equal(t, "feature/x", branches[1].Name)
	require.NotNil(t, branches[1].Commit)
	assert.True(t, branches[1].Commit.CommittedAt.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, branches[2].Commit)
}

func TestClient_ListProtectedBranches(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.handle("GET", "/api/v4/projects/7/protected_branches", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{{"name": "release/*"}, {"name": "develop"}})
	})
	c := newTestClient(t, srv, false)

	names, err := c.ListProtectedBranches(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"release/*", "develop"}, names)
}

func TestClient_LatestCommit_RequestsSingleCommit(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.handle("GET", "/api/v4/projects/grp%2Fapp/repository/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ref_name") == "empty" {
			writeJSON(w, http.StatusOK, []interface{}{})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]interface{}{{
			"id": "abc", "title": "latest", "web_url": "https://example/c/abc",
			"committed_date": "2023-03-04T05:06:07.000+02:00",
		}})
	})
	c := newTestClient(t, srv, false)

	commit, err := c.LatestCommit(context.Background(), "grp/app", "feature/x")
	require.NoError(t, err)
	assert.Equal(t, "latest", commit.Title)
	assert.True(t, commit.CommittedAt.Equal(time.Date(2023, 3, 4, 3, 6, 7, 0, time.UTC)))

	q := fs.last().URL.Query()
	assert.Equal(t, "1", q.Get("per_page"))
	assert.Equal(t, "feature/x", q.Get("ref_name"))

	_, err = c.LatestCommit(context.Background(), "grp/app", "empty")
	require.ErrorIs(t, err, ErrNoCommits)
}

func TestClient_GetAndDeleteBranch(t *testing.T) {
	fs, srv := newFakeServer(t)
	var deleted atomic.Bool
	fs.handle("GET", "/api/v4/projects/grp%2Fapp/repository/branches/feature%2Fx", func(w http.ResponseWriter, r *http.Request) {
		if deleted.Load() {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "404 Branch Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":   "feature/x",
			"commit": map[string]interface{}{"id": "abc", "title": "wip", "committed_date": "2023-01-01T00:00:00Z"},
		})
	})
	fs.handle("DELETE", "/api/v4/projects/grp%2Fapp/repository/branches/feature%2Fx", func(w http.ResponseWriter, r *http.Request) {
		deleted.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, srv, false)
	ctx := context.Background()

	b, err := c.GetBranch(ctx, "grp/app", "feature/x")
	require.NoError(t, err)
	assert.Equal(t, "wip", b.Commit.Title)

	require.NoError(t, c.DeleteBranch(ctx, "grp/app", "feature/x"))

	_, err = c.GetBranch(ctx, "grp/app", "feature/x")
	require.ErrorIs(t, err, ErrBranchNotFound)

	err = c.DeleteBranch(ctx, "grp/app", "missing")
	require.ErrorIs(t, err, ErrBranchNotFound)
}

func TestClient_ListGroupProjects(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.handle("GET", "/api/v4/groups/5/projects", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("include_subgroups"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 1, "path_with_namespace": "grp/a"},
			{"id": 2, "path_with_namespace": "grp/sub/b"},
		})
	})
	c := newTestClient(t, srv, false)

	projects, err := c.ListGroupProjects(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "grp/sub/b", projects[1].PathWithNamespace)
}

func TestClient_RateLimiterHonorsContext(t *testing.T) {
	_, srv := newFakeServer(t)
	c, err := NewClient(Options{BaseURL: srv.URL, Token: "secret", RequestsPerSecond: 0.001})
	require.NoError(t, err)

	// The first token is available immediately; the second is not.
	_ = c.wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.GetBranch(ctx, "1", "x")
	require.Error(t, err)
}
