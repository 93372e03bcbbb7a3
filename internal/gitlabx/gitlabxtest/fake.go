// Package gitlabxtest provides an in-memory gitlabx.API for tests.
package gitlabxtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danieljhkim/opskit/internal/gitlabx"
)

// FakeProject is one project held by Fake.
type FakeProject struct {
	ID        int
	Path      string
	GroupID   int
	Branches  map[string]*gitlabx.Branch
	Protected []string
}

// Fake implements gitlabx.API over in-memory projects. Failure hooks let tests
// inject errors per project or per branch.
type Fake struct {
	mu sync.Mutex

	Scope    gitlabx.Scope
	projects map[string]*FakeProject
	groups   map[string]*gitlabx.Group

	// ListErr fails ListBranches for the named project path.
	ListErr map[string]error

	// DeleteErr fails DeleteBranch for "project\x00branch".
	DeleteErr map[string]error

	// KeepOnDelete makes DeleteBranch report success without removing the branch.
	KeepOnDelete map[string]bool

	// AuthErr is returned by Authenticate.
	AuthErr error

	// Calls records every method invocation as "Method project branch".
	Calls []string
}

var _ gitlabx.API = (*Fake)(nil)

// NewFake creates an empty Fake using scope for name expansion.
func NewFake(scope gitlabx.Scope) *Fake {
	return &Fake{
		Scope:        scope,
		projects:     map[string]*FakeProject{},
		groups:       map[string]*gitlabx.Group{},
		ListErr:      map[string]error{},
		DeleteErr:    map[string]error{},
		KeepOnDelete: map[string]bool{},
	}
}

// Key joins a project and branch for the DeleteErr and KeepOnDelete maps.
func Key(project, branch string) string {
	return project + "\x00" + branch
}

// AddProject registers a project by full path.
func (f *Fake) AddProject(id int, path string) *FakeProject {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := &FakeProject{ID: id, Path: path, Branches: map[string]*gitlabx.Branch{}}
	f.projects[path] = p
	return p
}

// AddGroup registers a group; projects join it via FakeProject.GroupID.
func (f *Fake) AddGroup(id int, fullPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[fullPath] = &gitlabx.Group{ID: id, FullPath: fullPath}
}

// AddBranch adds a branch whose head commit was made at committed.
func (p *FakeProject) AddBranch(name string, committed time.Time) *gitlabx.Branch {
	b := &gitlabx.Branch{
		Name: name,
		Commit: &gitlabx.Commit{
			ID:          fmt.Sprintf("%x", committed.Unix()),
			Title:       "update " + name,
			CommittedAt: committed,
			WebURL:      "https://gitlab.example.com/" + p.Path + "/-/commit/" + name,
		},
	}
	p.Branches[name] = b
	return b
}

// HasBranch reports whether the branch still exists.
func (f *Fake) HasBranch(project, branch string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[project]
	if !ok {
		return false
	}
	_, ok = p.Branches[branch]
	return ok
}

// CallCount counts recorded calls for a method name.
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method || strings.HasPrefix(c, method+" ") {
			n++
		}
	}
	return n
}

func (f *Fake) record(parts ...string) {
	f.Calls = append(f.Calls, strings.Join(parts, " "))
}

func (f *Fake) lookup(ref string) (*FakeProject, bool) {
	for _, p := range f.projects {
		if p.Path == ref || fmt.Sprint(p.ID) == ref {
			return p, true
		}
	}
	return nil, false
}

// Authenticate returns AuthErr.
func (f *Fake) Authenticate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Authenticate")
	return f.AuthErr
}

// ResolveProject expands ref like the real client and looks it up.
func (f *Fake) ResolveProject(ctx context.Context, ref string) (*gitlabx.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ResolveProject", ref)

	expanded := gitlabx.ExpandProjectRef(ref, f.Scope)
	p, ok := f.lookup(expanded)
	if !ok {
		return nil, fmt.Errorf("%w: %q => %q", gitlabx.ErrProjectNotFound, ref, expanded)
	}
	return &gitlabx.Project{ID: p.ID, PathWithNamespace: p.Path}, nil
}

// ResolveGroup expands ref like the real client and looks it up.
func (f *Fake) ResolveGroup(ctx context.Context, ref string) (*gitlabx.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ResolveGroup", ref)

	expanded := gitlabx.ExpandGroupRef(ref, f.Scope)
	for _, g := range f.groups {
		if g.FullPath == expanded || fmt.Sprint(g.ID) == expanded {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %q => %q", gitlabx.ErrGroupNotFound, ref, expanded)
}

// ListGroupProjects returns the projects whose GroupID matches, by path.
func (f *Fake) ListGroupProjects(ctx context.Context, groupID int) ([]*gitlabx.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListGroupProjects", fmt.Sprint(groupID))

	var out []*gitlabx.Project
	for _, p := range f.projects {
		if p.GroupID == groupID {
			out = append(out, &gitlabx.Project{ID: p.ID, PathWithNamespace: p.Path})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PathWithNamespace < out[j].PathWithNamespace })
	return out, nil
}

// ListBranches returns the project's branches sorted by name.
func (f *Fake) ListBranches(ctx context.Context, project string) ([]*gitlabx.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListBranches", project)

	if err := f.ListErr[project]; err != nil {
		return nil, err
	}
	p, ok := f.lookup(project)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gitlabx.ErrProjectNotFound, project)
	}

	out := make([]*gitlabx.Branch, 0, len(p.Branches))
	for _, b := range p.Branches {
		copied := *b
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListProtectedBranches returns FakeProject.Protected.
func (f *Fake) ListProtectedBranches(ctx context.Context, project string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListProtectedBranches", project)

	p, ok := f.lookup(project)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gitlabx.ErrProjectNotFound, project)
	}
	return append([]string(nil), p.Protected...), nil
}

// LatestCommit returns the branch head.
func (f *Fake) LatestCommit(ctx context.Context, project, branch string) (*gitlabx.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LatestCommit", project, branch)

	b, err := f.branch(project, branch)
	if err != nil {
		return nil, err
	}
	if b.Commit == nil {
		return nil, fmt.Errorf("%w: %s %s", gitlabx.ErrNoCommits, project, branch)
	}
	c := *b.Commit
	return &c, nil
}

// GetBranch returns the branch or gitlabx.ErrBranchNotFound.
func (f *Fake) GetBranch(ctx context.Context, project, branch string) (*gitlabx.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetBranch", project, branch)

	b, err := f.branch(project, branch)
	if err != nil {
		return nil, err
	}
	copied := *b
	return &copied, nil
}

// DeleteBranch removes the branch unless a hook says otherwise.
func (f *Fake) DeleteBranch(ctx context.Context, project, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteBranch", project, branch)

	if err := f.DeleteErr[Key(project, branch)]; err != nil {
		return err
	}
	if _, err := f.branch(project, branch); err != nil {
		return err
	}
	if f.KeepOnDelete[Key(project, branch)] {
		return nil
	}
	p, _ := f.lookup(project)
	delete(p.Branches, branch)
	return nil
}

func (f *Fake) branch(project, branch string) (*gitlabx.Branch, error) {
	p, ok := f.lookup(project)
	if !ok {
		return nil, fmt.Errorf("%w: %s", gitlabx.ErrProjectNotFound, project)
	}
	b, ok := p.Branches[branch]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", gitlabx.ErrBranchNotFound, project, branch)
	}
	return b, nil
}
