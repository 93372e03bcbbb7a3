// Package gitlabx is the remote collaborator for branch expiration: project and
// group resolution, branch and commit listing, and branch deletion against the
// GitLab REST API.
package gitlabx

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/time/rate"
)

// API is the set of remote operations the inventory and executor depend on.
// Project references passed to branch operations are full paths or numeric ids.
type API interface {
	// Authenticate verifies the token before any other call.
	Authenticate(ctx context.Context) error

	// ResolveProject expands ref with the client's Scope and looks it up.
	ResolveProject(ctx context.Context, ref string) (*Project, error)

	// ResolveGroup expands ref with the client's Scope and looks it up.
	ResolveGroup(ctx context.Context, ref string) (*Group, error)

	// ListGroupProjects returns every non-archived project in the group,
	// including subgroups.
	ListGroupProjects(ctx context.Context, groupID int) ([]*Project, error)

	// ListBranches returns every branch of the project, across all pages.
	ListBranches(ctx context.Context, project string) ([]*Branch, error)

	// ListProtectedBranches returns the names of the project's protected branches.
	ListProtectedBranches(ctx context.Context, project string) ([]string, error)

	// LatestCommit returns the single most recent commit on branch.
	LatestCommit(ctx context.Context, project, branch string) (*Commit, error)

	// GetBranch returns the branch or ErrBranchNotFound.
	GetBranch(ctx context.Context, project, branch string) (*Branch, error)

	// DeleteBranch removes the branch.
	DeleteBranch(ctx context.Context, project, branch string) error
}

// DefaultPerPage is the page size used for list calls.
const DefaultPerPage = 100

// Options configures a Client.
type Options struct {
	// BaseURL is the GitLab instance URL, e.g. "https://gitlab.com".
	BaseURL string

	// Token is the access token.
	Token string

	// JobToken sends Token as a CI job token instead of a private token.
	JobToken bool

	// Scope expands short project and group names.
	Scope Scope

	// RequestsPerSecond paces API calls. Zero disables pacing.
	RequestsPerSecond float64

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client implements API on top of client-go.
type Client struct {
	gl       *gitlab.Client
	limiter  *rate.Limiter
	scope    Scope
	jobToken bool
	perPage  int
}

var _ API = (*Client)(nil)

// NewClient creates a Client. No request is made until the first call.
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("gitlab token is empty")
	}

	clientOpts := []gitlab.ClientOptionFunc{}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, gitlab.WithHTTPClient(opts.HTTPClient))
	}

	var (
		gl  *gitlab.Client
		err error
	)
	if opts.JobToken {
		gl, err = gitlab.NewJobClient(opts.Token, clientOpts...)
	} else {
		gl, err = gitlab.NewClient(opts.Token, clientOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	c := &Client{
		gl:       gl,
		scope:    opts.Scope,
		jobToken: opts.JobToken,
		perPage:  DefaultPerPage,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Authenticate checks a private token against /user. Job tokens cannot call
// /user and are accepted as-is.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.jobToken {
		return nil
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, resp, err := c.gl.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		if statusOf(resp, err) == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	return nil
}

// ResolveProject looks up a project by id or expanded path.
func (c *Client) ResolveProject(ctx context.Context, ref string) (*Project, error) {
	expanded := ExpandProjectRef(ref, c.scope)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	p, resp, err := c.gl.Projects.GetProject(pid(expanded), nil, gitlab.WithContext(ctx))
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %q => %q", ErrProjectNotFound, ref, expanded)
		}
		return nil, fmt.Errorf("failed to get project %q: %w", expanded, err)
	}
	return toProject(p), nil
}

// ResolveGroup looks up a group by id or expanded path.
func (c *Client) ResolveGroup(ctx context.Context, ref string) (*Group, error) {
	expanded := ExpandGroupRef(ref, c.scope)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	g, resp, err := c.gl.Groups.GetGroup(pid(expanded), nil, gitlab.WithContext(ctx))
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %q => %q", ErrGroupNotFound, ref, expanded)
		}
		return nil, fmt.Errorf("failed to get group %q: %w", expanded, err)
	}
	return &Group{ID: g.ID, FullPath: g.FullPath}, nil
}

// ListGroupProjects pages through the group's projects.
func (c *Client) ListGroupProjects(ctx context.Context, groupID int) ([]*Project, error) {
	opt := &gitlab.ListGroupProjectsOptions{
		ListOptions:      gitlab.ListOptions{PerPage: c.perPage, Page: 1},
		IncludeSubGroups: gitlab.Ptr(true),
		Archived:         gitlab.Ptr(false),
	}

	var out []*Project
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		projects, resp, err := c.gl.Groups.ListGroupProjects(groupID, opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list projects of group %d: %w", groupID, err)
		}
		for _, p := range projects {
			out = append(out, toProject(p))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

// ListBranches pages through every branch of the project.
func (c *Client) ListBranches(ctx context.Context, project string) ([]*Branch, error) {
	opt := &gitlab.ListBranchesOptions{
		ListOptions: gitlab.ListOptions{PerPage: c.perPage, Page: 1},
	}

	var out []*Branch
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		branches, resp, err := c.gl.Branches.ListBranches(pid(project), opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list branches of %q: %w", project, err)
		}
		for _, b := range branches {
			out = append(out, toBranch(b))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return out, nil
}

// ListProtectedBranches pages through the project's protected branch names.
// Names may be wildcard patterns such as "release/*".
func (c *Client) ListProtectedBranches(ctx context.Context, project string) ([]string, error) {
	opt := &gitlab.ListProtectedBranchesOptions{
		ListOptions: gitlab.ListOptions{PerPage: c.perPage, Page: 1},
	}

	var names []string
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		protected, resp, err := c.gl.ProtectedBranches.ListProtectedBranches(pid(project), opt, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list protected branches of %q: %w", project, err)
		}
		for _, pb := range protected {
			names = append(names, pb.Name)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return names, nil
}

// LatestCommit asks for exactly one commit on the branch. GitLab orders
// commits newest first, so the single result is the branch head.
func (c *Client) LatestCommit(ctx context.Context, project, branch string) (*Commit, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	opt := &gitlab.ListCommitsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 1, Page: 1},
		RefName:     gitlab.Ptr(branch),
	}
	commits, resp, err := c.gl.Commits.ListCommits(pid(project), opt, gitlab.WithContext(ctx))
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s %s", ErrBranchNotFound, project, branch)
		}
		return nil, fmt.Errorf("failed to list commits of %q branch %q: %w", project, branch, err)
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoCommits, project, branch)
	}
	return toCommit(commits[0]), nil
}

// GetBranch fetches a single branch.
func (c *Client) GetBranch(ctx context.Context, project, branch string) (*Branch, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	b, resp, err := c.gl.Branches.GetBranch(pid(project), branch, gitlab.WithContext(ctx))
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s %s", ErrBranchNotFound, project, branch)
		}
		return nil, fmt.Errorf("failed to get %q branch %q: %w", project, branch, err)
	}
	return toBranch(b), nil
}

// DeleteBranch removes a branch.
func (c *Client) DeleteBranch(ctx context.Context, project, branch string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	resp, err := c.gl.Branches.DeleteBranch(pid(project), branch, gitlab.WithContext(ctx))
	if err != nil {
		if statusOf(resp, err) == http.StatusNotFound {
			return fmt.Errorf("%w: %s %s", ErrBranchNotFound, project, branch)
		}
		return fmt.Errorf("failed to delete %q branch %q: %w", project, branch, err)
	}
	return nil
}

// statusOf extracts the HTTP status from a client-go response or error.
func statusOf(resp *gitlab.Response, err error) int {
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	var errResp *gitlab.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

func toProject(p *gitlab.Project) *Project {
	return &Project{
		ID:                p.ID,
		PathWithNamespace: p.PathWithNamespace,
		WebURL:            p.WebURL,
	}
}

func toBranch(b *gitlab.Branch) *Branch {
	out := &Branch{
		Name:      b.Name,
		Protected: b.Protected,
		WebURL:    b.WebURL,
	}
	if b.Commit != nil {
		out.Commit = toCommit(b.Commit)
	}
	return out
}

func toCommit(c *gitlab.Commit) *Commit {
	out := &Commit{
		ID:     c.ID,
		Title:  c.Title,
		WebURL: c.WebURL,
	}
	if c.CommittedDate != nil {
		out.CommittedAt = *c.CommittedDate
	}
	return out
}
