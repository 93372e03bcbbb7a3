// Package inventory finds stale branches: unprotected branches whose most
// recent commit is older than a month threshold.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/danieljhkim/opskit/internal/agecheck"
	"github.com/danieljhkim/opskit/internal/clock"
	"github.com/danieljhkim/opskit/internal/gitlabx"
	"github.com/danieljhkim/opskit/internal/logging"
)

// ErrInventory marks a listing failure for a resolved project. A scan that
// hits it returns no partial result.
var ErrInventory = errors.New("inventory failed")

// DefaultProtected are never expired regardless of configuration.
var DefaultProtected = []string{"master", "main"}

// StaleBranch is a branch eligible for expiration.
type StaleBranch struct {
	Project     string
	Branch      string
	CommittedAt time.Time
}

// Unresolved records a project or group reference that could not be found.
type Unresolved struct {
	Ref string
	Err error
}

// Result is the outcome of a scan.
type Result struct {
	// Stale lists stale branches in scan order.
	Stale []StaleBranch

	// Unresolved lists references that were skipped.
	Unresolved []Unresolved

	// Scanned lists the full paths of projects that were scanned.
	Scanned []string
}

// Client scans projects through a gitlabx.API.
type Client struct {
	api       gitlabx.API
	clock     clock.Clock
	protected []string
	log       *logging.Logger
}

// New creates a Client. protected holds branch names or path.Match patterns
// that are always excluded.
func New(api gitlabx.API, clk clock.Clock, protected []string, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{api: api, clock: clk, protected: protected, log: log}
}

// ExpandGroups resolves group references into project paths. Unresolved
// groups are returned, not treated as fatal.
func (c *Client) ExpandGroups(ctx context.Context, groups []string) ([]string, []Unresolved, error) {
	var (
		projects   []string
		unresolved []Unresolved
	)
	for _, ref := range groups {
		g, err := c.api.ResolveGroup(ctx, ref)
		if err != nil {
			if errors.Is(err, gitlabx.ErrGroupNotFound) {
				c.log.Warn("could not find group", "group", ref, "error", err)
				unresolved = append(unresolved, Unresolved{Ref: ref, Err: err})
				continue
			}
			return nil, nil, err
		}

		members, err := c.api.ListGroupProjects(ctx, g.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: group %s: %w", ErrInventory, g.FullPath, err)
		}
		c.log.Debug("expanded group", "group", g.FullPath, "projects", len(members))
		for _, p := range members {
			projects = append(projects, p.PathWithNamespace)
		}
	}
	return projects, unresolved, nil
}

// ListStaleBranches resolves each project and returns its branches whose last
// commit is older than months. Projects that cannot be resolved are skipped and
// reported; a listing failure on a resolved project aborts the scan.
func (c *Client) ListStaleBranches(ctx context.Context, projects []string, months int) (*Result, error) {
	result := &Result{}
	seen := map[string]bool{}

	for _, ref := range projects {
		p, err := c.api.ResolveProject(ctx, ref)
		if err != nil {
			if errors.Is(err, gitlabx.ErrProjectNotFound) {
				c.log.Warn("could not find project", "project", ref, "error", err)
				result.Unresolved = append(result.Unresolved, Unresolved{Ref: ref, Err: err})
				continue
			}
			return nil, err
		}
		if seen[p.PathWithNamespace] {
			continue
		}
		seen[p.PathWithNamespace] = true

		stale, err := c.scanProject(ctx, p.PathWithNamespace, months)
		if err != nil {
			return nil, err
		}
		result.Scanned = append(result.Scanned, p.PathWithNamespace)
		result.Stale = append(result.Stale, stale...)
	}

	return result, nil
}

func (c *Client) scanProject(ctx context.Context, project string, months int) ([]StaleBranch, error) {
	log := c.log.With("project", project)
	log.Debug("scanning project")

	remoteProtected, err := c.api.ListProtectedBranches(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInventory, project, err)
	}
	protected := append(append([]string{}, c.protected...), remoteProtected...)

	branches, err := c.api.ListBranches(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInventory, project, err)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })

	var stale []StaleBranch
	for _, b := range branches {
		if b.Protected || IsProtected(b.Name, protected) {
			log.Debug("ignoring protected branch", "branch", b.Name)
			continue
		}

		commit, err := c.api.LatestCommit(ctx, project, b.Name)
		if err != nil {
			if errors.Is(err, gitlabx.ErrBranchNotFound) || errors.Is(err, gitlabx.ErrNoCommits) {
				// Deleted between listing and inspection. GitLab answers an
				// unknown ref_name with either a 404 or an empty commit list.
				log.Debug("branch vanished during scan", "branch", b.Name, "error", err)
				continue
			}
			return nil, fmt.Errorf("%w: %s branch %s: %w", ErrInventory, project, b.Name, err)
		}

		if !agecheck.IsTimeOlderThan(commit.CommittedAt, months, c.clock) {
			log.Debug("branch is current", "branch", b.Name, "committed_at", commit.CommittedAt)
			continue
		}
		log.Info("expiring branch", "branch", b.Name, "committed_at", commit.CommittedAt)
		stale = append(stale, StaleBranch{Project: project, Branch: b.Name, CommittedAt: commit.CommittedAt})
	}
	return stale, nil
}

// IsProtected reports whether name equals or matches any entry of protected.
// Entries may use path.Match wildcards as GitLab protected branch rules do.
func IsProtected(name string, protected []string) bool {
	for _, p := range protected {
		if p == name {
			return true
		}
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
