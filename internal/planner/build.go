package planner

import (
	"context"
	"fmt"

	"github.com/danieljhkim/opskit/internal/inventory"
)

// Scanner is the part of the inventory client the Builder needs.
type Scanner interface {
	ExpandGroups(ctx context.Context, groups []string) ([]string, []inventory.Unresolved, error)
	ListStaleBranches(ctx context.Context, projects []string, months int) (*inventory.Result, error)
}

// BuildRequest selects what to scan.
type BuildRequest struct {
	// Projects are project references; empty means DefaultProjects.
	Projects []string

	// Groups add every project in each group.
	Groups []string

	// Months is the staleness threshold.
	Months int
}

// BuildResult is a built plan plus the references that were skipped.
type BuildResult struct {
	Plan       Plan
	Unresolved []inventory.Unresolved
	Scanned    []string
}

// Builder folds inventory results into a Plan.
type Builder struct {
	scanner         Scanner
	defaultProjects []string
}

// NewBuilder creates a Builder. defaultProjects is used when a request names
// neither projects nor groups.
func NewBuilder(scanner Scanner, defaultProjects []string) *Builder {
	return &Builder{scanner: scanner, defaultProjects: defaultProjects}
}

// Build scans the requested projects and returns a Plan of stale branches.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if req.Months < 0 {
		return nil, fmt.Errorf("months must not be negative, got %d", req.Months)
	}

	projects := append([]string{}, req.Projects...)
	if len(projects) == 0 && len(req.Groups) == 0 {
		projects = append(projects, b.defaultProjects...)
	}

	var unresolved []inventory.Unresolved
	if len(req.Groups) > 0 {
		members, skipped, err := b.scanner.ExpandGroups(ctx, req.Groups)
		if err != nil {
			return nil, err
		}
		projects = append(projects, members...)
		unresolved = append(unresolved, skipped...)
	}

	inv, err := b.scanner.ListStaleBranches(ctx, projects, req.Months)
	if err != nil {
		return nil, err
	}

	plan := New()
	for _, s := range inv.Stale {
		plan.RegisterTime(s.Project, s.Branch, s.CommittedAt)
	}

	return &BuildResult{
		Plan:       plan,
		Unresolved: append(unresolved, inv.Unresolved...),
		Scanned:    inv.Scanned,
	}, nil
}
