package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/opskit/internal/gitlabx"
	"github.com/danieljhkim/opskit/internal/planner"
)

// ExecuteOptions tunes Execute.
type ExecuteOptions struct {
	// DryRun stops after the lookup and reports would-delete.
	DryRun bool

	// Workers bounds concurrent projects. Values below 1 mean 1.
	Workers int

	// BeforeDelete receives the outcome-so-far, commit included, right before
	// the delete request. It is called from worker goroutines.
	BeforeDelete func(Outcome)
}

// Execute runs every plan entry and returns one Outcome per entry, in plan
// order. Branches of one project are handled serially; projects may overlap
// up to opts.Workers. A failing branch never stops the others. The only error
// returned is the context's.
func (e *Engine) Execute(ctx context.Context, plan planner.Plan, opts ExecuteOptions) ([]Outcome, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	projects := plan.Projects()
	results := make([][]Outcome, len(projects))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, project := range projects {
		g.Go(func() error {
			results[i] = e.executeProject(ctx, project, plan, opts)
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make([]Outcome, 0, plan.Len())
	for _, r := range results {
		outcomes = append(outcomes, r...)
	}
	return outcomes, ctx.Err()
}

func (e *Engine) executeProject(ctx context.Context, project string, plan planner.Plan, opts ExecuteOptions) []Outcome {
	branches := plan.Branches(project)
	out := make([]Outcome, 0, len(branches))
	for _, branch := range branches {
		planned, _ := plan.Timestamp(project, branch)
		out = append(out, e.executeBranch(ctx, project, branch, planned, opts))
	}
	return out
}

func (e *Engine) executeBranch(ctx context.Context, project, branch, planned string, opts ExecuteOptions) Outcome {
	o := Outcome{Project: project, Branch: branch, PlannedAt: planned}
	log := e.log.With("project", project, "branch", branch)

	b, err := e.api.GetBranch(ctx, project, branch)
	if err != nil {
		if errors.Is(err, gitlabx.ErrBranchNotFound) {
			log.Info("branch not found")
			o.Kind = OutcomeNotFound
			return o
		}
		log.Error("branch lookup failed", "error", err)
		o.Kind = OutcomeDeleteFailed
		o.Err = err.Error()
		return o
	}
	o.Commit = b.Commit

	args := []any{"planned_at", planned}
	if c := b.Commit; c != nil {
		args = append(args, "committed_at", c.CommittedAt, "title", c.Title, "url", c.WebURL)
	}

	if opts.DryRun {
		log.Info("would delete branch", args...)
		o.Kind = OutcomeWouldDelete
		return o
	}

	log.Info("deleting branch", args...)
	if opts.BeforeDelete != nil {
		opts.BeforeDelete(o)
	}
	if err := e.api.DeleteBranch(ctx, project, branch); err != nil {
		log.Error("delete failed", "error", err)
		o.Kind = OutcomeDeleteFailed
		o.Err = err.Error()
		return o
	}

	_, err = e.api.GetBranch(ctx, project, branch)
	switch {
	case errors.Is(err, gitlabx.ErrBranchNotFound):
		log.Info("branch deleted")
		o.Kind = OutcomeDeleted
	case err == nil:
		log.Warn("branch still present after delete")
		o.Kind = OutcomeDeleteUnconfirmed
		o.Err = "branch still present after delete"
	default:
		log.Warn("could not confirm deletion", "error", err)
		o.Kind = OutcomeDeleteUnconfirmed
		o.Err = err.Error()
	}
	return o
}
