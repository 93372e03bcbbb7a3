// Package engine runs branch expiration: it builds or loads a plan, saves it
// for review, and executes it against GitLab.
//
// Key components:
//   - Engine.Plan: scan or read a plan file, and optionally save
//   - Engine.Validate: dry-run execution, never deletes
//   - Engine.Apply: execution with deletion
//   - Engine.Execute: per-branch lookup, delete, and confirmation
package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/opskit/internal/fsops"
	"github.com/danieljhkim/opskit/internal/gitlabx"
	"github.com/danieljhkim/opskit/internal/hash"
	"github.com/danieljhkim/opskit/internal/logging"
	"github.com/danieljhkim/opskit/internal/planner"
	"github.com/danieljhkim/opskit/internal/planstore"
)

// Engine orchestrates expiration runs.
// It is the main API surface called by the CLI.
type Engine struct {
	api     gitlabx.API
	builder *planner.Builder
	store   *planstore.Store
	hasher  hash.Hasher
	log     *logging.Logger
}

// New creates a new Engine with the given dependencies.
func New(api gitlabx.API, builder *planner.Builder, store *planstore.Store, hasher hash.Hasher, log *logging.Logger) *Engine {
	if hasher == nil {
		hasher = hash.NewSHA256Hasher()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{api: api, builder: builder, store: store, hasher: hasher, log: log}
}

// Digest fingerprints a plan. Equal plans have equal digests regardless of
// the file format they were stored in.
func (e *Engine) Digest(plan planner.Plan) (string, error) {
	data, err := planstore.Encode(plan, planstore.FormatJSON)
	if err != nil {
		return "", err
	}
	return e.hasher.HashBytes(data), nil
}

// Plan builds a plan from the scan selection, or reads rc.InFile when set,
// and saves it when rc.OutFile is set. Reading a plan file makes no remote call.
func (e *Engine) Plan(ctx context.Context, rc RunContext) (*PlanResult, error) {
	pr, err := e.obtain(ctx, rc)
	if err != nil {
		return nil, err
	}
	if err := e.save(pr, rc); err != nil {
		return nil, err
	}
	return pr, nil
}

// Validate loads or builds a plan and reports what apply would do. It makes no
// destructive call.
func (e *Engine) Validate(ctx context.Context, rc RunContext) (*RunResult, error) {
	rc.DryRun = true
	return e.run(ctx, rc)
}

// Apply loads or builds a plan and deletes its branches, unless rc.DryRun.
func (e *Engine) Apply(ctx context.Context, rc RunContext) (*RunResult, error) {
	return e.run(ctx, rc)
}

func (e *Engine) run(ctx context.Context, rc RunContext) (*RunResult, error) {
	pr, err := e.obtain(ctx, rc)
	if err != nil {
		return nil, err
	}
	if rc.ExpectDigest != "" && !hash.Matches(pr.Digest, rc.ExpectDigest) {
		return nil, fmt.Errorf("%w: plan is %s, expected %s", ErrDigestMismatch, pr.Digest, rc.ExpectDigest)
	}
	if err := e.save(pr, rc); err != nil {
		return nil, err
	}
	if pr.LoadedFrom != "" {
		if err := e.api.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	outcomes, err := e.Execute(ctx, pr.Plan, ExecuteOptions{
		DryRun:       rc.DryRun,
		Workers:      rc.Workers,
		BeforeDelete: rc.BeforeDelete,
	})
	if err != nil {
		return nil, err
	}
	return &RunResult{PlanResult: pr, Outcomes: outcomes, DryRun: rc.DryRun}, nil
}

// obtain reads rc.InFile when given and scans GitLab otherwise.
func (e *Engine) obtain(ctx context.Context, rc RunContext) (*PlanResult, error) {
	if err := checkRun(rc); err != nil {
		return nil, err
	}
	if rc.InFile != "" {
		return e.load(rc)
	}
	return e.build(ctx, rc)
}

func (e *Engine) build(ctx context.Context, rc RunContext) (*PlanResult, error) {
	if err := e.api.Authenticate(ctx); err != nil {
		return nil, err
	}

	res, err := e.builder.Build(ctx, planner.BuildRequest{
		Projects: rc.Projects,
		Groups:   rc.Groups,
		Months:   rc.Months,
	})
	if err != nil {
		return nil, err
	}

	digest, err := e.Digest(res.Plan)
	if err != nil {
		return nil, err
	}

	for _, u := range res.Unresolved {
		e.log.Warn("skipped unresolved reference", "ref", u.Ref, "error", u.Err)
	}
	e.log.Info("plan built", "projects", len(res.Scanned), "branches", res.Plan.Len(), "months", rc.Months, "digest", digest)
	return &PlanResult{Plan: res.Plan, Digest: digest, Unresolved: res.Unresolved, Scanned: res.Scanned}, nil
}

func (e *Engine) load(rc RunContext) (*PlanResult, error) {
	if len(rc.Projects) > 0 || len(rc.Groups) > 0 {
		e.log.Warn("project and group selection ignored when reading a plan file", "infile", rc.InFile)
	}

	path, err := fsops.ExpandPath(rc.InFile)
	if err != nil {
		return nil, err
	}
	plan, err := e.store.Load(path)
	if err != nil {
		return nil, err
	}
	digest, err := e.Digest(plan)
	if err != nil {
		return nil, err
	}
	e.log.Info("plan loaded", "path", path, "branches", plan.Len(), "digest", digest)
	return &PlanResult{Plan: plan, Digest: digest, LoadedFrom: path}, nil
}

// save writes the plan to rc.OutFile, built or loaded alike.
func (e *Engine) save(pr *PlanResult, rc RunContext) error {
	if rc.OutFile == "" {
		return nil
	}
	path, err := fsops.ExpandPath(rc.OutFile)
	if err != nil {
		return err
	}
	if err := e.store.Save(pr.Plan, path, rc.Format); err != nil {
		return err
	}
	pr.SavedTo = path
	e.log.Info("plan saved", "path", path)
	return nil
}

func checkRun(rc RunContext) error {
	if rc.Months < 0 {
		return fmt.Errorf("%w: months must not be negative, got %d", ErrInvalidRun, rc.Months)
	}
	if rc.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidRun, rc.Workers)
	}
	return nil
}
