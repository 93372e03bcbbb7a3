package engine

import (
	"github.com/danieljhkim/opskit/internal/gitlabx"
	"github.com/danieljhkim/opskit/internal/inventory"
	"github.com/danieljhkim/opskit/internal/planner"
	"github.com/danieljhkim/opskit/internal/planstore"
)

// RunContext carries everything one invocation needs. It is passed
// explicitly; the engine keeps no per-run state of its own.
type RunContext struct {
	// Projects are project references to scan.
	Projects []string

	// Groups add every project of each group to the scan.
	Groups []string

	// Months is the staleness threshold.
	Months int

	// Format is used for the outfile when its extension is not recognized.
	Format planstore.Format

	// InFile, when set, is the plan to execute instead of scanning.
	InFile string

	// OutFile, when set, receives the plan before anything is executed.
	OutFile string

	// DryRun reports what would be deleted without deleting.
	DryRun bool

	// Workers bounds how many projects are processed at once.
	Workers int

	// ExpectDigest, when set, must match the digest of the plan about to be
	// executed. It may be abbreviated.
	ExpectDigest string

	// BeforeDelete, when set, is called with the branch's last commit just
	// before each delete request. See ExecuteOptions.
	BeforeDelete func(Outcome)
}

// OutcomeKind classifies what happened to one planned branch.
type OutcomeKind string

const (
	// OutcomeDeleted means the branch was deleted and is confirmed gone.
	OutcomeDeleted OutcomeKind = "deleted"

	// OutcomeNotFound means the branch did not exist at execution time.
	OutcomeNotFound OutcomeKind = "not-found"

	// OutcomeDeleteFailed means the lookup or delete call failed.
	OutcomeDeleteFailed OutcomeKind = "delete-failed"

	// OutcomeDeleteUnconfirmed means the delete call succeeded but the branch
	// could not be confirmed gone.
	OutcomeDeleteUnconfirmed OutcomeKind = "delete-unconfirmed"

	// OutcomeWouldDelete is reported by dry runs.
	OutcomeWouldDelete OutcomeKind = "would-delete"
)

// Outcome is the result for one (project, branch) pair.
type Outcome struct {
	Project string
	Branch  string
	Kind    OutcomeKind

	// PlannedAt is the timestamp recorded in the plan.
	PlannedAt string

	// Commit is the branch head seen at execution time, nil when unknown.
	Commit *gitlabx.Commit

	// Err describes the failure for delete-failed and delete-unconfirmed.
	Err string
}

// Failed reports whether the outcome needs operator attention.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeDeleteFailed || o.Kind == OutcomeDeleteUnconfirmed
}

// Summary counts outcomes by kind.
type Summary map[OutcomeKind]int

// Summarize counts outcomes by kind.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{}
	for _, o := range outcomes {
		s[o.Kind]++
	}
	return s
}

// PlanResult is what a plan run produced.
type PlanResult struct {
	Plan planner.Plan

	// Digest fingerprints the plan's canonical JSON form.
	Digest string

	// Unresolved lists project or group references that were skipped.
	Unresolved []inventory.Unresolved

	// Scanned lists projects that were scanned; empty when loaded from file.
	Scanned []string

	// LoadedFrom is the plan file that was read, if any.
	LoadedFrom string

	// SavedTo is the plan file that was written, if any.
	SavedTo string
}

// RunResult is what validate and apply produced.
type RunResult struct {
	*PlanResult

	Outcomes []Outcome
	DryRun   bool
}
