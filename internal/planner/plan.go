package planner

import (
	"sort"
	"time"
)

// TimestampLayout is how commit times are written into plans. It matches the
// committed_date format GitLab reports.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Plan maps project path -> branch name -> last commit timestamp.
// A (project, branch) pair appears at most once. A well-formed plan has no
// project without branches; Register never creates one and Prune removes any.
type Plan map[string]map[string]string

// Entry is one branch in a Plan.
type Entry struct {
	Project     string
	Branch      string
	CommittedAt string
}

// New creates an empty Plan.
func New() Plan {
	return Plan{}
}

// Register adds a branch or overwrites its timestamp if already present.
func (p Plan) Register(project, branch, committedAt string) {
	branches, ok := p[project]
	if !ok {
		branches = map[string]string{}
		p[project] = branches
	}
	branches[branch] = committedAt
}

// RegisterTime is Register with the timestamp formatted by TimestampLayout.
func (p Plan) RegisterTime(project, branch string, committedAt time.Time) {
	p.Register(project, branch, committedAt.Format(TimestampLayout))
}

// Timestamp returns the recorded timestamp for a branch.
func (p Plan) Timestamp(project, branch string) (string, bool) {
	ts, ok := p[project][branch]
	return ts, ok
}

// Projects returns project keys in lexical order.
func (p Plan) Projects() []string {
	out := make([]string, 0, len(p))
	for project := range p {
		out = append(out, project)
	}
	sort.Strings(out)
	return out
}

// Branches returns the project's branch names in lexical order.
func (p Plan) Branches(project string) []string {
	branches := p[project]
	out := make([]string, 0, len(branches))
	for b := range branches {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Entries flattens the plan in iteration order.
func (p Plan) Entries() []Entry {
	var out []Entry
	for _, project := range p.Projects() {
		for _, branch := range p.Branches(project) {
			out = append(out, Entry{Project: project, Branch: branch, CommittedAt: p[project][branch]})
		}
	}
	return out
}

// Len counts branches across all projects.
func (p Plan) Len() int {
	n := 0
	for _, branches := range p {
		n += len(branches)
	}
	return n
}

// IsEmpty reports whether the plan lists no branches.
func (p Plan) IsEmpty() bool {
	return p.Len() == 0
}

// Prune drops projects that have no branches left.
func (p Plan) Prune() {
	for project, branches := range p {
		if len(branches) == 0 {
			delete(p, project)
		}
	}
}
