package gitlabx

import "time"

// Project is the subset of a GitLab project opskit works with.
type Project struct {
	ID                int
	PathWithNamespace string
	WebURL            string
}

// Group is the subset of a GitLab group opskit works with.
type Group struct {
	ID       int
	FullPath string
}

// Branch is a repository branch and its head commit.
type Branch struct {
	Name      string
	Protected bool
	WebURL    string

	// Commit is the branch head; nil if the server omitted it.
	Commit *Commit
}

// Commit holds the audit fields reported before a branch is removed.
type Commit struct {
	ID          string
	Title       string
	CommittedAt time.Time
	WebURL      string
}

// Scope carries the defaults used to expand short project and group names.
type Scope struct {
	// Namespace is the top-level namespace (e.g. "mycompany").
	Namespace string

	// GroupPath is the default group for bare project names (e.g. "mycompany/devops").
	GroupPath string
}
