package gitlabx

import "errors"

var (
	// ErrProjectNotFound is returned when a project id or path does not resolve.
	ErrProjectNotFound = errors.New("project not found")

	// ErrGroupNotFound is returned when a group id or path does not resolve.
	ErrGroupNotFound = errors.New("group not found")

	// ErrBranchNotFound is returned when a branch does not exist in the project.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrNoCommits is returned when a branch reports no commits.
	ErrNoCommits = errors.New("branch has no commits")

	// ErrUnauthorized is returned when the token is rejected by the server.
	ErrUnauthorized = errors.New("token rejected by gitlab")
)
