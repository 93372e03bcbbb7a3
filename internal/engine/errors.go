package engine

import "errors"

var (
	// ErrInvalidRun indicates a RunContext the engine cannot act on.
	ErrInvalidRun = errors.New("invalid run")

	// ErrDigestMismatch indicates the plan differs from the one the operator
	// approved.
	ErrDigestMismatch = errors.New("plan digest mismatch")
)
