package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/danieljhkim/opskit/internal/agecheck"
	"github.com/danieljhkim/opskit/internal/config"
	"github.com/danieljhkim/opskit/internal/engine"
	"github.com/danieljhkim/opskit/internal/fsops"
	"github.com/danieljhkim/opskit/internal/gitlabx"
	"github.com/danieljhkim/opskit/internal/inventory"
	"github.com/danieljhkim/opskit/internal/planstore"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitUnexpected  = 1
	ExitConfig      = 2
	ExitPath        = 3
	ExitInventory   = 4
	ExitPersistence = 5
)

// usageError wraps bad flags so they exit like other configuration mistakes.
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

// ExitCode maps an error returned by Execute to a process exit code.
// Per-branch execution failures are outcomes, not errors, and exit 0.
func ExitCode(err error) int {
	var usage usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage),
		errors.Is(err, config.ErrConfig),
		errors.Is(err, planstore.ErrUnknownFormat),
		errors.Is(err, gitlabx.ErrUnauthorized),
		errors.Is(err, engine.ErrInvalidRun),
		errors.Is(err, agecheck.ErrUnparsableDate):
		return ExitConfig
	case errors.Is(err, fsops.ErrPath):
		return ExitPath
	case errors.Is(err, inventory.ErrInventory):
		return ExitInventory
	case errors.Is(err, planstore.ErrPersistence),
		errors.Is(err, engine.ErrDigestMismatch):
		return ExitPersistence
	default:
		return ExitUnexpected
	}
}

// ReportError prints err the way every command failure is shown.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, formatError(err))
}
