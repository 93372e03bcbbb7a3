package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/opskit/internal/agecheck"
	"github.com/danieljhkim/opskit/internal/config"
	"github.com/danieljhkim/opskit/internal/engine"
	"github.com/danieljhkim/opskit/internal/fsops"
	"github.com/danieljhkim/opskit/internal/gitlabx"
	"github.com/danieljhkim/opskit/internal/inventory"
	"github.com/danieljhkim/opskit/internal/planstore"
)

func TestRootCommand_Help(t *testing.T) {
	out, _, err := runCLI(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "opskit")
	assert.Contains(t, out, "Branch Expiration:")
	assert.Contains(t, out, "Utilities:")
	assert.Contains(t, out, "expire")
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, _, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, _, err = runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, _, err := runCLI(t, "invalid-command")
	require.Error(t, err)
}

func TestRootCommand_BadFlagIsConfigError(t *testing.T) {
	_, _, err := runCLI(t, "expire", "plan", "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"expire", "plan"}, {"expire", "validate"}, {"expire", "apply"},
		{"age"}, {"convert"}, {"dhcp"}, {"columns"}, {"version"}, {"completion", "bash"},
	} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := root.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config", fmt.Errorf("wrapped: %w", config.ErrConfig), ExitConfig},
		{"format", planstore.ErrUnknownFormat, ExitConfig},
		{"unauthorized", gitlabx.ErrUnauthorized, ExitConfig},
		{"invalid run", engine.ErrInvalidRun, ExitConfig},
		{"bad date", agecheck.ErrUnparsableDate, ExitConfig},
		{"usage", usageError{errors.New("unknown flag")}, ExitConfig},
		{"path", fmt.Errorf("x: %w", fsops.ErrPath), ExitPath},
		{"inventory", fmt.Errorf("x: %w", inventory.ErrInventory), ExitInventory},
		{"persistence", fmt.Errorf("%w: %w", planstore.ErrPersistence, planstore.ErrPlanNotFound), ExitPersistence},
		{"digest", engine.ErrDigestMismatch, ExitPersistence},
		{"other", errors.New("boom"), ExitUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestReportError(t *testing.T) {
	var b strings.Builder
	ReportError(&b, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", b.String())
}
