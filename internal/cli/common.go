package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/opskit/internal/clock"
	"github.com/danieljhkim/opskit/internal/config"
	"github.com/danieljhkim/opskit/internal/engine"
	"github.com/danieljhkim/opskit/internal/fsops"
	"github.com/danieljhkim/opskit/internal/gitlabx"
	"github.com/danieljhkim/opskit/internal/hash"
	"github.com/danieljhkim/opskit/internal/inventory"
	"github.com/danieljhkim/opskit/internal/logging"
	"github.com/danieljhkim/opskit/internal/planner"
	"github.com/danieljhkim/opskit/internal/planstore"
)

// newAPI builds the remote client. Tests replace it with an in-memory fake.
var newAPI = func(s *config.Settings, tok config.Token) (gitlabx.API, error) {
	c, err := gitlabx.NewClient(gitlabx.Options{
		BaseURL:           s.GitLabURL,
		Token:             tok.Value,
		JobToken:          tok.IsJobToken(),
		Scope:             gitlabx.Scope{Namespace: s.DefaultNamespace, GroupPath: s.DefaultGroupPath},
		RequestsPerSecond: s.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}
	return c, nil
}

// newClock is the time source for age checks.
var newClock = func() clock.Clock { return &clock.RealClock{} }

// loadSettings reads configuration honoring --config.
func loadSettings(opts *globalOptions) (*config.Settings, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}
	if opts.configFile != "" {
		file, err := fsops.ExpandPath(opts.configFile)
		if err != nil {
			return nil, err
		}
		paths = paths.WithFile(file)
	}
	return config.Load(nil, paths)
}

// newLogger writes diagnostics to the command's stderr.
func newLogger(cmd *cobra.Command, opts *globalOptions) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.LevelFor(opts.debug, opts.verbose),
		Output: cmd.ErrOrStderr(),
	})
}

// newEngine wires the expiration engine from settings.
func newEngine(s *config.Settings, api gitlabx.API, log *logging.Logger) *engine.Engine {
	protected := append([]string{}, inventory.DefaultProtected...)
	protected = append(protected, s.ProtectedBranches...)

	inv := inventory.New(api, newClock(), protected, log)
	builder := planner.NewBuilder(inv, s.DefaultProjects)
	return engine.New(api, builder, planstore.New(fsops.NewRealFS()), hash.NewSHA256Hasher(), log)
}

// openInput returns stdin for "" or "-" and the named file otherwise.
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	path, err := fsops.ExpandPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
