package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/opskit/internal/config"
	"github.com/danieljhkim/opskit/internal/engine"
	"github.com/danieljhkim/opskit/internal/planstore"
)

// expireOptions are the flags shared by plan, validate and apply.
type expireOptions struct {
	projects  []string
	groups    []string
	months    int
	tokenPath string
	inFile    string
	outFile   string
	format    string
	workers   int
	digest    string
}

func newExpireCmd(global *globalOptions) *cobra.Command {
	opts := &expireOptions{}

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Plan, validate and apply deletion of stale GitLab branches",
		Long: `Find unprotected branches whose latest commit is older than a month
threshold and delete them.

  plan      scan projects (or read --infile) and print, optionally save, the plan
  validate  check a plan against GitLab without deleting anything
  apply     delete every branch in the plan`,
	}

	flags := cmd.PersistentFlags()
	flags.StringArrayVarP(&opts.projects, "project", "p", nil, "project to check (repeatable; default from config)")
	flags.StringArrayVarP(&opts.groups, "group", "g", nil, "include every project of this group (repeatable)")
	flags.IntVarP(&opts.months, "months", "m", 0, "age threshold in months (default from config)")
	flags.StringVarP(&opts.tokenPath, "tokenpath", "t", "", "GitLab token file (overrides CI_JOB_TOKEN)")
	flags.StringVar(&opts.inFile, "infile", "", "plan file to read instead of scanning")
	flags.StringVar(&opts.outFile, "outfile", "", "plan file to save to")
	flags.StringVarP(&opts.format, "format", "f", "", "plan display format: yaml or json (default from config)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "projects processed in parallel during validate/apply (default from config)")
	flags.StringVar(&opts.digest, "digest", "", "refuse to run unless the plan has this digest (as printed by plan)")

	for _, action := range []struct {
		use, short string
		run        func(*cobra.Command, *expireRun) error
	}{
		{"plan", "Scan projects and build an expiration plan", runPlan},
		{"validate", "Report what apply would do, without deleting", runValidate},
		{"apply", "Delete every branch in the plan", runApply},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   action.use,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				run, err := prepareExpire(c, global, opts)
				if err != nil {
					return err
				}
				return action.run(c, run)
			},
		})
	}
	return cmd
}

// expireRun is everything one expire invocation resolved before running.
type expireRun struct {
	engine *engine.Engine
	rc     engine.RunContext
	runID  string
}

func prepareExpire(cmd *cobra.Command, global *globalOptions, opts *expireOptions) (*expireRun, error) {
	settings, err := loadSettings(global)
	if err != nil {
		return nil, err
	}

	formatName := settings.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := planstore.ParseFormat(formatName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfig, err)
	}

	months := settings.Months
	if cmd.Flags().Changed("months") {
		months = opts.months
	}
	workers := settings.Workers
	if cmd.Flags().Changed("workers") {
		workers = opts.workers
	}
	if months < 0 || workers < 1 {
		return nil, fmt.Errorf("%w: --months must be >= 0 and --workers >= 1", config.ErrConfig)
	}

	log, runID := newLogger(cmd, global).WithRunID()
	log.Debug("settings loaded", "source", settings.Source, "gitlab_url", settings.GitLabURL)

	tok, err := config.NewTokenResolver().Resolve(opts.tokenPath, settings.TokenFile)
	if err != nil {
		return nil, err
	}
	log.Debug("token resolved", "source", tok.Source, "path", tok.Path)

	api, err := newAPI(settings, tok)
	if err != nil {
		return nil, err
	}

	return &expireRun{
		engine: newEngine(settings, api, log),
		runID:  runID,
		rc: engine.RunContext{
			Projects: opts.projects,
			Groups:   opts.groups,
			Months:   months,
			Format:   format,
			InFile:   opts.inFile,
			OutFile:  opts.outFile,
			Workers:  workers,

			ExpectDigest: opts.digest,
			BeforeDelete: deleteNotice(cmd.OutOrStdout()),
		},
	}, nil
}

// deleteNotice prints each branch's last commit before it is deleted, so the
// audit trail exists even if the run is interrupted.
func deleteNotice(w io.Writer) func(engine.Outcome) {
	var mu sync.Mutex
	return func(o engine.Outcome) {
		committed, title, url := commitColumns(o)
		mu.Lock()
		defer mu.Unlock()
		PrintInfo(w, fmt.Sprintf("Deleting %s %s (last commit %s %q %s)", o.Project, o.Branch, committed, title, url))
	}
}

func runPlan(cmd *cobra.Command, run *expireRun) error {
	res, err := run.engine.Plan(cmd.Context(), run.rc)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printUnresolved(cmd.ErrOrStderr(), res)

	data, err := planstore.Encode(res.Plan, run.rc.Format)
	if err != nil {
		return err
	}
	_, _ = w.Write(data)

	errOut := cmd.ErrOrStderr()
	if res.Plan.IsEmpty() {
		PrintEmptyState(errOut, "No stale branches found")
	}
	if res.SavedTo != "" {
		PrintSuccess(errOut, fmt.Sprintf("Saved plan with %s to %s", PrintCount(res.Plan.Len(), "branch", "branches"), res.SavedTo))
	}
	PrintLabelValue(errOut, "Plan digest", res.Digest)
	return nil
}

func runValidate(cmd *cobra.Command, run *expireRun) error {
	res, err := run.engine.Validate(cmd.Context(), run.rc)
	if err != nil {
		return err
	}
	printRun(cmd.OutOrStdout(), run.runID, res)
	return nil
}

func runApply(cmd *cobra.Command, run *expireRun) error {
	res, err := run.engine.Apply(cmd.Context(), run.rc)
	if err != nil {
		return err
	}
	printRun(cmd.OutOrStdout(), run.runID, res)
	return nil
}

func printUnresolved(w io.Writer, res *engine.PlanResult) {
	for _, u := range res.Unresolved {
		PrintWarning(w, fmt.Sprintf("Skipped %q: %v", u.Ref, u.Err))
	}
}

func printRun(w io.Writer, runID string, res *engine.RunResult) {
	printUnresolved(w, res.PlanResult)
	PrintLabelValue(w, "Run ID", runID)
	PrintLabelValue(w, "Plan digest", res.Digest)
	if res.SavedTo != "" {
		PrintLabelValue(w, "Plan saved to", res.SavedTo)
	}
	if res.LoadedFrom != "" {
		PrintLabelValue(w, "Plan loaded from", res.LoadedFrom)
	}

	title := "Apply"
	if res.DryRun {
		title = "Validate"
	}
	PrintSection(w, title)
	PrintOutcomes(w, res.Outcomes)
	fmt.Fprintln(w)
	PrintSummary(w, res.Outcomes, res.DryRun)
}
