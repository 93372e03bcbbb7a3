package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/opskit/internal/agecheck"
	"github.com/danieljhkim/opskit/internal/config"
)

func newAgeCmd(global *globalOptions) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "age <date>",
		Short: "Check whether a date is older than a number of months",
		Long: `Parse a date in any supported layout and compare it with now minus
the given number of calendar months. Dates without a zone are read in the
local zone. Unquoted words are joined with spaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("months") {
				settings, err := loadSettings(global)
				if err != nil {
					return err
				}
				months = settings.Months
			}
			if months < 0 {
				return fmt.Errorf("%w: --months must not be negative, got %d", config.ErrConfig, months)
			}

			clk := newClock()
			input := strings.Join(args, " ")
			t, err := agecheck.Parse(input, clk.Location())
			if err != nil {
				return err
			}
			cutoff := agecheck.Threshold(months, clk)
			older := agecheck.IsTimeOlderThan(t, months, clk)

			w := cmd.OutOrStdout()
			PrintLabelValue(w, "Date", t.Format(time.RFC3339))
			PrintLabelValue(w, "Cutoff", cutoff.Format(time.RFC3339))
			msg := fmt.Sprintf("older than %s", PrintCount(months, "month", "months"))
			if older {
				PrintSuccess(w, "Yes, "+msg)
			} else {
				PrintInfo(w, "No, not "+msg)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&months, "months", "m", 0, "threshold in months (default from config)")
	return cmd
}
