package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/opskit/internal/columns"
)

func newColumnsCmd() *cobra.Command {
	var widthsOnly bool

	cmd := &cobra.Command{
		Use:   "columns [file]",
		Short: "Measure and realign a pipe-delimited ASCII table",
		Long: `Read a table drawn with "+---+" borders and "|" separated cells from a
file or stdin and print it with every column padded to its widest cell.
With --widths only the per-column maximum lengths are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			in, err := openInput(cmd, name)
			if err != nil {
				return err
			}
			defer in.Close()

			tbl, err := columns.Parse(in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if widthsOnly {
				fmt.Fprintln(w, "Column max lengths:")
				for i, n := range tbl.Widths() {
					fmt.Fprintf(w, "  Column %d: %d\n", i, n)
				}
				return nil
			}
			fmt.Fprintln(w, tbl.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&widthsOnly, "widths", false, "print only the maximum length of each column")
	return cmd
}
