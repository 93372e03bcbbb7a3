package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/opskit/internal/dhcp"
)

func newDHCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dhcp <file>",
		Short: "Generate dhcpd host entries from MAC/IP/name lines",
		Long: `Read lines of the form

  A1:B2:C3:D4:E5:F6   192.168.0.254    Amazon Echo Spot Kitchen

and print one ISC dhcpd "host" declaration per line. Use "-" for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			hosts, err := dhcp.Parse(in)
			if err != nil {
				return err
			}
			return dhcp.Render(cmd.OutOrStdout(), hosts)
		},
	}
}
