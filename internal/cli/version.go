package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stammbaum/pkg/buildinfo"
)

// versionCommand creates the version command printing build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			return nil
		},
	}
}
