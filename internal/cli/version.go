package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbit-drive/orbit/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "orbit %s (built %s)\n", version.Version, version.BuildTime)
			return nil
		},
	}
}
