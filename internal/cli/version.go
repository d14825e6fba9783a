package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsrec/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("newsrank version %s\n", version.String())
		},
	}
}
