package cli

import (
	"CitibikeDashboard/src/processor"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print head, columns, date range and ride count stats of an output csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return processor.Inspect(args[0], a.out)
		},
	}
}
