package cli

import (
	"fmt"
	"text/tabwriter"

	"CitibikeDashboard/src/processor"

	"github.com/spf13/cobra"
)

func newTop20Cmd(a *app) *cobra.Command {
	pf := &pipelineFlags{}
	var topN int
	cmd := &cobra.Command{
		Use:   "top20",
		Short: "Count rides per start station and write the busiest ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("top-n") {
				a.dcfg.TopN = topN
			}
			opts, err := a.options(cmd, pf)
			if err != nil {
				return err
			}
			top, err := processor.NewPipeline(opts, a.logger).RunTopStations(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tSTATION\tRIDES")
			for i, s := range top {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, s.Station, s.Count)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✓ Saved: %s\n", opts.Top20Path)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().IntVar(&topN, "top-n", 20, "number of stations to keep")
	return cmd
}
