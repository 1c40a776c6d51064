package cli

import (
	"fmt"

	"CitibikeDashboard/src/processor"

	"github.com/spf13/cobra"
)

func newReduceCmd(a *app) *cobra.Command {
	pf := &pipelineFlags{}
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Write the daily aggregate and the reduced sample once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(cmd, pf)
			if err != nil {
				return err
			}
			res, err := processor.NewPipeline(opts, a.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.CheckRotate(a.cfg)

			fmt.Fprintf(a.out, "✓ Daily aggregate: %s (%d days)\n", res.Outputs.Daily, res.DailyRows)
			fmt.Fprintf(a.out, "✓ Reduced sample: %s (%d of %d rows, p=%g, seed=%d)\n",
				res.Outputs.Reduced, res.SampleRows, res.RowsRead-res.RowsDropped, res.Fraction, res.Seed)
			if res.Outputs.DailyXLSX != "" {
				fmt.Fprintf(a.out, "✓ Daily xlsx: %s\n", res.Outputs.DailyXLSX)
			}
			if res.Outputs.Top20 != "" {
				fmt.Fprintf(a.out, "✓ Top stations: %s\n", res.Outputs.Top20)
			}
			if res.RowsDropped > 0 {
				fmt.Fprintf(a.out, "⚠ Dropped %d rows with unparseable timestamps\n", res.RowsDropped)
			}
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}
