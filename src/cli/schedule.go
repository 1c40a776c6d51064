package cli

import (
	"fmt"
	"time"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScheduleCmd(a *app) *cobra.Command {
	pf := &pipelineFlags{}
	df := &daemonFlags{}
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Re-run the reduction at a fixed interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(cmd, pf)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = time.Duration(a.cfg.Schedule.Interval)
			}
			if interval <= 0 {
				return fmt.Errorf("schedule interval must be positive, got %v", interval)
			}

			ctx := cmd.Context()
			df.start(ctx, a)
			r := newRunner(a, opts)

			c := cron.New()
			cronSpec := fmt.Sprintf("@every %s", interval)
			err = c.AddFunc(cronSpec, func() {
				a.logger.Info(fmt.Sprintf("开始定时运行(间隔: %v)...", cronSpec))
				_ = r.run(ctx, "schedule")
			})
			if err != nil {
				return fmt.Errorf("创建定时任务失败: %w", err)
			}

			if df.runNow {
				_ = r.run(ctx, "startup")
			}
			c.Start()
			defer c.Stop()

			a.logger.Info(fmt.Sprintf("定时服务已启动(间隔: %v), 按Ctrl+C退出", interval), zap.String("input", opts.InputPath))
			<-ctx.Done()
			a.logger.Info("定时服务已停止")
			return nil
		},
	}
	pf.register(cmd)
	df.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between runs (default from config)")
	return cmd
}
