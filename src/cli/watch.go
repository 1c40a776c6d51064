package cli

import (
	"context"
	"fmt"
	"time"

	"CitibikeDashboard/src/datasource/file"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// daemonFlags watch和schedule共用
type daemonFlags struct {
	logAddr string
	runNow  bool
}

func (df *daemonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&df.logAddr, "log-addr", "", "serve the live log on http://ADDR/logs, e.g. :8080")
	cmd.Flags().BoolVar(&df.runNow, "run-now", true, "run once at startup before waiting")
}

// start 启动日志流和SIGHUP处理
func (df *daemonFlags) start(ctx context.Context, a *app) {
	if df.logAddr != "" {
		go serveLogs(ctx, df.logAddr, a.logger)
	}
	go a.reopenOnHangup(ctx)
}

func newWatchCmd(a *app) *cobra.Command {
	pf := &pipelineFlags{}
	df := &daemonFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the reduction whenever the merged input file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(cmd, pf)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = time.Duration(a.cfg.Watch.Debounce)
			}

			ctx := cmd.Context()
			monitor, err := file.NewFileMonitor(opts.InputPath, debounce)
			if err != nil {
				return fmt.Errorf("watch %s: %w", opts.InputPath, err)
			}
			defer monitor.Close()

			df.start(ctx, a)
			r := newRunner(a, opts)
			if df.runNow {
				_ = r.run(ctx, "startup")
			}

			a.logger.Info(fmt.Sprintf("文件监控已启动(等待: %v), 按Ctrl+C退出", debounce), zap.String("input", opts.InputPath))
			err = monitor.Watch(ctx, func(path string) {
				a.logger.Info("输入文件已更新", zap.String("input", path))
				_ = r.run(ctx, "watch")
			})
			a.logger.Info("文件监控已停止")
			return err
		},
	}
	pf.register(cmd)
	df.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period after the last change before running (default from config)")
	return cmd
}
