package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"CitibikeDashboard/src/config"
	"CitibikeDashboard/src/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	configFile     = "config.json"
	dataConfigFile = "dataconfig.json"
)

// app 各子命令共享的配置和日志
type app struct {
	configDir string
	logFile   string
	logLevel  string

	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger
	out    io.Writer
}

// newRootCmd 创建 citibike 根命令; 命令结束后由调用方关闭 app
func newRootCmd() (*cobra.Command, *app) {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:           "citibike",
		Short:         "Reduce the merged Citi Bike + weather dataset for the dashboard",
		Long:          `citibike reads the merged trip and weather CSV, writes a daily aggregate (ride count and mean temperature per day) and a reproducible Bernoulli sample of the trips for plotting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.setup()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configDir, "config-dir", "./config", "directory holding config.json and dataconfig.json")
	f.StringVar(&a.logFile, "log-file", "", "log file (overrides log_name in config)")
	f.StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (overrides log_level in config)")

	root.AddCommand(
		newReduceCmd(a),
		newTop20Cmd(a),
		newInspectCmd(a),
		newWatchCmd(a),
		newScheduleCmd(a),
	)
	return root, a
}

// Execute 由 main 调用, SIGINT/SIGTERM 取消正在进行的运行
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil && a.logger != nil {
		// 终端上只打印下面的 ✗ Error 一行
		a.logger.Record(storage.FATAL, "命令执行失败", zap.Error(err))
	}
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

// setup 加载配置并创建日志; 配置文件中的值被命令行参数覆盖
func (a *app) setup() error {
	cfg, dcfg, err := config.LoadConfig(a.configDir, configFile, dataConfigFile)
	if err != nil {
		return err
	}
	// 复制一份, 命令行覆盖不影响共享的配置实例
	c := *cfg
	d := *dcfg
	if a.logFile != "" {
		c.LogName = a.logFile
	}
	if a.logLevel != "" {
		c.LogLevel = a.logLevel
	}
	a.cfg, a.dcfg = &c, &d

	logger, err := storage.NewLogger(c.LogName, c.LogLevel)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}
