package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"CitibikeDashboard/src/config"
	"CitibikeDashboard/src/processor"
	"CitibikeDashboard/src/storage"

	"go.uber.org/zap"
)

var errRunInProgress = errors.New("previous run still in progress")

// runner 保证同一时间只有一次运行在写输出文件
type runner struct {
	mu       sync.Mutex
	pipeline *processor.Pipeline
	logger   *storage.Logger
	cfg      *config.Config
}

func newRunner(a *app, opts processor.Options) *runner {
	return &runner{
		pipeline: processor.NewPipeline(opts, a.logger),
		logger:   a.logger,
		cfg:      a.cfg,
	}
}

// run 上一次运行还没结束时直接跳过
func (r *runner) run(ctx context.Context, trigger string) error {
	if !r.mu.TryLock() {
		r.logger.Warning("上一次运行尚未结束, 本次跳过", zap.String("trigger", trigger))
		return errRunInProgress
	}
	defer r.mu.Unlock()

	t1 := time.Now()
	res, err := r.pipeline.Run(ctx)
	if err != nil {
		r.logger.Error("运行失败", zap.String("trigger", trigger), zap.Error(err))
		return err
	}
	r.logger.Info("运行完成",
		zap.String("trigger", trigger),
		zap.String("run_id", res.RunID),
		zap.Int("daily_rows", res.DailyRows),
		zap.Int("sample_rows", res.SampleRows),
		zap.Duration("elapsed", time.Since(t1)))
	r.logger.CheckRotate(r.cfg)
	return nil
}

// reopenOnHangup 收到SIGHUP时重新打开日志文件, 配合外部的日志切割
func (a *app) reopenOnHangup(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			if err := a.logger.Reopen(a.cfg.LogName); err != nil {
				a.logger.Error("重新打开日志文件失败", zap.Error(err))
				continue
			}
			a.logger.Info("Received signal: "+sig.String()+", log file reopened", zap.String("file", a.cfg.LogName))
		}
	}
}
