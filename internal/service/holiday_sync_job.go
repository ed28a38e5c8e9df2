package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const holidaySyncTimeout = 2 * time.Minute

// HolidaySyncJob 按 cron 表达式周期执行公休日同步
type HolidaySyncJob struct {
	cron   *cron.Cron
	svc    HolidayService
	logger *zap.Logger
}

// NewHolidaySyncJob 创建定时任务，spec 为标准 5 段 cron 表达式
func NewHolidaySyncJob(svc HolidayService, spec string, loc *time.Location, logger *zap.Logger) (*HolidaySyncJob, error) {
	if loc == nil {
		loc = time.UTC
	}
	j := &HolidaySyncJob{
		cron:   cron.New(cron.WithLocation(loc)),
		svc:    svc,
		logger: logger,
	}
	// 上一次尚未结束时跳过本次
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(j.run))
	if _, err := j.cron.AddJob(spec, wrapped); err != nil {
		return nil, fmt.Errorf("无效的同步周期 %q: %w", spec, err)
	}
	return j, nil
}

// Start 启动调度（非阻塞）
func (j *HolidaySyncJob) Start() {
	j.cron.Start()
	j.logger.Info("公休日同步任务已启动")
}

// Stop 停止调度并等待正在执行的同步结束
func (j *HolidaySyncJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.logger.Warn("等待公休日同步结束超时")
	}
}

func (j *HolidaySyncJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), holidaySyncTimeout)
	defer cancel()

	if _, err := j.svc.Sync(ctx); err != nil {
		j.logger.Error("定时公休日同步失败", zap.Error(err))
	}
}
