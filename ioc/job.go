package ioc

import (
	"context"

	"go.uber.org/zap"

	"rscreport/internal/app"
	"rscreport/internal/job"
)

// InitScheduler 构建定时任务调度器。
func InitScheduler(cfg app.Config, svc *app.Service, logger *zap.Logger) *job.Scheduler {
	runFn := func(ctx context.Context, j app.ReportJob) error {
		_, err := svc.RunReport(ctx, j.Name)
		return err
	}
	return job.NewScheduler(cfg, runFn, logger)
}
