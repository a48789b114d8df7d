package job

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"rscreport/internal/app"
)

// RunFunc 执行一份报表任务。
type RunFunc func(ctx context.Context, job app.ReportJob) error

// Scheduler 按各报表任务配置的 cron 表达式定时生成报表。
type Scheduler struct {
	jobs    []app.ReportJob
	logger  *zap.Logger
	cron    *cron.Cron
	runFunc RunFunc
	parent  context.Context
	mu      sync.Mutex
	running map[string]bool
}

// NewScheduler 根据配置构建调度器，只登记配置了 cron 的任务。
func NewScheduler(cfg app.Config, runFunc RunFunc, logger *zap.Logger) *Scheduler {
	var jobs []app.ReportJob
	for _, j := range cfg.Reports {
		if strings.TrimSpace(j.Cron) != "" {
			jobs = append(jobs, j)
		}
	}
	return &Scheduler{
		jobs:    jobs,
		logger:  logger,
		runFunc: runFunc,
		running: make(map[string]bool),
	}
}

// Start 启动调度器，返回用于停止任务的函数。
func (s *Scheduler) Start(parent context.Context) context.CancelFunc {
	if s == nil || len(s.jobs) == 0 {
		return func() {}
	}
	s.parent = parent
	c := cron.New()
	for _, j := range s.jobs {
		j := j
		id, err := c.AddFunc(j.Cron, func() { s.runOnce(j) })
		if err != nil {
			if s.logger != nil {
				s.logger.Error("failed to register cron job",
					zap.String("report", j.Name),
					zap.String("cron", j.Cron),
					zap.Error(err))
			}
			continue
		}
		if s.logger != nil {
			entry := c.Entry(id)
			s.logger.Info("report job scheduled",
				zap.String("report", j.Name),
				zap.String("cron", j.Cron),
				zap.Time("next", entry.Next))
		}
	}
	s.cron = c
	c.Start()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			ctx := s.cron.Stop()
			<-ctx.Done()
			if s.logger != nil {
				s.logger.Info("report scheduler stopped")
			}
		})
	}

	go func() {
		<-parent.Done()
		stop()
	}()

	return stop
}

func (s *Scheduler) runOnce(j app.ReportJob) {
	if s.runFunc == nil {
		if s.logger != nil {
			s.logger.Warn("run function not configured")
		}
		return
	}
	s.mu.Lock()
	if s.running[j.Name] {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("previous run still in progress, skip current schedule",
				zap.String("report", j.Name))
		}
		return
	}
	s.running[j.Name] = true
	s.mu.Unlock()

	start := time.Now()
	runCtx := context.Background()
	if s.parent != nil {
		select {
		case <-s.parent.Done():
			if s.logger != nil {
				s.logger.Info("scheduler context cancelled, skip run")
			}
			s.mu.Lock()
			s.running[j.Name] = false
			s.mu.Unlock()
			return
		default:
		}
		runCtx = s.parent
	}
	err := s.runFunc(runCtx, j)
	elapsed := time.Since(start)
	if s.logger != nil {
		if err != nil {
			s.logger.Error("scheduled report failed",
				zap.String("report", j.Name),
				zap.Duration("duration", elapsed),
				zap.Error(err))
		} else {
			s.logger.Info("scheduled report completed",
				zap.String("report", j.Name),
				zap.Duration("duration", elapsed))
		}
	}
	s.mu.Lock()
	s.running[j.Name] = false
	s.mu.Unlock()
}
