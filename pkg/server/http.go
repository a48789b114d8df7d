package server

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"rscreport/internal/app"
	"rscreport/internal/job"
	"rscreport/internal/metrics"
)

// HTTPServer 封装 HTTP 服务运行所需的依赖。
type HTTPServer struct {
	Engine  *gin.Engine
	Logger  *zap.Logger
	Config  app.Config
	Service *app.Service
	Job     *job.Scheduler
}

// NewHTTPServer 构建 HTTPServer。
func NewHTTPServer(engine *gin.Engine, logger *zap.Logger, cfg app.Config, svc *app.Service, scheduler *job.Scheduler) *HTTPServer {
	metrics.MustRegister(prometheus.DefaultRegisterer)
	return &HTTPServer{
		Engine:  engine,
		Logger:  logger,
		Config:  cfg,
		Service: svc,
		Job:     scheduler,
	}
}

// Run 启动 HTTP 服务及报表调度任务。
func (s *HTTPServer) Run(ctx context.Context) error {
	listen := strings.TrimSpace(s.Config.HTTP.Listen)
	if listen == "" {
		listen = ":8080"
	}

	cancelJob := func() {}
	if s.Job != nil {
		cancelJob = s.Job.Start(ctx)
		defer cancelJob()
	}

	if s.Logger != nil {
		s.Logger.Info("http server starting", zap.String("listen", listen))
	}
	return s.Engine.Run(listen)
}

// Shutdown 释放资源。
func (s *HTTPServer) Shutdown(ctx context.Context) {
	if s.Service != nil {
		if err := s.Service.Close(ctx); err != nil && s.Logger != nil {
			s.Logger.Warn("close app service failed", zap.Error(err))
		}
	}
	if s.Logger != nil {
		_ = s.Logger.Sync()
	}
}
