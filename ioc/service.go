package ioc

import (
	"go.uber.org/zap"

	"rscreport/internal/app"
)

// InitAppService 构建报表服务。
func InitAppService(cfg app.Config, logger *zap.Logger) (*app.Service, error) {
	return app.NewService(cfg, logger)
}
