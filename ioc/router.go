package ioc

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rscreport/internal/app"
	"rscreport/internal/router"
)

// InitReportHandler 构建报表 HTTP 处理器。
func InitReportHandler(svc *app.Service, logger *zap.Logger) *router.ReportHandler {
	return router.NewReportHandler(svc, logger)
}

// InitGinEngine 构建 gin 引擎。
func InitGinEngine(reportHandler *router.ReportHandler) *gin.Engine {
	return router.NewEngine(reportHandler)
}
