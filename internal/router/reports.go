package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rscreport/internal/app"
)

// ReportHandler 负责处理报表相关的 HTTP 请求。
type ReportHandler struct {
	service *app.Service
	logger  *zap.Logger
}

// NewReportHandler 构建一个新的 ReportHandler。
func NewReportHandler(service *app.Service, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

// RegisterRoutes 将报表路由注册到给定的路由组。
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.handleList)
	rg.POST("/:name/run", h.handleRun)
}

type runResponse struct {
	Report string `json:"report"`
	Rows   int    `json:"rows"`
}

func (h *ReportHandler) handleList(c *gin.Context) {
	c.JSON(200, gin.H{"reports": app.ReportNames()})
}

func (h *ReportHandler) handleRun(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(400, gin.H{"error": "report name is empty"})
		return
	}
	result, err := h.service.RunReport(c.Request.Context(), name)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("run report failed", zap.String("report", name), zap.Error(err))
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, runResponse{Report: result.Name, Rows: result.Rows})
}
