package ioc

import (
	"go.uber.org/zap"

	"rscreport/internal/logging"
)

// InitLogger 构建全局 logger。
func InitLogger() (*zap.Logger, error) {
	return logging.New()
}
