package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 返回 rscreport 统一使用的 zap logger，控制台输出，ISO8601 时间戳。
func New() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
