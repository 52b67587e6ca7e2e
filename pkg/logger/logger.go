package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gradcheck/backend/config"
)

// serviceName 写入每条日志的 service 字段
const serviceName = "gradcheck"

// NewLogger 根据配置初始化 Zap 日志实例
// format=console 时为彩色开发格式，其余一律 JSON
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	zapCfg.Sampling = nil // worker 日志按任务计，不做采样
	if strings.EqualFold(cfg.Format, "console") {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{"service": serviceName}
	if outputs := nonEmpty(cfg.Outputs); len(outputs) > 0 {
		zapCfg.OutputPaths = outputs
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}
	return logger, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
