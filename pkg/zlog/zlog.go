package zlog

import (
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func init() {
	logger = newLogger("", zapcore.InfoLevel)
}

// Init 重建全局 logger；logPath 为空时只输出到 stdout
func Init(logPath string, level string) {
	old := logger
	logger = newLogger(strings.TrimSpace(logPath), parseLevel(level))
	if old != nil {
		_ = old.Sync()
	}
}

func newLogger(logPath string, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level),
	}
	if logPath != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func L() *zap.Logger { return logger }

func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { logger.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { logger.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }

func Fatal(msg string, fields ...zap.Field) { logger.Fatal(msg, fields...) }

func Sync() error { return logger.Sync() }
