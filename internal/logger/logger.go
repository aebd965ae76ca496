// Package logger 封装 logrus，提供全局日志实例
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/weiwangfds/keepsake/config"
)

const timestampFormat = "2006-01-02 15:04:05"

// Logger 全局日志实例
var Logger *logrus.Logger

// DefaultConfig 返回默认日志配置
func DefaultConfig() config.LogConfig {
	return config.LogConfig{
		Level:  "info",
		Format: "text",
		Output: "console",
	}
}

// Init 初始化日志系统
func Init(cfg config.LogConfig) error {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		l.Warnf("无效的日志级别 '%s'，使用 info", cfg.Level)
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	}

	out, err := openOutput(cfg)
	if err != nil {
		return err
	}
	l.SetOutput(out)

	Logger = l
	redirectGin(l)
	return nil
}

// openOutput 根据配置返回日志输出: console, file, both
func openOutput(cfg config.LogConfig) (io.Writer, error) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	if cfg.Output == "file" {
		return f, nil
	}
	return io.MultiWriter(os.Stdout, f), nil
}

// redirectGin 将 gin 的默认输出重定向到 logrus
func redirectGin(l *logrus.Logger) {
	w := &ginWriter{logger: l}
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w
}

type ginWriter struct {
	logger *logrus.Logger
}

func (w *ginWriter) Write(p []byte) (int, error) {
	w.logger.Info(string(p))
	return len(p), nil
}

// GetLogger 获取日志实例，未初始化时按默认配置初始化
func GetLogger() *logrus.Logger {
	if Logger == nil {
		if err := Init(DefaultConfig()); err != nil {
			return logrus.StandardLogger()
		}
	}
	return Logger
}

func Debugf(format string, args ...interface{}) { GetLogger().Debugf(format, args...) }

func Info(args ...interface{}) { GetLogger().Info(args...) }

func Infof(format string, args ...interface{}) { GetLogger().Infof(format, args...) }

func Warnf(format string, args ...interface{}) { GetLogger().Warnf(format, args...) }

func Error(args ...interface{}) { GetLogger().Error(args...) }

func Errorf(format string, args ...interface{}) { GetLogger().Errorf(format, args...) }

func Fatalf(format string, args ...interface{}) { GetLogger().Fatalf(format, args...) }

// WithField 添加字段到日志条目
func WithField(key string, value interface{}) *logrus.Entry {
	return GetLogger().WithField(key, value)
}

// WithFields 添加多个字段到日志条目
func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}
