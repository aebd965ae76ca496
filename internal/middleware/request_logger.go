package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// bodyCapture 捕获响应体
type bodyCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
	max  int
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if remain := w.max - w.body.Len(); remain > 0 {
		if len(b) > remain {
			w.body.Write(b[:remain])
		} else {
			w.body.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// RequestLoggerConfig 调试用请求日志配置
type RequestLoggerConfig struct {
	Enabled     bool
	SkipPaths   []string
	MaxBodySize int
}

// DefaultRequestLoggerConfig 默认只在 gin debug 模式下启用
func DefaultRequestLoggerConfig() RequestLoggerConfig {
	return RequestLoggerConfig{
		Enabled:     gin.Mode() == gin.DebugMode,
		SkipPaths:   []string{"/health", "/favicon.ico"},
		MaxBodySize: 64 * 1024,
	}
}

// RequestLogger 记录请求体和响应体，用于调试。
// 实时推送（/stream）与文件上传不记录请求体和响应体
func RequestLogger(cfg RequestLoggerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok || isStream(c) {
			c.Next()
			return
		}

		start := time.Now()
		var requestBody interface{}
		if !isMultipart(c) && c.Request.Body != nil {
			requestBody = readRequestBody(c, cfg.MaxBodySize)
		}

		writer := &bodyCapture{ResponseWriter: c.Writer, body: &bytes.Buffer{}, max: cfg.MaxBodySize}
		c.Writer = writer

		c.Next()

		fields := logrus.Fields{
			"type":        "request_log",
			"request_id":  c.GetString("request_id"),
			"method":      c.Request.Method,
			"path":        path,
			"status_code": writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if requestBody != nil {
			fields["body"] = requestBody
		}
		if writer.body.Len() > 0 {
			fields["response_body"] = decodeBody(writer.body.Bytes())
		}
		logger.WithFields(fields).Debugf("[REQUEST_LOG] %s %s - %d", c.Request.Method, path, writer.Status())
	}
}

func isStream(c *gin.Context) bool {
	return strings.HasSuffix(c.Request.URL.Path, "/stream") ||
		strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// readRequestBody 读取请求体后重置，后续处理器仍可读取
func readRequestBody(c *gin.Context, maxSize int) interface{} {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(maxSize)+1))
	if err != nil {
		return map[string]string{"error": "failed to read request body"}
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
	if len(body) > maxSize {
		body = body[:maxSize]
	}
	if len(body) == 0 {
		return nil
	}
	return decodeBody(body)
}

func decodeBody(body []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return string(body)
}
