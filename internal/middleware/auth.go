package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/keepsake/internal/logger"
	"github.com/weiwangfds/keepsake/internal/response"
)

// AdminAuth 校验 Authorization: Bearer {token}。未配置 token 时拒绝所有请求
func AdminAuth(token string) gin.HandlerFunc {
	if token == "" {
		logger.Warnf("未配置 admin.token，管理接口不可用")
	}
	expected := []byte(token)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		given, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			// EventSource 不能设置请求头，允许通过查询参数传递
			given = c.Query("token")
		}

		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(given), expected) != 1 {
			logger.WithField("client_ip", c.ClientIP()).Warn("管理接口鉴权失败")
			response.Unauthorized(c)
			return
		}
		c.Next()
	}
}
