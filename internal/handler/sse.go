package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// heartbeatInterval SSE 心跳间隔，防止代理断开空闲连接
var heartbeatInterval = 15 * time.Second

// streamUpdates 把订阅转成 SSE 流。
// subscribe 注册回调并返回取消函数，连接断开时取消订阅；
// alive 在每次心跳时调用，返回 false 时结束流
func streamUpdates[T any](c *gin.Context, event string, subscribe func(func(T)) func(), alive func() bool) {
	updates := make(chan T, 1)
	unsubscribe := subscribe(func(v T) {
		// 只保留最新一份，旧的还没发出去就丢弃
		for {
			select {
			case updates <- v:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	// 先发出响应头，客户端不必等到第一条事件
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case v := <-updates:
			c.SSEvent(event, v)
			return true
		case <-ticker.C:
			if alive != nil && !alive() {
				return false
			}
			c.SSEvent("ping", time.Now().UnixMilli())
			return true
		}
	})
}
