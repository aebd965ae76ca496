package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/keepsake/internal/response"
)

// Counter 返回当前订阅数
type Counter interface {
	Listeners() int
}

// HealthHandler 健康检查
type HealthHandler struct {
	media    Counter
	notes    Counter
	sessions func() int
}

// NewHealthHandler sessions 为空时不统计展示板会话
func NewHealthHandler(media, notes Counter, sessions func() int) *HealthHandler {
	return &HealthHandler{media: media, notes: notes, sessions: sessions}
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	data := gin.H{
		"status":         "ok",
		"mediaListeners": h.media.Listeners(),
		"notesListeners": h.notes.Listeners(),
	}
	if h.sessions != nil {
		data["boardSessions"] = h.sessions()
	}
	response.Success(c, data)
}
