// Package handler HTTP 处理器
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/keepsake/internal/database"
	"github.com/weiwangfds/keepsake/internal/response"
	"github.com/weiwangfds/keepsake/internal/service/lovenote"
	"github.com/weiwangfds/keepsake/internal/service/media"
)

// ContentHandler 公开的条目与情书读取接口
type ContentHandler struct {
	media media.MediaService
	notes lovenote.LoveNoteService
}

// NewContentHandler 创建内容处理器实例
func NewContentHandler(mediaService media.MediaService, noteService lovenote.LoveNoteService) *ContentHandler {
	return &ContentHandler{media: mediaService, notes: noteService}
}

// ListMedia 获取全部条目
// @Summary 获取条目列表
// @Description 按创建时间倒序返回全部图库与时间线条目
// @Tags 内容
// @Produce json
// @Success 200 {object} response.Response{data=[]database.MediaEntry} "获取成功"
// @Router /api/v1/media [get]
func (h *ContentHandler) ListMedia(c *gin.Context) {
	entries, err := h.media.ListEntries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}

// StreamMedia 实时推送条目列表
// @Summary 订阅条目列表
// @Description SSE，每次变更推送完整列表，事件名 media
// @Tags 内容
// @Produce text/event-stream
// @Router /api/v1/media/stream [get]
func (h *ContentHandler) StreamMedia(c *gin.Context) {
	streamUpdates[[]database.MediaEntry](c, "media", h.media.Subscribe, nil)
}

// ListLoveNotes 获取全部情书
// @Summary 获取情书列表
// @Description 按创建时间倒序返回全部情书
// @Tags 内容
// @Produce json
// @Success 200 {object} response.Response{data=[]database.LoveNote} "获取成功"
// @Router /api/v1/love-notes [get]
func (h *ContentHandler) ListLoveNotes(c *gin.Context) {
	notes, err := h.notes.ListNotes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, notes)
}

// StreamLoveNotes 实时推送情书列表
// @Summary 订阅情书列表
// @Description SSE，每次变更推送完整列表，事件名 notes
// @Tags 内容
// @Produce text/event-stream
// @Router /api/v1/love-notes/stream [get]
func (h *ContentHandler) StreamLoveNotes(c *gin.Context) {
	streamUpdates[[]database.LoveNote](c, "notes", h.notes.Subscribe, nil)
}
