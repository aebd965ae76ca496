package handler

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/keepsake/internal/admin"
	"github.com/weiwangfds/keepsake/internal/logger"
	"github.com/weiwangfds/keepsake/internal/response"
	"github.com/weiwangfds/keepsake/internal/service/lovenote"
	"github.com/weiwangfds/keepsake/internal/service/media"
)

// AdminHandler 管理面板接口
type AdminHandler struct {
	coordinator *admin.Coordinator
}

// NewAdminHandler 创建管理面板处理器实例
func NewAdminHandler(coordinator *admin.Coordinator) *AdminHandler {
	return &AdminHandler{coordinator: coordinator}
}

// Snapshot 获取管理面板当前数据
// @Summary 管理面板快照
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=admin.Snapshot} "获取成功"
// @Router /api/v1/admin/snapshot [get]
func (h *AdminHandler) Snapshot(c *gin.Context) {
	response.Success(c, h.coordinator.Snapshot())
}

// Stream 实时推送管理面板数据
// @Summary 订阅管理面板
// @Description SSE，事件名 admin，任一集合变化都会推送完整快照
// @Tags 管理
// @Produce text/event-stream
// @Security BearerAuth
// @Router /api/v1/admin/stream [get]
func (h *AdminHandler) Stream(c *gin.Context) {
	streamUpdates[admin.Snapshot](c, "admin", h.coordinator.Watch, nil)
}

// SubmitEntry 新增条目
// @Summary 新增条目
// @Description 支持 JSON 或 multipart 表单；表单中带 file 时先上传，再用返回地址作为条目 url
// @Tags 管理
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param entry body media.CreateEntryRequest false "条目内容"
// @Param file formData file false "媒体文件"
// @Router /api/v1/admin/entries [post]
func (h *AdminHandler) SubmitEntry(c *gin.Context) {
	var form media.CreateEntryRequest
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if form.MediaType != "" && !form.MediaType.Valid() {
		response.BadRequest(c, "unknown mediaType: "+string(form.MediaType))
		return
	}

	var upload *admin.Upload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if fh, err := c.FormFile("file"); err == nil {
			u, closeFn, err := openUpload(fh)
			if err != nil {
				response.BadRequest(c, err.Error())
				return
			}
			defer closeFn()
			upload = &u
		}
	}

	respondNotice(c, h.coordinator.SubmitEntry(c.Request.Context(), form, upload), nil)
}

// Upload 单独上传文件
// @Summary 上传文件
// @Tags 管理
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "媒体文件"
// @Success 200 {object} response.Response{data=uploadResponse} "上传成功"
// @Router /api/v1/admin/uploads [post]
func (h *AdminHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	u, closeFn, err := openUpload(fh)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer closeFn()

	url, n := h.coordinator.UploadFile(c.Request.Context(), u)
	if !n.Success {
		respondNotice(c, n, nil)
		return
	}
	respondNotice(c, n, uploadResponse{URL: url})
}

type uploadResponse struct {
	URL string `json:"url"`
}

// DeleteEntry 删除条目
// @Summary 删除条目
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "条目ID"
// @Router /api/v1/admin/entries/{id} [delete]
func (h *AdminHandler) DeleteEntry(c *gin.Context) {
	respondNotice(c, h.coordinator.DeleteEntry(c.Request.Context(), c.Param("id")), nil)
}

// SubmitNote 新增情书
// @Summary 新增情书
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param note body lovenote.AddNoteRequest true "情书内容"
// @Router /api/v1/admin/notes [post]
func (h *AdminHandler) SubmitNote(c *gin.Context) {
	var form lovenote.AddNoteRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	respondNotice(c, h.coordinator.SubmitNote(c.Request.Context(), form), nil)
}

// TogglePin 切换情书置顶
// @Summary 切换置顶
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "情书ID"
// @Router /api/v1/admin/notes/{id}/pin [post]
func (h *AdminHandler) TogglePin(c *gin.Context) {
	respondNotice(c, h.coordinator.TogglePinned(c.Request.Context(), c.Param("id")), nil)
}

// DeleteNote 删除情书
// @Summary 删除情书
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "情书ID"
// @Router /api/v1/admin/notes/{id} [delete]
func (h *AdminHandler) DeleteNote(c *gin.Context) {
	respondNotice(c, h.coordinator.DeleteNote(c.Request.Context(), c.Param("id")), nil)
}

// openUpload 打开表单文件，调用方负责执行返回的关闭函数
func openUpload(fh *multipart.FileHeader) (admin.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return admin.Upload{}, nil, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	closeFn := func() {
		if err := f.Close(); err != nil {
			logger.Warnf("关闭上传文件失败: %v", err)
		}
	}
	return admin.Upload{
		FileName:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}, closeFn, nil
}
