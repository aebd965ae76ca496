package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/keepsake/internal/database"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/notesboard"
	"github.com/weiwangfds/keepsake/internal/response"
)

// BoardHandler 情书展示板会话接口
type BoardHandler struct {
	registry *notesboard.Registry
}

// NewBoardHandler 创建展示板处理器实例
func NewBoardHandler(registry *notesboard.Registry) *BoardHandler {
	return &BoardHandler{registry: registry}
}

// noteInput 新增或编辑情书的请求体
type noteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Mood     string `json:"mood"`
	IsPinned bool   `json:"isPinned"`
}

type mountResponse struct {
	SessionID string          `json:"sessionId"`
	View      notesboard.View `json:"view"`
}

// Mount 挂载展示板
// @Summary 挂载情书展示板
// @Description 创建展示板会话并订阅情书；首次回调前状态为 loading
// @Tags 展示板
// @Produce json
// @Success 201 {object} response.Response{data=mountResponse} "挂载成功"
// @Router /api/v1/boards [post]
func (h *BoardHandler) Mount(c *gin.Context) {
	id, board := h.registry.Mount()
	response.Created(c, "success", mountResponse{SessionID: id, View: board.View()})
}

// View 获取展示板视图
// @Summary 获取展示板视图
// @Tags 展示板
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} response.Response{data=notesboard.View} "获取成功"
// @Failure 404 {object} response.Response "会话不存在"
// @Router /api/v1/boards/{id} [get]
func (h *BoardHandler) View(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}
	response.Success(c, board.View())
}

// Stream 实时推送展示板视图
// @Summary 订阅展示板视图
// @Description SSE，事件名 board；会话被卸载或回收时结束
// @Tags 展示板
// @Produce text/event-stream
// @Param id path string true "会话ID"
// @Router /api/v1/boards/{id}/stream [get]
func (h *BoardHandler) Stream(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}
	id := c.Param("id")
	streamUpdates[notesboard.View](c, "board", board.Watch, func() bool {
		return h.registry.Touch(id)
	})
}

// AddNote 通过展示板新增情书
// @Summary 新增情书
// @Description 远端模式写入存储；示例模式只修改本会话的本地副本
// @Tags 展示板
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param note body noteInput true "情书内容"
// @Router /api/v1/boards/{id}/notes [post]
func (h *BoardHandler) AddNote(c *gin.Context) {
	h.dispatch(c, notesboard.MutationAdd, "", true)
}

// EditNote 通过展示板编辑情书
// @Summary 编辑情书
// @Tags 展示板
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param noteID path string true "情书ID"
// @Param note body noteInput true "情书内容"
// @Router /api/v1/boards/{id}/notes/{noteID} [put]
func (h *BoardHandler) EditNote(c *gin.Context) {
	h.dispatch(c, notesboard.MutationEdit, c.Param("noteID"), true)
}

// TogglePin 通过展示板切换置顶
// @Summary 切换置顶
// @Tags 展示板
// @Produce json
// @Param id path string true "会话ID"
// @Param noteID path string true "情书ID"
// @Router /api/v1/boards/{id}/notes/{noteID}/pin [post]
func (h *BoardHandler) TogglePin(c *gin.Context) {
	h.dispatch(c, notesboard.MutationTogglePin, c.Param("noteID"), false)
}

// DeleteNote 通过展示板删除情书
// @Summary 删除情书
// @Tags 展示板
// @Produce json
// @Param id path string true "会话ID"
// @Param noteID path string true "情书ID"
// @Router /api/v1/boards/{id}/notes/{noteID} [delete]
func (h *BoardHandler) DeleteNote(c *gin.Context) {
	h.dispatch(c, notesboard.MutationDelete, c.Param("noteID"), false)
}

// Unmount 卸载展示板
// @Summary 卸载展示板
// @Tags 展示板
// @Param id path string true "会话ID"
// @Success 204 "已卸载"
// @Router /api/v1/boards/{id} [delete]
func (h *BoardHandler) Unmount(c *gin.Context) {
	if !h.registry.Unmount(c.Param("id")) {
		response.Error(c, apperrors.ErrBoardNotFoundError)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BoardHandler) dispatch(c *gin.Context, kind notesboard.MutationKind, noteID string, withBody bool) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	note := database.LoveNote{ID: noteID}
	if withBody {
		var in noteInput
		if err := c.ShouldBindJSON(&in); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		note.Title, note.Content, note.Author = in.Title, in.Content, in.Author
		note.Mood, note.IsPinned = in.Mood, in.IsPinned
	}

	n := board.Dispatch(c.Request.Context(), notesboard.Mutation{Kind: kind, Note: note})
	respondNotice(c, n, board.View())
}

func (h *BoardHandler) board(c *gin.Context) (*notesboard.Board, bool) {
	board, ok := h.registry.Get(c.Param("id"))
	if !ok {
		response.Error(c, apperrors.ErrBoardNotFoundError)
		return nil, false
	}
	return board, true
}
