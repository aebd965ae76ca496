package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/notice"
	"github.com/weiwangfds/keepsake/internal/response"
)

// 失败提示对应的错误码，未列出的按内部错误处理
var noticeCodes = map[string]apperrors.ErrorCode{
	"note_fields_required": apperrors.ErrNoteFieldsRequired,
	"invalid_params":       apperrors.ErrInvalidParams,
	"upload_too_large":     apperrors.ErrUploadTooLarge,
	"upload_failed":        apperrors.ErrUploadFailed,
}

// respondNotice 输出操作提示
func respondNotice(c *gin.Context, n notice.Notice, data interface{}) {
	if n.Success {
		response.SuccessWithKey(c, n.Key, data)
		return
	}
	// 展示板尚未收到第一份数据
	if n.Key == "board_loading" {
		response.WithKey(c, http.StatusConflict, int(apperrors.ErrInvalidParams), n.Key, data)
		return
	}
	code, ok := noticeCodes[n.Key]
	if !ok {
		code = apperrors.ErrInternalServer
	}
	response.WithKey(c, response.StatusOf(code), int(code), n.Key, data)
}
