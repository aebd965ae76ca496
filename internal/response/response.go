package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/i18n"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// Response 统一返回值结构体
type Response struct {
	// 状态码，0表示成功，非0表示失败
	Code int `json:"code"`
	// 响应消息，已按请求语言翻译
	Message string `json:"message"`
	// 响应数据
	Data interface{} `json:"data,omitempty"`
	// 请求ID，用于链路追踪
	RequestID string `json:"request_id,omitempty"`
	// 时间戳（毫秒）
	Timestamp int64 `json:"timestamp"`
}

// now 便于测试时替换
var now = time.Now

// Lang 从请求头解析语言
func Lang(c *gin.Context) string {
	return i18n.GetInstance().Resolve(c.GetHeader("Accept-Language"))
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, 0, i18n.GetInstance().Translate("success", Lang(c)), data)
}

// SuccessWithKey 使用翻译键作为消息的成功响应，例如 "note_added"
func SuccessWithKey(c *gin.Context, key string, data interface{}) {
	write(c, http.StatusOK, 0, i18n.GetInstance().Translate(key, Lang(c)), data)
}

// Created 201 响应
func Created(c *gin.Context, key string, data interface{}) {
	write(c, http.StatusCreated, 0, i18n.GetInstance().Translate(key, Lang(c)), data)
}

// WithKey 指定状态码、业务码和翻译键的响应
func WithKey(c *gin.Context, status, code int, key string, data interface{}) {
	write(c, status, code, i18n.GetInstance().Translate(key, Lang(c)), data)
}

// BadRequest 400错误响应
func BadRequest(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, int(apperrors.ErrInvalidParams), message, nil)
}

// Unauthorized 401错误响应
func Unauthorized(c *gin.Context) {
	msg := apperrors.GetErrorMessageWithLang(apperrors.ErrUnauthorized, Lang(c))
	c.AbortWithStatusJSON(http.StatusUnauthorized, build(c, int(apperrors.ErrUnauthorized), msg, nil))
}

// Error 根据错误类型输出响应。应用错误按错误码映射 HTTP 状态，
// 其余错误统一视为 500，细节只写日志不返回给客户端
func Error(c *gin.Context, err error) {
	appErr, ok := apperrors.GetAppError(err)
	if !ok {
		logger.WithField("request_id", requestID(c)).Errorf("未分类错误: %v", err)
		msg := apperrors.GetErrorMessageWithLang(apperrors.ErrInternalServer, Lang(c))
		write(c, http.StatusInternalServerError, int(apperrors.ErrInternalServer), msg, nil)
		return
	}

	status := StatusOf(appErr.Code)
	if status >= http.StatusInternalServerError {
		logger.WithField("request_id", requestID(c)).Errorf("请求失败: %v", appErr)
	}
	write(c, status, int(appErr.Code), apperrors.GetErrorMessageWithLang(appErr.Code, Lang(c)), nil)
}

// StatusOf 错误码到 HTTP 状态码的映射
func StatusOf(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrSuccess:
		return http.StatusOK
	case apperrors.ErrInvalidParams, apperrors.ErrNoteFieldsRequired:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrNotFound, apperrors.ErrEntryNotFound, apperrors.ErrNoteNotFound, apperrors.ErrBoardNotFound:
		return http.StatusNotFound
	case apperrors.ErrUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperrors.ErrStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func write(c *gin.Context, status, code int, message string, data interface{}) {
	c.JSON(status, build(c, code, message, data))
}

func build(c *gin.Context, code int, message string, data interface{}) Response {
	return Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
		Timestamp: now().UnixMilli(),
	}
}

// requestID 从gin上下文中获取请求ID
func requestID(c *gin.Context) string {
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
