package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/weiwangfds/keepsake/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess        ErrorCode = 0
	ErrInternalServer ErrorCode = 1000
	ErrInvalidParams  ErrorCode = 1001
	ErrUnauthorized   ErrorCode = 1002
	ErrNotFound       ErrorCode = 1004

	// 上传相关错误码 (2000-2999)
	ErrUploadFailed   ErrorCode = 2002
	ErrUploadTooLarge ErrorCode = 2006

	// 对象存储相关错误码 (3000-3999)
	ErrStorageUnavailable ErrorCode = 3002
	ErrStorageUnsupported ErrorCode = 3008

	// 数据库相关错误码 (4000-4999)
	ErrDatabaseQuery  ErrorCode = 4001
	ErrDatabaseInsert ErrorCode = 4002
	ErrDatabaseUpdate ErrorCode = 4003
	ErrDatabaseDelete ErrorCode = 4004

	// 内容相关错误码 (5000-5999)
	ErrEntryNotFound      ErrorCode = 5000
	ErrNoteNotFound       ErrorCode = 5001
	ErrNoteFieldsRequired ErrorCode = 5002
	ErrBoardNotFound      ErrorCode = 5003
)

// AppError 应用错误
type AppError struct {
	Code          ErrorCode `json:"code"`
	Message       string    `json:"message"`
	Details       string    `json:"details,omitempty"`
	OriginalError error     `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// Is 错误码相同即视为同一类错误，使 errors.Is 可以与预定义错误比较
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetails 添加详细错误信息
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf 使用错误码的默认消息创建错误，并格式化详细信息
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: GetErrorMessage(code),
		Details: fmt.Sprintf(format, args...),
	}
}

// Wrap 包装原始错误
func Wrap(code ErrorCode, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       GetErrorMessage(code),
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// GetAppError 从错误链中提取应用错误
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is 透传标准库 errors.Is，避免调用方同时导入两个 errors 包
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// 预定义的常用错误，用于 errors.Is 比较
var (
	ErrInvalidParameters  = New(ErrInvalidParams, GetErrorMessage(ErrInvalidParams))
	ErrUnauthorizedAccess = New(ErrUnauthorized, GetErrorMessage(ErrUnauthorized))

	ErrUploadFailedError       = New(ErrUploadFailed, GetErrorMessage(ErrUploadFailed))
	ErrUploadTooLargeError     = New(ErrUploadTooLarge, GetErrorMessage(ErrUploadTooLarge))
	ErrStorageUnsupportedError = New(ErrStorageUnsupported, GetErrorMessage(ErrStorageUnsupported))

	ErrEntryNotFoundError      = New(ErrEntryNotFound, GetErrorMessage(ErrEntryNotFound))
	ErrNoteNotFoundError       = New(ErrNoteNotFound, GetErrorMessage(ErrNoteNotFound))
	ErrNoteFieldsRequiredError = New(ErrNoteFieldsRequired, GetErrorMessage(ErrNoteFieldsRequired))
	ErrBoardNotFoundError      = New(ErrBoardNotFound, GetErrorMessage(ErrBoardNotFound))
)

var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:        "success",
	ErrInternalServer: "internal_server_error",
	ErrInvalidParams:  "invalid_params",
	ErrUnauthorized:   "unauthorized",
	ErrNotFound:       "not_found",

	ErrUploadFailed:   "upload_failed",
	ErrUploadTooLarge: "upload_too_large",

	ErrStorageUnavailable: "storage_unavailable",
	ErrStorageUnsupported: "storage_unsupported",

	ErrDatabaseQuery:  "database_query",
	ErrDatabaseInsert: "database_insert",
	ErrDatabaseUpdate: "database_update",
	ErrDatabaseDelete: "database_delete",

	ErrEntryNotFound:      "entry_not_found",
	ErrNoteNotFound:       "note_not_found",
	ErrNoteFieldsRequired: "note_fields_required",
	ErrBoardNotFound:      "board_not_found",
}

// GetErrorMessage 根据错误码获取默认语言的错误消息
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
