package common

import (
	"errors"
	"fmt"
)

// AppError 应用级错误结构
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 可以按错误码匹配哨兵错误
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// WrapError 包装错误
func WrapError(code, message string, err error) error {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewError 创建新错误
func NewError(code, message string) error {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// CodeOf 取出错误链上第一个 AppError 的错误码
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// 错误码常量
const (
	ErrCodeConfig       = "CONFIG_ERROR"
	ErrCodeNoData       = "NO_DATA"
	ErrCodeGitHubAPI    = "GITHUB_API_ERROR"
	ErrCodeTrendingAPI  = "TRENDING_API_ERROR"
	ErrCodeTranslation  = "TRANSLATION_ERROR"
	ErrCodeNotification = "NOTIFICATION_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
)

// 流程级哨兵错误，main 根据它们决定退出码
var (
	ErrMissingToken    = &AppError{Code: ErrCodeConfig, Message: "PUSHPLUS_TOKEN 未设置"}
	ErrNoData          = &AppError{Code: ErrCodeNoData, Message: "没有抓取到任何热门项目"}
	ErrNoneAfterFilter = &AppError{Code: ErrCodeNoData, Message: "关键词过滤后没有剩余项目"}
)
