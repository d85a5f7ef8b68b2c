package errors

import (
	"runtime/debug"
	"time"
)

// ErrorContext 记录错误发生时的请求上下文
type ErrorContext struct {
	RequestID string
	UserID    string
	Path      string
	Method    string
}

// TracedError 带请求上下文和调用栈的错误，供监控统计使用
type TracedError struct {
	*AppError
	Context   ErrorContext
	Stack     string
	Timestamp time.Time
}

// NewTracedError 包装错误并抓取当前调用栈，
// 非 AppError 的错误一律按内部错误归类
func NewTracedError(err error, ctx ErrorContext) *TracedError {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = &AppError{
			Code:    ErrInternal,
			Message: err.Error(),
			Err:     err,
		}
	}

	return &TracedError{
		AppError:  appErr,
		Context:   ctx,
		Stack:     string(debug.Stack()),
		Timestamp: time.Now(),
	}
}
