package middleware

import (
	"sync"

	"forum-backend/internal/errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ErrorMonitor struct {
	errorCounts map[errors.ErrorCode]int
	analytics   *errors.ErrorAnalytics
	mu          sync.RWMutex
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		errorCounts: make(map[errors.ErrorCode]int),
		analytics:   errors.NewErrorAnalytics(),
	}
}

func (m *ErrorMonitor) RecordError(err error, ctx errors.ErrorContext) {
	if appErr, ok := err.(*errors.AppError); ok {
		m.mu.Lock()
		m.errorCounts[appErr.Code]++
		m.mu.Unlock()
		m.analytics.Record(errors.NewTracedError(appErr, ctx))
	}
}

func (m *ErrorMonitor) GetErrorCounts() map[errors.ErrorCode]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[errors.ErrorCode]int)
	for code, count := range m.errorCounts {
		counts[code] = count
	}
	return counts
}

// GetAnalytics 返回按路径和错误码聚合的统计，供管理后台查询
func (m *ErrorMonitor) GetAnalytics() map[string]interface{} {
	return m.analytics.GetStats()
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			ctx := errors.ErrorContext{
				RequestID: c.GetString("request_id"),
				Path:      c.Request.URL.Path,
				Method:    c.Request.Method,
			}
			if userID, exists := c.Get("user_id"); exists {
				if id, ok := userID.(primitive.ObjectID); ok {
					ctx.UserID = id.Hex()
				}
			}

			for _, e := range c.Errors {
				monitor.RecordError(e.Err, ctx)
				// 记录错误日志
				if appErr, ok := e.Err.(*errors.AppError); ok {
					zap.L().Error("请求处理错误",
						zap.Int("error_code", int(appErr.Code)),
						zap.String("error_message", appErr.Message),
						zap.Error(appErr.Err),
						zap.String("request_id", ctx.RequestID),
						zap.String("path", c.Request.URL.Path),
						zap.String("method", c.Request.Method))
				}
			}
		}
	}
}
