package errors

import (
	"sync"
)

// ErrorAnalytics 聚合运行期错误，按错误码和请求路径分桶
type ErrorAnalytics struct {
	mu           sync.RWMutex
	totalErrors  int
	errorsByCode map[ErrorCode]int
	errorsByPath map[string]int
	lastError    *TracedError
}

// NewErrorAnalytics 创建错误分析器
func NewErrorAnalytics() *ErrorAnalytics {
	return &ErrorAnalytics{
		errorsByCode: make(map[ErrorCode]int),
		errorsByPath: make(map[string]int),
	}
}

// Record 记录一条错误
func (a *ErrorAnalytics) Record(err *TracedError) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalErrors++
	a.errorsByCode[err.Code]++
	a.errorsByPath[err.Context.Path]++
	a.lastError = err
}

// GetStats 导出统计快照，最近一条错误带上下文和调用栈
func (a *ErrorAnalytics) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	byCode := make(map[ErrorCode]int, len(a.errorsByCode))
	for code, count := range a.errorsByCode {
		byCode[code] = count
	}
	byPath := make(map[string]int, len(a.errorsByPath))
	for path, count := range a.errorsByPath {
		byPath[path] = count
	}

	stats := map[string]interface{}{
		"total_errors":   a.totalErrors,
		"errors_by_code": byCode,
		"errors_by_path": byPath,
	}
	if a.lastError != nil {
		stats["last_error"] = map[string]interface{}{
			"time":       a.lastError.Timestamp,
			"code":       a.lastError.Code,
			"message":    a.lastError.Message,
			"path":       a.lastError.Context.Path,
			"method":     a.lastError.Context.Method,
			"request_id": a.lastError.Context.RequestID,
			"stack":      a.lastError.Stack,
		}
	}
	return stats
}
