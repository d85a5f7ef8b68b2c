package common

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsTemporary 判断错误是否自述为临时性错误
func IsTemporary(err error) bool {
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}

// IsRetryable 判断数据库操作是否值得重试。
// 超时和网络抖动类错误重试，业务错误立即返回。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return IsTemporary(err)
}

// WithRetry 按线性退避重试操作，遇到不可重试的错误直接放弃
func WithRetry(operation func() error, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return err
}
