package interfaces

import (
	"time"

	"forum-backend/internal/model"
)

// SearchRepository 接口定义了搜索统计仓库应该实现的方法
type SearchRepository interface {
	RecordHit(term string) error
	TopByHits(limit int) ([]*model.SearchRecord, error)
	DeleteStale(before time.Time) (int64, error)
	Count() (int64, error)
}
