package service

import (
	"time"

	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"

	"go.uber.org/zap"
)

// SearchService 记录搜索词并提供热搜统计
type SearchService struct {
	searchRepo interfaces.SearchRepository
}

// NewSearchService 创建一个新的 SearchService 实例
func NewSearchService(searchRepo interfaces.SearchRepository) *SearchService {
	return &SearchService{searchRepo: searchRepo}
}

// RecordSearch 记录一次搜索。统计失败只记录日志，不影响搜索本身。
func (s *SearchService) RecordSearch(rawTerm string) {
	term := model.NormalizeSearchTerm(rawTerm)
	if term == "" {
		return
	}
	if err := s.searchRepo.RecordHit(term); err != nil {
		util.Logger.Error("记录搜索词失败", zap.String("term", term), zap.Error(err))
	}
}

// PopularSearches 返回命中次数最高的搜索词
func (s *SearchService) PopularSearches(limit int) ([]*model.SearchRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.searchRepo.TopByHits(limit)
}

// PruneStale 删除超过保留期没有被搜索过的词，由后台任务定期调用
func (s *SearchService) PruneStale(retentionDays int) (int64, error) {
	before := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.searchRepo.DeleteStale(before)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		util.Logger.Info("清理过期搜索词", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
