package service

import (
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
)

type StatsService struct {
	userRepo    interfaces.UserRepository
	postRepo    interfaces.PostRepository
	commentRepo interfaces.CommentRepository
	tagRepo     interfaces.TagRepository
}

func NewStatsService(
	userRepo interfaces.UserRepository,
	postRepo interfaces.PostRepository,
	commentRepo interfaces.CommentRepository,
	tagRepo interfaces.TagRepository,
) *StatsService {
	return &StatsService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		tagRepo:     tagRepo,
	}
}

// GetDashboardStats 汇总管理后台首页的各项统计
func (s *StatsService) GetDashboardStats() (*model.DashboardStats, error) {
	stats := &model.DashboardStats{}
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.userRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.GoldMembers, err = s.userRepo.CountGoldMembers(); err != nil {
		return nil, err
	}
	if stats.TotalPosts, err = s.postRepo.Count(); err != nil {
		return nil, err
	}
	if stats.ActivePosts, err = s.postRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.TotalComments, err = s.commentRepo.Count(); err != nil {
		return nil, err
	}
	if stats.ActiveComments, err = s.commentRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.PendingReports, err = s.commentRepo.CountPendingReports(); err != nil {
		return nil, err
	}
	if stats.TotalTags, err = s.tagRepo.Count(); err != nil {
		return nil, err
	}

	return stats, nil
}
