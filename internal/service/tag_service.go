package service

import (
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TagService 处理标签的创建和使用计数
type TagService struct {
	tagRepo  interfaces.TagRepository
	postRepo interfaces.PostRepository
}

// NewTagService 创建一个新的 TagService 实例
func NewTagService(tagRepo interfaces.TagRepository, postRepo interfaces.PostRepository) *TagService {
	return &TagService{tagRepo: tagRepo, postRepo: postRepo}
}

// ListTags 分页返回激活标签，默认按使用次数倒序，sortBy 传 name 时按名称排序
func (s *TagService) ListTags(page, pageSize int, sortBy string) ([]*model.Tag, int64, error) {
	return s.tagRepo.List(page, pageSize, sortBy)
}

// CreateTag 管理员手工创建标签，名称重复返回冲突错误
func (s *TagService) CreateTag(creatorID primitive.ObjectID, displayName string) (*model.Tag, error) {
	name := model.NormalizeTagName(displayName)
	if name == "" {
		return nil, errors.New(errors.ErrValidation, "tag name is empty")
	}

	existing, err := s.tagRepo.FindByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New(errors.ErrTagExists, "tag already exists")
	}

	tag := &model.Tag{
		Name:        name,
		DisplayName: displayName,
		IsActive:    true,
		CreatedBy:   creatorID,
	}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// EnsureTags 规范化并去重标签名，缺失的标签自动创建。
// 返回规范化后的名称列表，供帖子保存使用。
func (s *TagService) EnsureTags(names []string, creatorID primitive.ObjectID) ([]string, error) {
	seen := make(map[string]bool)
	normalized := make([]string, 0, len(names))

	for _, raw := range names {
		name := model.NormalizeTagName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		normalized = append(normalized, name)

		existing, err := s.tagRepo.FindByName(name)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			tag := &model.Tag{Name: name, DisplayName: raw, IsActive: true, CreatedBy: creatorID}
			if err := s.tagRepo.Create(tag); err != nil {
				return nil, err
			}
		}
	}
	return normalized, nil
}

// AdjustUsage 根据帖子改标前后的差异调整使用计数。
// 计数更新和帖子写入不在一个事务里，漂移由对账任务修正。
func (s *TagService) AdjustUsage(oldTags, newTags []string) {
	old := make(map[string]bool, len(oldTags))
	for _, t := range oldTags {
		old[t] = true
	}
	current := make(map[string]bool, len(newTags))
	for _, t := range newTags {
		current[t] = true
	}

	for _, t := range newTags {
		if !old[t] {
			if err := s.tagRepo.IncrementUsage(t, 1); err != nil {
				util.Logger.Error("增加标签计数失败", zap.String("tag", t), zap.Error(err))
			}
		}
	}
	for _, t := range oldTags {
		if !current[t] {
			if err := s.tagRepo.IncrementUsage(t, -1); err != nil {
				util.Logger.Error("减少标签计数失败", zap.String("tag", t), zap.Error(err))
			}
		}
	}
}

// ReconcileUsageCounts 以活跃帖子的聚合结果为准修正标签计数，
// 由后台任务定期调用
func (s *TagService) ReconcileUsageCounts() error {
	actual, err := s.postRepo.TagUsageCounts()
	if err != nil {
		return err
	}

	tags, err := s.tagRepo.All()
	if err != nil {
		return err
	}

	fixed := 0
	for _, tag := range tags {
		want := actual[tag.Name]
		if tag.UsageCount != want {
			if err := s.tagRepo.SetUsage(tag.Name, want); err != nil {
				util.Logger.Error("修正标签计数失败", zap.String("tag", tag.Name), zap.Error(err))
				continue
			}
			fixed++
		}
	}

	if fixed > 0 {
		util.Logger.Info("标签计数对账完成", zap.Int("fixed", fixed))
	}
	return nil
}
