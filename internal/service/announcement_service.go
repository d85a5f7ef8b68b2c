package service

import (
	"sort"
	"time"

	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"
	"forum-backend/internal/ws"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AnnouncementService 处理站内公告的发布和投放
type AnnouncementService struct {
	announcementRepo interfaces.AnnouncementRepository
	hub              *ws.Hub
}

// NewAnnouncementService 创建一个新的 AnnouncementService 实例
func NewAnnouncementService(announcementRepo interfaces.AnnouncementRepository, hub *ws.Hub) *AnnouncementService {
	return &AnnouncementService{announcementRepo: announcementRepo, hub: hub}
}

// AnnouncementInput 公告创建与修改的输入
type AnnouncementInput struct {
	Title     string
	Body      string
	Priority  string
	Audience  string
	IsPinned  bool
	ExpiresAt *time.Time
}

func validAudience(audience string) bool {
	switch audience {
	case model.AudienceAll, model.AudienceMembers, model.AudienceAdmins:
		return true
	}
	return false
}

func validPriority(priority string) bool {
	switch priority {
	case model.PriorityLow, model.PriorityNormal, model.PriorityHigh:
		return true
	}
	return false
}

// ListVisible 返回对指定用户可见的公告，匿名用户传 nil。
// 置顶的排最前，其余按优先级降序、发布时间倒序。
func (s *AnnouncementService) ListVisible(viewer *model.User) ([]*model.Announcement, error) {
	all, err := s.announcementRepo.ListActive()
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Announcement, 0, len(all))
	for _, a := range all {
		if a.VisibleTo(viewer) {
			visible = append(visible, a)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].IsPinned != visible[j].IsPinned {
			return visible[i].IsPinned
		}
		if visible[i].PriorityRank() != visible[j].PriorityRank() {
			return visible[i].PriorityRank() > visible[j].PriorityRank()
		}
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible, nil
}

// Create 发布新公告并推送到实时频道
func (s *AnnouncementService) Create(creatorID primitive.ObjectID, input AnnouncementInput) (*model.Announcement, error) {
	if input.Priority == "" {
		input.Priority = model.PriorityNormal
	}
	if !validAudience(input.Audience) {
		return nil, errors.New(errors.ErrValidation, "audience must be all, members or admins")
	}
	if !validPriority(input.Priority) {
		return nil, errors.New(errors.ErrValidation, "priority must be low, normal or high")
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, errors.New(errors.ErrValidation, "expiry must be in the future")
	}

	announcement := &model.Announcement{
		Title:     input.Title,
		Body:      input.Body,
		Priority:  input.Priority,
		Audience:  input.Audience,
		IsPinned:  input.IsPinned,
		ExpiresAt: input.ExpiresAt,
		IsActive:  true,
		CreatedBy: creatorID,
	}
	if err := s.announcementRepo.Create(announcement); err != nil {
		return nil, err
	}

	if announcement.Audience == model.AudienceAll {
		s.hub.BroadcastEvent("announcement_published", announcement)
	}

	util.Logger.Info("公告发布成功",
		zap.String("announcement_id", announcement.ID.Hex()),
		zap.String("audience", announcement.Audience),
		zap.String("priority", announcement.Priority))
	return announcement, nil
}

// Update 修改公告内容、受众、优先级或置顶状态
func (s *AnnouncementService) Update(id primitive.ObjectID, input AnnouncementInput) (*model.Announcement, error) {
	announcement, err := s.announcementRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if announcement == nil {
		return nil, errors.New(errors.ErrAnnouncementNotFound, "announcement not found")
	}

	if input.Title != "" {
		announcement.Title = input.Title
	}
	if input.Body != "" {
		announcement.Body = input.Body
	}
	if input.Audience != "" {
		if !validAudience(input.Audience) {
			return nil, errors.New(errors.ErrValidation, "audience must be all, members or admins")
		}
		announcement.Audience = input.Audience
	}
	if input.Priority != "" {
		if !validPriority(input.Priority) {
			return nil, errors.New(errors.ErrValidation, "priority must be low, normal or high")
		}
		announcement.Priority = input.Priority
	}
	announcement.IsPinned = input.IsPinned
	if input.ExpiresAt != nil {
		announcement.ExpiresAt = input.ExpiresAt
	}

	if err := s.announcementRepo.Update(announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

// Delete 下线公告（软删除）
func (s *AnnouncementService) Delete(id primitive.ObjectID) error {
	announcement, err := s.announcementRepo.FindByID(id)
	if err != nil {
		return err
	}
	if announcement == nil {
		return errors.New(errors.ErrAnnouncementNotFound, "announcement not found")
	}
	return s.announcementRepo.SoftDelete(id)
}

// ListAll 分页返回全部公告（含已下线和过期的），供管理后台使用
func (s *AnnouncementService) ListAll(page, pageSize int) ([]*model.Announcement, int64, error) {
	return s.announcementRepo.ListAll(page, pageSize)
}

// DeactivateExpired 停用已过期的公告，由后台任务定期调用
func (s *AnnouncementService) DeactivateExpired() error {
	count, err := s.announcementRepo.DeactivateExpired()
	if err != nil {
		return err
	}
	if count > 0 {
		util.Logger.Info("停用过期公告", zap.Int64("count", count))
	}
	return nil
}
