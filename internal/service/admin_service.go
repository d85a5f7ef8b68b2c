package service

import (
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminService 按功能模块组织管理后台的业务逻辑
type AdminService struct {
	userRepo interfaces.UserRepository
	postRepo interfaces.PostRepository
}

// NewAdminService 创建一个新的 AdminService 实例
func NewAdminService(userRepo interfaces.UserRepository, postRepo interfaces.PostRepository) *AdminService {
	return &AdminService{
		userRepo: userRepo,
		postRepo: postRepo,
	}
}

// 用户管理
func (s *AdminService) GetUsers(page, pageSize int, status, keyword string) ([]*model.User, int64, error) {
	return s.userRepo.FindAll(interfaces.UserListOptions{
		Page:     page,
		PageSize: pageSize,
		Status:   status,
		Keyword:  keyword,
	})
}

// SetUserActive 启用或停用账号
func (s *AdminService) SetUserActive(userID primitive.ObjectID, active bool) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}

	user.IsActive = active
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	util.Logger.Info("管理员变更账号状态",
		zap.String("user_id", userID.Hex()),
		zap.Bool("active", active))
	return user, nil
}

// SetUserRole 变更用户角色，只支持 user 和 admin
func (s *AdminService) SetUserRole(userID primitive.ObjectID, role string) (*model.User, error) {
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, errors.New(errors.ErrValidation, "role must be user or admin")
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	util.Logger.Info("管理员变更用户角色",
		zap.String("user_id", userID.Hex()),
		zap.String("role", role))
	return user, nil
}

// GetAllPosts 返回包括私有和已删除在内的全部帖子，供后台排查
func (s *AdminService) GetAllPosts(page, pageSize int, tag, search string) ([]*model.Post, int64, error) {
	return s.postRepo.List(interfaces.PostListOptions{
		Page:     page,
		PageSize: pageSize,
		Tag:      model.NormalizeTagName(tag),
		Search:   search,
	})
}
