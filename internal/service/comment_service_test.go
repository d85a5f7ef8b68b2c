package service

import (
	"testing"

	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockCommentRepository 是 CommentRepository 接口的模拟实现
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(id primitive.ObjectID) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentRepository) UpdateModeration(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentRepository) SoftDelete(id primitive.ObjectID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByPost(postID primitive.ObjectID, page, pageSize int) ([]*model.Comment, int64, error) {
	args := m.Called(postID, page, pageSize)
	return args.Get(0).([]*model.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) ListReported(page, pageSize int) ([]*model.Comment, int64, error) {
	args := m.Called(page, pageSize)
	return args.Get(0).([]*model.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) CountPendingReports() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) CountActive() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func newTestCommentService(commentRepo *MockCommentRepository, postRepo *MockPostRepository, userRepo *MockUserRepository) *CommentService {
	return NewCommentService(commentRepo, postRepo, userRepo, ws.NewHub())
}

// TestCreateCommentDefaultsApproved 测试新评论默认通过审核
func TestCreateCommentDefaultsApproved(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	service := newTestCommentService(commentRepo, postRepo, userRepo)

	author := &model.User{ID: primitive.NewObjectID(), Username: "alice", IsActive: true}
	post := &model.Post{
		ID:         primitive.NewObjectID(),
		Visibility: model.VisibilityPublic,
		IsActive:   true,
	}

	postRepo.On("FindByID", post.ID).Return(post, nil)
	commentRepo.On("Create", mock.AnythingOfType("*model.Comment")).Return(nil)

	comment, err := service.CreateComment(author, post.ID, "nice post")
	assert.NoError(t, err)
	assert.Equal(t, model.ModerationApproved, comment.ModerationStatus)
	assert.True(t, comment.IsActive)
	assert.Empty(t, comment.Reports)

	// 帖子不存在时评论被拒绝
	missing := primitive.NewObjectID()
	postRepo.On("FindByID", missing).Return(nil, nil)
	_, err = service.CreateComment(author, missing, "hello")
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrPostNotFound, appErr.Code)
}

// TestReportComment 测试举报评论与重复举报
func TestReportComment(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	service := newTestCommentService(commentRepo, postRepo, userRepo)

	comment := &model.Comment{
		ID:               primitive.NewObjectID(),
		ModerationStatus: model.ModerationApproved,
		IsActive:         true,
	}
	reporterID := primitive.NewObjectID()

	commentRepo.On("FindByID", comment.ID).Return(comment, nil)
	commentRepo.On("UpdateModeration", comment).Return(nil)

	// 第一次举报成功，已通过的评论回到待审核
	err := service.ReportComment(reporterID, comment.ID, "spam")
	assert.NoError(t, err)
	assert.Len(t, comment.Reports, 1)
	assert.True(t, comment.IsReported)
	assert.Equal(t, model.ModerationPending, comment.ModerationStatus)

	// 同一用户重复举报返回冲突错误，举报列表长度不变
	err = service.ReportComment(reporterID, comment.ID, "spam again")
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrDuplicateReport, appErr.Code)
	assert.Len(t, comment.Reports, 1)
}

// TestModerate 测试单条审核直接设置状态，举报列表不受影响
func TestModerate(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	service := newTestCommentService(commentRepo, postRepo, userRepo)

	comment := &model.Comment{
		ID:               primitive.NewObjectID(),
		ModerationStatus: model.ModerationPending,
		IsActive:         true,
	}
	assert.NoError(t, comment.AddReport(primitive.NewObjectID(), "spam"))

	commentRepo.On("FindByID", comment.ID).Return(comment, nil)
	commentRepo.On("UpdateModeration", comment).Return(nil)

	// removed 状态：评论下线，举报保持待处理
	got, err := service.Moderate(comment.ID, model.ModerationRemoved)
	assert.NoError(t, err)
	assert.Equal(t, model.ModerationRemoved, got.ModerationStatus)
	assert.False(t, got.IsActive)
	assert.Equal(t, model.ReportPending, got.Reports[0].Status)

	// 未知状态被拒绝
	_, err = service.Moderate(comment.ID, "escalated")
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
}

// TestBulkModerate 测试批量审核逐条返回结果
func TestBulkModerate(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	service := newTestCommentService(commentRepo, postRepo, userRepo)

	good := &model.Comment{
		ID:               primitive.NewObjectID(),
		ModerationStatus: model.ModerationPending,
		IsActive:         true,
	}
	assert.NoError(t, good.AddReport(primitive.NewObjectID(), "spam"))
	missing := primitive.NewObjectID()

	commentRepo.On("FindByID", good.ID).Return(good, nil)
	commentRepo.On("FindByID", missing).Return(nil, nil)
	commentRepo.On("UpdateModeration", good).Return(nil)

	results := service.BulkModerate([]string{good.ID.Hex(), missing.Hex(), "not-an-id"}, model.ActionApprove)
	assert.Len(t, results, 3)

	// 批量动作按对照表更新评论状态并处理待处理举报
	assert.True(t, results[0].Success)
	assert.Equal(t, model.ModerationApproved, good.ModerationStatus)
	assert.Equal(t, model.ReportDismissed, good.Reports[0].Status)

	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)

	assert.False(t, results[2].Success)
	assert.Equal(t, "invalid comment id", results[2].Error)
}

// TestDeleteCommentPermission 测试评论删除权限
func TestDeleteCommentPermission(t *testing.T) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	service := newTestCommentService(commentRepo, postRepo, userRepo)

	authorID := primitive.NewObjectID()
	comment := &model.Comment{
		ID:       primitive.NewObjectID(),
		AuthorID: authorID,
		IsActive: true,
	}

	commentRepo.On("FindByID", comment.ID).Return(comment, nil)
	commentRepo.On("SoftDelete", comment.ID).Return(nil)

	// 其他用户不能删除
	stranger := &model.User{ID: primitive.NewObjectID()}
	err := service.DeleteComment(stranger, comment.ID)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	// 管理员可以删除
	admin := &model.User{ID: primitive.NewObjectID(), Role: model.RoleAdmin}
	err = service.DeleteComment(admin, comment.ID)
	assert.NoError(t, err)
}
