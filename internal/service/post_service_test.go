package service

import (
	"testing"
	"time"

	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockPostRepository 是 PostRepository 接口的模拟实现
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(id primitive.ObjectID) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) Update(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) UpdateVotes(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) SoftDelete(id primitive.ObjectID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPostRepository) List(opts interfaces.PostListOptions) ([]*model.Post, int64, error) {
	args := m.Called(opts)
	return args.Get(0).([]*model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) IncrementViewCount(id primitive.ObjectID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPostRepository) CountActiveByAuthor(authorID primitive.ObjectID) (int64, error) {
	args := m.Called(authorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) CountActive() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) TagUsageCounts() (map[string]int64, error) {
	args := m.Called()
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockTagRepository 是 TagRepository 接口的模拟实现
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) Create(tag *model.Tag) error {
	args := m.Called(tag)
	return args.Error(0)
}

func (m *MockTagRepository) FindByName(name string) (*model.Tag, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) FindByID(id primitive.ObjectID) (*model.Tag, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tag), args.Error(1)
}

func (m *MockTagRepository) List(page, pageSize int, sortBy string) ([]*model.Tag, int64, error) {
	args := m.Called(page, pageSize, sortBy)
	return args.Get(0).([]*model.Tag), args.Get(1).(int64), args.Error(2)
}

func (m *MockTagRepository) All() ([]*model.Tag, error) {
	args := m.Called()
	return args.Get(0).([]*model.Tag), args.Error(1)
}

func (m *MockTagRepository) IncrementUsage(name string, delta int64) error {
	args := m.Called(name, delta)
	return args.Error(0)
}

func (m *MockTagRepository) SetUsage(name string, count int64) error {
	args := m.Called(name, count)
	return args.Error(0)
}

func (m *MockTagRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockSearchRepository 是 SearchRepository 接口的模拟实现
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) RecordHit(term string) error {
	args := m.Called(term)
	return args.Error(0)
}

func (m *MockSearchRepository) TopByHits(limit int) ([]*model.SearchRecord, error) {
	args := m.Called(limit)
	return args.Get(0).([]*model.SearchRecord), args.Error(1)
}

func (m *MockSearchRepository) DeleteStale(before time.Time) (int64, error) {
	args := m.Called(before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSearchRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func newTestPostService(postRepo *MockPostRepository, userRepo *MockUserRepository, tagRepo *MockTagRepository, searchRepo *MockSearchRepository) *PostService {
	tagService := NewTagService(tagRepo, postRepo)
	searchService := NewSearchService(searchRepo)
	return NewPostService(postRepo, userRepo, tagService, searchService, ws.NewHub())
}

// TestCreatePostLimit 测试青铜会员的发帖配额
func TestCreatePostLimit(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	bronzeID := primitive.NewObjectID()
	bronze := &model.User{
		ID:         bronzeID,
		Username:   "bronze",
		Membership: model.Membership{Tier: model.TierBronze},
		IsActive:   true,
	}

	// 已有5篇活跃帖子的青铜会员发帖被拒绝
	userRepo.On("FindByID", bronzeID).Return(bronze, nil)
	postRepo.On("CountActiveByAuthor", bronzeID).Return(int64(5), nil)

	_, err := service.CreatePost(bronzeID, "title", "body", nil, model.VisibilityPublic)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrPostLimitReached, appErr.Code)
	assert.Equal(t, true, appErr.Details["postLimit"])

	// 升级为金牌会员后同样的请求成功
	bronze.UpgradeToGold(365)
	postRepo.On("Create", mock.AnythingOfType("*model.Post")).Return(nil)

	post, err := service.CreatePost(bronzeID, "title", "body", nil, model.VisibilityPublic)
	assert.NoError(t, err)
	assert.True(t, post.IsActive)
	assert.Equal(t, model.VisibilityPublic, post.Visibility)
}

// TestCreatePostNormalizesTags 测试发帖时标签的规范化和计数
func TestCreatePostNormalizesTags(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	authorID := primitive.NewObjectID()
	author := &model.User{
		ID:         authorID,
		Membership: model.Membership{Tier: model.TierBronze},
		IsActive:   true,
	}

	userRepo.On("FindByID", authorID).Return(author, nil)
	postRepo.On("CountActiveByAuthor", authorID).Return(int64(0), nil)
	postRepo.On("Create", mock.AnythingOfType("*model.Post")).Return(nil)

	// Golang 已存在，新标签 web-dev 自动创建
	tagRepo.On("FindByName", "golang").Return(&model.Tag{Name: "golang"}, nil)
	tagRepo.On("FindByName", "web-dev").Return(nil, nil)
	tagRepo.On("Create", mock.AnythingOfType("*model.Tag")).Return(nil)
	tagRepo.On("IncrementUsage", "golang", int64(1)).Return(nil)
	tagRepo.On("IncrementUsage", "web-dev", int64(1)).Return(nil)

	post, err := service.CreatePost(authorID, "title", "body", []string{" Golang ", "web-dev", "GOLANG"}, model.VisibilityPublic)
	assert.NoError(t, err)
	assert.Equal(t, []string{"golang", "web-dev"}, post.Tags)
	tagRepo.AssertCalled(t, "IncrementUsage", "golang", int64(1))
	tagRepo.AssertCalled(t, "IncrementUsage", "web-dev", int64(1))
}

// TestVote 测试投票、改票和重复投票的撤销语义
func TestVote(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	voterID := primitive.NewObjectID()
	voter := &model.User{ID: voterID, IsActive: true}
	authorID := primitive.NewObjectID()
	author := &model.User{ID: authorID, Username: "author"}

	post := &model.Post{
		ID:         primitive.NewObjectID(),
		AuthorID:   authorID,
		Visibility: model.VisibilityPublic,
		IsActive:   true,
	}

	postRepo.On("FindByID", post.ID).Return(post, nil)
	postRepo.On("UpdateVotes", post).Return(nil)
	userRepo.On("FindByID", authorID).Return(author, nil)

	// 第一次投赞成票
	got, err := service.Vote(voter, post.ID, model.VoteUp)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.UpVotes)

	// 改投反对票
	got, err = service.Vote(voter, post.ID, model.VoteDown)
	assert.NoError(t, err)
	assert.Equal(t, 0, got.UpVotes)
	assert.Equal(t, 1, got.DownVotes)
	assert.Len(t, got.Voters, 1)

	// 重复投同类型票等价于撤销
	got, err = service.Vote(voter, post.ID, model.VoteDown)
	assert.NoError(t, err)
	assert.Equal(t, 0, got.UpVotes)
	assert.Equal(t, 0, got.DownVotes)
	assert.Empty(t, got.Voters)

	// 非法投票类型被拒绝
	_, err = service.Vote(voter, post.ID, "sideways")
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrValidation, appErr.Code)
}

// TestVoteOnDeletedPost 测试对已删除帖子投票返回不存在
func TestVoteOnDeletedPost(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	voter := &model.User{ID: primitive.NewObjectID(), IsActive: true}
	deleted := &model.Post{
		ID:         primitive.NewObjectID(),
		Visibility: model.VisibilityPublic,
		IsActive:   false,
	}
	postRepo.On("FindByID", deleted.ID).Return(deleted, nil)

	_, err := service.Vote(voter, deleted.ID, model.VoteUp)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrPostNotFound, appErr.Code)
}

// TestGetPostPrivate 测试私有帖子的可见性
func TestGetPostPrivate(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	ownerID := primitive.NewObjectID()
	owner := &model.User{ID: ownerID, Username: "owner"}
	post := &model.Post{
		ID:         primitive.NewObjectID(),
		AuthorID:   ownerID,
		Visibility: model.VisibilityPrivate,
		IsActive:   true,
	}

	postRepo.On("FindByID", post.ID).Return(post, nil)
	userRepo.On("FindByID", ownerID).Return(owner, nil)

	// 匿名用户不可见
	_, err := service.GetPost(post.ID, nil)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrPrivatePost, appErr.Code)

	// 其他用户不可见
	stranger := &model.User{ID: primitive.NewObjectID()}
	_, err = service.GetPost(post.ID, stranger)
	assert.Error(t, err)

	// 作者本人可见，且不累加浏览量
	got, err := service.GetPost(post.ID, owner)
	assert.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	postRepo.AssertNotCalled(t, "IncrementViewCount", post.ID)

	// 管理员可见
	admin := &model.User{ID: primitive.NewObjectID(), Role: model.RoleAdmin}
	postRepo.On("IncrementViewCount", post.ID).Return(nil)
	_, err = service.GetPost(post.ID, admin)
	assert.NoError(t, err)
	postRepo.AssertCalled(t, "IncrementViewCount", post.ID)
}

// TestListPostsRecordsSearch 测试列表搜索词被计入热搜
func TestListPostsRecordsSearch(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	searchRepo.On("RecordHit", "golang tips").Return(nil)
	postRepo.On("List", mock.AnythingOfType("interfaces.PostListOptions")).Return([]*model.Post{}, int64(0), nil)

	_, _, err := service.ListPosts(ListPostsInput{Page: 1, PageSize: 10, Search: " Golang  Tips "})
	assert.NoError(t, err)
	searchRepo.AssertCalled(t, "RecordHit", "golang tips")

	// 空搜索词不计入热搜
	_, _, err = service.ListPosts(ListPostsInput{Page: 1, PageSize: 10})
	assert.NoError(t, err)
	searchRepo.AssertNumberOfCalls(t, "RecordHit", 1)
}

// TestDeletePostReleasesTags 测试删帖回收标签计数
func TestDeletePostReleasesTags(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	ownerID := primitive.NewObjectID()
	owner := &model.User{ID: ownerID}
	post := &model.Post{
		ID:         primitive.NewObjectID(),
		AuthorID:   ownerID,
		Tags:       []string{"golang"},
		Visibility: model.VisibilityPublic,
		IsActive:   true,
	}

	postRepo.On("FindByID", post.ID).Return(post, nil)
	postRepo.On("SoftDelete", post.ID).Return(nil)
	tagRepo.On("IncrementUsage", "golang", int64(-1)).Return(nil)

	// 其他用户不能删除
	stranger := &model.User{ID: primitive.NewObjectID()}
	err := service.DeletePost(stranger, post.ID)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	// 作者本人删除成功，标签计数回收
	err = service.DeletePost(owner, post.ID)
	assert.NoError(t, err)
	tagRepo.AssertCalled(t, "IncrementUsage", "golang", int64(-1))
}

// TestUpdatePostRetag 测试改标签时计数的对称调整
func TestUpdatePostRetag(t *testing.T) {
	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	tagRepo := new(MockTagRepository)
	searchRepo := new(MockSearchRepository)
	service := newTestPostService(postRepo, userRepo, tagRepo, searchRepo)

	ownerID := primitive.NewObjectID()
	owner := &model.User{ID: ownerID, Username: "owner"}
	post := &model.Post{
		ID:         primitive.NewObjectID(),
		AuthorID:   ownerID,
		Tags:       []string{"golang", "web"},
		Visibility: model.VisibilityPublic,
		IsActive:   true,
	}

	postRepo.On("FindByID", post.ID).Return(post, nil)
	postRepo.On("Update", post).Return(nil)
	userRepo.On("FindByID", ownerID).Return(owner, nil)

	tagRepo.On("FindByName", "web").Return(&model.Tag{Name: "web"}, nil)
	tagRepo.On("FindByName", "rust").Return(&model.Tag{Name: "rust"}, nil)
	tagRepo.On("IncrementUsage", "rust", int64(1)).Return(nil)
	tagRepo.On("IncrementUsage", "golang", int64(-1)).Return(nil)

	_, err := service.UpdatePost(owner, post.ID, "", "", []string{"web", "rust"}, "")
	assert.NoError(t, err)

	// 保留的 web 不动，新增的 rust 加一，移除的 golang 减一
	tagRepo.AssertCalled(t, "IncrementUsage", "rust", int64(1))
	tagRepo.AssertCalled(t, "IncrementUsage", "golang", int64(-1))
	tagRepo.AssertNotCalled(t, "IncrementUsage", "web", int64(1))
	tagRepo.AssertNotCalled(t, "IncrementUsage", "web", int64(-1))
}
