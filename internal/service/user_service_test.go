package service

import (
	"testing"
	"time"

	"forum-backend/config"
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	util.InitLogger("error", false)
	config.AppConfig.GoldMembershipDays = 365
	config.AppConfig.BronzePostLimit = 5
}

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id primitive.ObjectID) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleID(googleID string) (*model.User, error) {
	args := m.Called(googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindAll(opts interfaces.UserListOptions) ([]*model.User, int64, error) {
	args := m.Called(opts)
	return args.Get(0).([]*model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountActive() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountGoldMembers() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// TestRegister 测试用户注册功能
func TestRegister(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "password123",
	}

	// 测试成功注册
	mockRepo.On("FindByUsername", "testuser").Return(nil, nil)
	mockRepo.On("FindByEmail", "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

	err := service.Register(user)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.TierBronze, user.Membership.Tier)
	assert.True(t, user.IsActive)
	// 密码必须已经被哈希
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// 测试用户名已存在
	mockRepo.On("FindByUsername", "existinguser").Return(&model.User{}, nil)
	user.Username = "existinguser"
	err = service.Register(user)
	assert.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrUserExists, appErr.Code)
}

// TestLogin 测试用户登录功能
func TestLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:           primitive.NewObjectID(),
		Email:        "test@example.com",
		PasswordHash: string(hashed),
		IsActive:     true,
	}

	// 测试成功登录
	mockRepo.On("FindByEmail", "test@example.com").Return(user, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	got, err := service.Login("test@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLoginAt)

	// 测试密码错误
	_, err = service.Login("test@example.com", "wrongpassword")
	assert.Error(t, err)

	// 测试停用账号不能登录
	inactive := &model.User{Email: "inactive@example.com", PasswordHash: string(hashed)}
	mockRepo.On("FindByEmail", "inactive@example.com").Return(inactive, nil)
	_, err = service.Login("inactive@example.com", "password123")
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrUserInactive, appErr.Code)
}

// TestUpgradeToGoldService 测试会员升级的业务规则
func TestUpgradeToGoldService(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	userID := primitive.NewObjectID()
	user := &model.User{
		ID:         userID,
		Membership: model.Membership{Tier: model.TierBronze},
		IsActive:   true,
	}

	mockRepo.On("FindByID", userID).Return(user, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	got, err := service.UpgradeToGold(userID)
	assert.NoError(t, err)
	assert.Equal(t, model.TierGold, got.Membership.Tier)
	assert.True(t, got.HasBadge(model.BadgeGoldMember))

	// 已经是金牌会员时再次升级被拒绝
	_, err = service.UpgradeToGold(userID)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrAlreadyGoldMember, appErr.Code)
}

// TestTokenBlacklist 测试注销后的令牌黑名单
func TestTokenBlacklist(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	assert.False(t, service.IsTokenBlacklisted("token-a"))

	service.Logout("token-a")
	assert.True(t, service.IsTokenBlacklisted("token-a"))
	assert.False(t, service.IsTokenBlacklisted("token-b"))
}

// TestLoginWithGoogle 测试谷歌登录的自动注册和账号绑定
func TestLoginWithGoogle(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	// 谷歌ID没有记录，邮箱也未注册，自动创建账号
	mockRepo.On("FindByGoogleID", "google-1").Return(nil, nil)
	mockRepo.On("FindByEmail", "new@example.com").Return(nil, nil)
	mockRepo.On("FindByUsername", "newuser").Return(nil, nil)
	mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

	user, err := service.LoginWithGoogle("google-1", "new@example.com", "newuser")
	assert.NoError(t, err)
	assert.Equal(t, "google-1", user.GoogleID)
	assert.Equal(t, model.TierBronze, user.Membership.Tier)
	assert.True(t, user.IsActive)

	// 邮箱已注册过的账号直接绑定谷歌ID
	existing := &model.User{
		ID:       primitive.NewObjectID(),
		Email:    "old@example.com",
		IsActive: true,
	}
	mockRepo.On("FindByGoogleID", "google-2").Return(nil, nil)
	mockRepo.On("FindByEmail", "old@example.com").Return(existing, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	user, err = service.LoginWithGoogle("google-2", "old@example.com", "olduser")
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "google-2", user.GoogleID)
}

// TestEffectiveTierAfterExpiry 测试会员到期后可以再次升级
func TestEffectiveTierAfterExpiry(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	expired := time.Now().Add(-time.Hour)
	userID := primitive.NewObjectID()
	user := &model.User{
		ID:         userID,
		Membership: model.Membership{Tier: model.TierGold, ExpiresAt: &expired},
		Badges:     []model.Badge{{Name: model.BadgeGoldMember, AwardedAt: expired}},
		IsActive:   true,
	}

	mockRepo.On("FindByID", userID).Return(user, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	got, err := service.UpgradeToGold(userID)
	assert.NoError(t, err)
	assert.True(t, got.IsGoldMember())
	// 徽章不重复授予
	assert.Len(t, got.Badges, 1)
}
