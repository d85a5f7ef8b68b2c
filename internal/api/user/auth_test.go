package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"forum-backend/config"
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/service"
	"forum-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	util.InitLogger("error", false)
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.JWTExpiryHours = 24
}

// MockUserService 是 UserServiceInterface 的模拟实现
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserService) Login(email, password string) (*model.User, error) {
	args := m.Called(email, password)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) LoginWithGoogle(googleID, email, username string) (*model.User, error) {
	args := m.Called(googleID, email, username)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(id primitive.ObjectID) (*model.User, error) {
	args := m.Called(id)
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) RequestPasswordReset(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(token, newPassword string) error {
	args := m.Called(token, newPassword)
	return args.Error(0)
}

func (m *MockUserService) Logout(token string) {
	m.Called(token)
}

func (m *MockUserService) IsTokenBlacklisted(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}

// 确保 MockUserService 实现了 UserServiceInterface
var _ service.UserServiceInterface = (*MockUserService)(nil)

// TestRegister 测试注册处理器
func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/register", handler.Register)

	// 模拟成功注册
	mockService.On("Register", mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		user := args.Get(0).(*model.User)
		user.ID = primitive.NewObjectID()
	}).Return(nil).Once()

	body := []byte(`{"username": "testuser", "email": "test@example.com", "password": "StrongP@ssw0rd"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Contains(t, data, "token")

	// 模拟注册失败（用户名已存在）
	mockService.On("Register", mock.AnythingOfType("*model.User")).
		Return(errors.New(errors.ErrUserExists, "username already exists")).Once()

	req, _ = http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

// TestRegisterWeakPassword 测试弱密码被拒绝
func TestRegisterWeakPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/register", handler.Register)

	body := []byte(`{"username": "testuser", "email": "test@example.com", "password": "weak"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Register", mock.Anything)
}

// TestLogin 测试登录处理器
func TestLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/login", handler.Login)

	// 模拟成功登录
	mockUser := &model.User{ID: primitive.NewObjectID(), Email: "test@example.com"}
	mockService.On("Login", "test@example.com", "password123").Return(mockUser, nil).Once()

	body := []byte(`{"email": "test@example.com", "password": "password123"}`)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Contains(t, data, "token")

	// 模拟登录失败
	mockService.On("Login", "test@example.com", "wrongpassword").
		Return((*model.User)(nil), errors.New(errors.ErrInvalidCredentials, "邮箱或密码错误")).Once()

	body = []byte(`{"email": "test@example.com", "password": "wrongpassword"}`)
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertExpectations(t)
}

// TestGoogleLogin 测试谷歌登录处理器
func TestGoogleLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/auth/google", handler.GoogleLogin)

	mockUser := &model.User{
		ID:       primitive.NewObjectID(),
		Username: "googleuser",
		Email:    "guser@example.com",
		GoogleID: "google-uid-1",
	}
	mockService.On("LoginWithGoogle", "google-uid-1", "guser@example.com", "googleuser").
		Return(mockUser, nil).Once()

	body := []byte(`{"google_id": "google-uid-1", "email": "guser@example.com", "username": "googleuser"}`)
	req, _ := http.NewRequest("POST", "/auth/google", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Contains(t, data, "token")
	mockService.AssertExpectations(t)
}

// TestLogout 测试登出处理器将当前令牌送入黑名单
func TestLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/logout", func(c *gin.Context) {
		c.Set("token", "the-current-token")
	}, handler.Logout)

	mockService.On("Logout", "the-current-token").Return().Once()

	req, _ := http.NewRequest("POST", "/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertCalled(t, "Logout", "the-current-token")
}
