package service

import (
	"log"
	"sync"
	"time"

	"forum-backend/config"
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo       interfaces.UserRepository
	emailService   *EmailService
	tokenBlacklist map[string]time.Time
	blacklistMutex sync.RWMutex
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository) *UserService {
	return &UserService{
		userRepo:       userRepo,
		emailService:   NewEmailService(),
		tokenBlacklist: make(map[string]time.Time),
	}
}

// IsUsernameTaken 检查用户名是否已被使用
func (s *UserService) IsUsernameTaken(username string) (bool, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// IsEmailTaken 检查邮箱是否已被注册
func (s *UserService) IsEmailTaken(email string) (bool, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Register 注册新用户，默认青铜会员
func (s *UserService) Register(user *model.User) error {
	// 检查用户名是否已被使用
	taken, err := s.IsUsernameTaken(user.Username)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "username already exists")
	}

	taken, err = s.IsEmailTaken(user.Email)
	if err != nil {
		return err
	}
	if taken {
		return errors.New(errors.ErrUserExists, "email already registered")
	}

	// 生成密码哈希
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	user.Role = model.RoleUser
	user.Membership = model.Membership{Tier: model.TierBronze}
	user.IsActive = true

	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	// 发送欢迎邮件，失败不影响注册
	if err := s.emailService.SendWelcomeEmail(user.Email, user.Username); err != nil {
		util.Logger.Error("发送欢迎邮件失败", zap.Error(err))
	}

	return nil
}

// Login 用户登录，成功后记录登录时间
func (s *UserService) Login(email, password string) (*model.User, error) {
	log.Printf("尝试用户登录：%s", email)

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.New(errors.ErrUserInactive, "account is deactivated")
	}
	if !user.CanLogin() {
		return nil, errors.New(errors.ErrInvalidCredentials, "account has no login credential")
	}

	// 验证密码，第三方登录账号没有本地密码，同样走这里拒绝
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("用户登录失败，密码不正确：%v", err)
		return nil, errors.New(errors.ErrUnauthorized, "invalid email or password")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		util.Logger.Error("更新登录时间失败", zap.Error(err), zap.String("user_id", user.ID.Hex()))
	}

	log.Printf("用户登录成功：ID=%s", user.ID.Hex())
	return user, nil
}

// LoginWithGoogle 通过谷歌账号登录，账号不存在时自动注册
func (s *UserService) LoginWithGoogle(googleID, email, username string) (*model.User, error) {
	user, err := s.userRepo.FindByGoogleID(googleID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if !user.IsActive {
			return nil, errors.New(errors.ErrUserInactive, "account is deactivated")
		}
		now := time.Now()
		user.LastLoginAt = &now
		if err := s.userRepo.Update(user); err != nil {
			util.Logger.Error("更新登录时间失败", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		}
		return user, nil
	}

	// 邮箱已注册过的账号直接绑定谷歌ID
	user, err = s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if !user.IsActive {
			return nil, errors.New(errors.ErrUserInactive, "account is deactivated")
		}
		user.GoogleID = googleID
		now := time.Now()
		user.LastLoginAt = &now
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user = &model.User{
		Username:   s.uniqueUsername(username),
		Email:      email,
		GoogleID:   googleID,
		Role:       model.RoleUser,
		Membership: model.Membership{Tier: model.TierBronze},
		IsActive:   true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	util.Logger.Info("谷歌账号自动注册成功", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// uniqueUsername 用户名被占用时追加时间戳后缀
func (s *UserService) uniqueUsername(username string) string {
	taken, err := s.IsUsernameTaken(username)
	if err != nil || !taken {
		return username
	}
	return username + "_" + time.Now().Format("060102150405")
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id primitive.ObjectID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}
	return user, nil
}

// UpdateProfile 更新用户资料，只允许修改用户名、头像和简介
func (s *UserService) UpdateProfile(userID primitive.ObjectID, username, avatarURL, bio string) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		taken, err := s.IsUsernameTaken(username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errors.New(errors.ErrUserExists, "username already exists")
		}
		user.Username = username
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}
	if bio != "" {
		user.Bio = bio
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpgradeToGold 将用户升级为金牌会员。
// 已经是有效金牌会员的用户需要先等当前会员到期，防止误续费。
func (s *UserService) UpgradeToGold(userID primitive.ObjectID) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsGoldMember() {
		return nil, errors.New(errors.ErrAlreadyGoldMember, "user is already a gold member")
	}

	user.UpgradeToGold(config.AppConfig.GoldMembershipDays)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	util.Logger.Info("用户升级为金牌会员",
		zap.String("user_id", user.ID.Hex()),
		zap.Timep("expires_at", user.Membership.ExpiresAt))
	return user, nil
}

// DeactivateUser 停用账号（软删除）
func (s *UserService) DeactivateUser(userID primitive.ObjectID) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.userRepo.Update(user)
}

// RequestPasswordReset 发起密码重置流程
func (s *UserService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}
	return s.emailService.SendPasswordResetEmail(email)
}

// ResetPassword 通过重置令牌设置新密码
func (s *UserService) ResetPassword(token, newPassword string) error {
	email, err := s.emailService.VerifyPasswordResetToken(token)
	if err != nil {
		util.Logger.Error("验证密码重置令牌失败", zap.Error(err))
		return errors.New(errors.ErrUnauthorized, "invalid or expired token")
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New(errors.ErrUserNotFound, "user not found")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		util.Logger.Error("生成密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(user); err != nil {
		util.Logger.Error("更新用户密码失败", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		return err
	}

	util.Logger.Info("密码重置成功", zap.String("user_id", user.ID.Hex()))
	return nil
}

// Logout 将当前令牌加入黑名单，黑名单保留24小时
func (s *UserService) Logout(token string) {
	s.blacklistMutex.Lock()
	s.tokenBlacklist[token] = time.Now().Add(24 * time.Hour)
	s.blacklistMutex.Unlock()
	util.Logger.Info("用户注销，令牌已加入黑名单")
}

// IsTokenBlacklisted 检查令牌是否在黑名单中，过期条目顺手清理
func (s *UserService) IsTokenBlacklisted(token string) bool {
	s.blacklistMutex.RLock()
	expiry, exists := s.tokenBlacklist[token]
	s.blacklistMutex.RUnlock()
	if !exists {
		return false
	}
	if time.Now().After(expiry) {
		s.blacklistMutex.Lock()
		delete(s.tokenBlacklist, token)
		s.blacklistMutex.Unlock()
		return false
	}
	return true
}

type UserServiceInterface interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, error)
	LoginWithGoogle(googleID, email, username string) (*model.User, error)
	GetUserByID(id primitive.ObjectID) (*model.User, error)
	RequestPasswordReset(email string) error
	ResetPassword(token, newPassword string) error
	Logout(token string)
	IsTokenBlacklisted(token string) bool
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)
