package user

import (
	"fmt"
	"strconv"

	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/service"
	"forum-backend/internal/storage"
	"forum-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProfileHandler 处理用户资料相关的HTTP请求
type ProfileHandler struct {
	userService *service.UserService
	postService *service.PostService
	storage     storage.FileStorage
}

func NewProfileHandler(userService *service.UserService, postService *service.PostService, storage storage.FileStorage) *ProfileHandler {
	return &ProfileHandler{userService, postService, storage}
}

// GetProfile 返回当前登录用户的资料
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

// UpdateProfile 更新当前用户的资料
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var updateData struct {
		Username  string `json:"username"`
		Bio       string `json:"bio"`
		AvatarURL string `json:"avatar_url"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		util.Logger.Warn("更新用户资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, updateData.Username, updateData.AvatarURL, updateData.Bio)
	if err != nil {
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "资料更新成功")
}

// UploadAvatar 上传当前用户的头像
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	file, err := c.FormFile("avatar")
	if err != nil {
		util.Logger.Error("获取上传文件失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("avatars/%s/%s", userID.Hex(), filename)

	avatarURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传头像失败", err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, "", avatarURL, "")
	if err != nil {
		util.Logger.Error("更新用户头像失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"avatar_url": user.AvatarURL,
	}, "头像上传成功")
}

// GetUser 返回指定用户的公开资料
func (h *ProfileHandler) GetUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	// 注销用户的资料对外不可见
	if !user.IsActive {
		errors.HandleError(c, errors.New(errors.ErrUserNotFound, "user not found"))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "")
}

// GetUserPosts 返回指定用户发布的帖子，非本人只能看到公开帖
func (h *ProfileHandler) GetUserPosts(c *gin.Context) {
	authorID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 50 {
		pageSize = 50
	}

	var viewer *model.User
	if v, ok := c.Get("current_user"); ok {
		viewer = v.(*model.User)
	}

	posts, total, err := h.postService.ListByAuthor(authorID, viewer, page, pageSize)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, posts, errors.NewPagination(page, pageSize, total), "")
}

// UpgradeMembership 将当前用户升级为黄金会员
func (h *ProfileHandler) UpgradeMembership(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	user, err := h.userService.UpgradeToGold(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	util.Logger.Info("用户升级为黄金会员", zap.String("userID", userID.Hex()))
	errors.HandleSuccess(c, gin.H{
		"user": user,
	}, "已升级为黄金会员")
}

// DeactivateAccount 注销当前用户的账户
func (h *ProfileHandler) DeactivateAccount(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	if err := h.userService.DeactivateUser(userID); err != nil {
		util.Logger.Error("注销账户失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	token := c.GetString("token")
	h.userService.Logout(token)

	errors.HandleSuccess(c, nil, "账户已成功注销")
}
