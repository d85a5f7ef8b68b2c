package admin

import (
	"strconv"
	"time"

	"forum-backend/internal/errors"
	"forum-backend/internal/middleware"
	"forum-backend/internal/service"
	"forum-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminHandler 按功能模块组织管理后台的处理方法
type AdminHandler struct {
	adminService        *service.AdminService
	statsService        *service.StatsService
	commentService      *service.CommentService
	announcementService *service.AnnouncementService
	tagService          *service.TagService
	searchService       *service.SearchService
	errorMonitor        *middleware.ErrorMonitor
}

// NewAdminHandler 创建一个新的 AdminHandler 实例
func NewAdminHandler(
	adminService *service.AdminService,
	statsService *service.StatsService,
	commentService *service.CommentService,
	announcementService *service.AnnouncementService,
	tagService *service.TagService,
	searchService *service.SearchService,
	errorMonitor *middleware.ErrorMonitor,
) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		statsService:        statsService,
		commentService:      commentService,
		announcementService: announcementService,
		tagService:          tagService,
		searchService:       searchService,
		errorMonitor:        errorMonitor,
	}
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}

// 仪表盘

// Dashboard 汇总管理后台首页需要的统计数据、热门标签、
// 热搜词和错误计数
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsService.GetDashboardStats()
	if err != nil {
		util.Logger.Error("获取统计数据失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	topTags, _, err := h.tagService.ListTags(1, 10, "usage")
	if err != nil {
		util.Logger.Error("获取热门标签失败", zap.Error(err))
	}
	searches, err := h.searchService.PopularSearches(10)
	if err != nil {
		util.Logger.Error("获取热门搜索失败", zap.Error(err))
	}

	errors.HandleSuccess(c, gin.H{
		"stats":            stats,
		"top_tags":         topTags,
		"popular_searches": searches,
		"error_counts":     h.errorMonitor.GetErrorCounts(),
	}, "")
}

// 用户管理

// ListUsers 分页返回用户列表，支持按状态和关键词筛选
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	status := c.DefaultQuery("status", "")
	keyword := c.DefaultQuery("keyword", "")

	users, total, err := h.adminService.GetUsers(page, limit, status, keyword)
	if err != nil {
		util.Logger.Error("获取用户列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, users, errors.NewPagination(page, limit, total), "")
}

// SetUserRole 变更用户角色
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	var req struct {
		Role string `json:"role" binding:"required,oneof=user admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.adminService.SetUserRole(userID, req.Role)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"user": user}, "用户角色更新成功")
}

// SetUserStatus 启用或停用账号
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	user, err := h.adminService.SetUserActive(userID, *req.IsActive)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"user": user}, "账号状态已更新")
}

// 帖子管理

// ListPosts 返回包括私有和已删除在内的全部帖子，供后台排查
func (h *AdminHandler) ListPosts(c *gin.Context) {
	page, limit := parsePagination(c)

	posts, total, err := h.adminService.GetAllPosts(page, limit, c.Query("tag"), c.Query("q"))
	if err != nil {
		util.Logger.Error("获取帖子列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, posts, errors.NewPagination(page, limit, total), "")
}

// 评论审核

// ReportedComments 分页返回被举报的评论
func (h *AdminHandler) ReportedComments(c *gin.Context) {
	page, limit := parsePagination(c)

	comments, total, err := h.commentService.ListReported(page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, comments, errors.NewPagination(page, limit, total), "")
}

// ModerateComment 将单条评论置为指定的审核状态
func (h *AdminHandler) ModerateComment(c *gin.Context) {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的评论ID"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=approved pending flagged removed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	comment, err := h.commentService.Moderate(commentID, req.Status)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"comment": comment}, "评论审核完成")
}

// BulkModerate 批量审核评论，逐条返回处理结果
func (h *AdminHandler) BulkModerate(c *gin.Context) {
	var req struct {
		CommentIDs []string `json:"comment_ids" binding:"required,min=1,max=100"`
		Action     string   `json:"action" binding:"required,oneof=approve flag remove"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	results := h.commentService.BulkModerate(req.CommentIDs, req.Action)

	util.Logger.Info("批量审核评论",
		zap.String("action", req.Action),
		zap.Int("count", len(req.CommentIDs)))
	errors.HandleSuccess(c, gin.H{"results": results}, "")
}

// 公告管理

// ListAnnouncements 管理端公告列表，包含已下线和过期的
func (h *AdminHandler) ListAnnouncements(c *gin.Context) {
	page, limit := parsePagination(c)

	announcements, total, err := h.announcementService.ListAll(page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, announcements, errors.NewPagination(page, limit, total), "")
}

// CreateAnnouncement 发布公告
func (h *AdminHandler) CreateAnnouncement(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var req struct {
		Title     string     `json:"title" binding:"required,min=1,max=200"`
		Body      string     `json:"body" binding:"required"`
		Priority  string     `json:"priority" binding:"omitempty,oneof=low normal high"`
		Audience  string     `json:"audience" binding:"required,oneof=all members admins"`
		IsPinned  bool       `json:"is_pinned"`
		ExpiresAt *time.Time `json:"expires_at" binding:"omitempty,future_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	announcement, err := h.announcementService.Create(userID, service.AnnouncementInput{
		Title:     req.Title,
		Body:      req.Body,
		Priority:  req.Priority,
		Audience:  req.Audience,
		IsPinned:  req.IsPinned,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleCreated(c, gin.H{"announcement": announcement}, "公告发布成功")
}

// UpdateAnnouncement 修改公告。is_pinned 按请求里的值整体覆盖，
// 其余字段传空保持不变。
func (h *AdminHandler) UpdateAnnouncement(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的公告ID"))
		return
	}

	var req struct {
		Title     string     `json:"title" binding:"omitempty,max=200"`
		Body      string     `json:"body"`
		Priority  string     `json:"priority" binding:"omitempty,oneof=low normal high"`
		Audience  string     `json:"audience" binding:"omitempty,oneof=all members admins"`
		IsPinned  bool       `json:"is_pinned"`
		ExpiresAt *time.Time `json:"expires_at" binding:"omitempty,future_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	announcement, err := h.announcementService.Update(id, service.AnnouncementInput{
		Title:     req.Title,
		Body:      req.Body,
		Priority:  req.Priority,
		Audience:  req.Audience,
		IsPinned:  req.IsPinned,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"announcement": announcement}, "公告更新成功")
}

// DeleteAnnouncement 下线公告
func (h *AdminHandler) DeleteAnnouncement(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的公告ID"))
		return
	}

	if err := h.announcementService.Delete(id); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "公告已下线")
}

// 标签管理

// CreateTag 手工创建标签，name 必须是规范化后的小写形式
func (h *AdminHandler) CreateTag(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var req struct {
		Name string `json:"name" binding:"required,tagname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	tag, err := h.tagService.CreateTag(userID, req.Name)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleCreated(c, gin.H{"tag": tag}, "标签创建成功")
}

// 系统管理

// GetErrors 返回错误监控的聚合统计
func (h *AdminHandler) GetErrors(c *gin.Context) {
	errors.HandleSuccess(c, h.errorMonitor.GetAnalytics(), "")
}
