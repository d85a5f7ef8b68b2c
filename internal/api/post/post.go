package post

import (
	"strconv"

	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/service"
	"forum-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PostHandler 处理帖子相关的HTTP请求
type PostHandler struct {
	postService   *service.PostService
	searchService *service.SearchService
}

func NewPostHandler(postService *service.PostService, searchService *service.SearchService) *PostHandler {
	return &PostHandler{
		postService:   postService,
		searchService: searchService,
	}
}

// currentUser 取可选认证中间件解析出的用户，匿名请求返回 nil
func currentUser(c *gin.Context) *model.User {
	if v, ok := c.Get("current_user"); ok {
		return v.(*model.User)
	}
	return nil
}

// parsePagination 解析 page 和 limit 查询参数并收敛到合法范围
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

// Create 发布新帖子
func (h *PostHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var req struct {
		Title      string   `json:"title" binding:"required,min=1,max=200"`
		Body       string   `json:"body" binding:"required"`
		Tags       []string `json:"tags" binding:"omitempty,max=5,dive,min=1,max=32"`
		Visibility string   `json:"visibility" binding:"omitempty,oneof=public private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Logger.Warn("发布帖子失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	post, err := h.postService.CreatePost(userID, req.Title, req.Body, req.Tags, req.Visibility)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleCreated(c, gin.H{"post": post}, "帖子发布成功")
}

// Get 获取帖子详情，私有帖子只有作者和管理员可见
func (h *PostHandler) Get(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	post, err := h.postService.GetPost(postID, currentUser(c))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"post": post}, "")
}

// List 分页返回公开帖子，支持标签、作者、关键词筛选和排序
func (h *PostHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)

	input := service.ListPostsInput{
		Page:     page,
		PageSize: limit,
		Tag:      c.Query("tag"),
		Search:   c.Query("q"),
		SortBy:   c.Query("sort"),
	}
	if author := c.Query("author"); author != "" {
		authorID, err := primitive.ObjectIDFromHex(author)
		if err != nil {
			errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的作者ID"))
			return
		}
		input.AuthorID = authorID
	}

	posts, total, err := h.postService.ListPosts(input)
	if err != nil {
		util.Logger.Error("获取帖子列表失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, posts, errors.NewPagination(page, limit, total), "")
}

// Update 修改帖子，只有作者本人或管理员可以操作
func (h *PostHandler) Update(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}
	actor := c.MustGet("current_user").(*model.User)

	var req struct {
		Title      string   `json:"title" binding:"omitempty,max=200"`
		Body       string   `json:"body"`
		Tags       []string `json:"tags" binding:"omitempty,max=5,dive,min=1,max=32"`
		Visibility string   `json:"visibility" binding:"omitempty,oneof=public private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	post, err := h.postService.UpdatePost(actor, postID, req.Title, req.Body, req.Tags, req.Visibility)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"post": post}, "帖子更新成功")
}

// Delete 软删除帖子
func (h *PostHandler) Delete(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}
	actor := c.MustGet("current_user").(*model.User)

	if err := h.postService.DeletePost(actor, postID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "帖子删除成功")
}

// Vote 对帖子投票，重复投同类型票视为撤票
func (h *PostHandler) Vote(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}
	voter := c.MustGet("current_user").(*model.User)

	var req struct {
		VoteType string `json:"vote_type" binding:"required,oneof=up down"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	post, err := h.postService.Vote(voter, postID, req.VoteType)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"post_id":    post.ID.Hex(),
		"up_votes":   post.UpVotes,
		"down_votes": post.DownVotes,
	}, "")
}

// PopularSearches 返回命中次数最高的搜索词
func (h *PostHandler) PopularSearches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	terms, err := h.searchService.PopularSearches(limit)
	if err != nil {
		util.Logger.Error("获取热门搜索失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"searches": terms}, "")
}
