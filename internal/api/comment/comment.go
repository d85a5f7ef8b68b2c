package comment

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

// CommentHandler 处理评论相关的HTTP请求
type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create 在帖子下发表评论
func (h *CommentHandler) Create(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}
	author := c.MustGet("current_user").(*model.User)

	var req struct {
		Body string `json:"body" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Logger.Warn("发表评论失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	comment, err := h.commentService.CreateComment(author, postID, req.Body)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleCreated(c, gin.H{"comment": comment}, "评论发布成功")
}

// ListByPost 分页返回帖子下的评论，最早的排前面
func (h *CommentHandler) ListByPost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

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

	comments, total, err := h.commentService.ListByPost(postID, page, limit)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, comments, errors.NewPagination(page, limit, total), "")
}

// Update 修改评论正文
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的评论ID"))
		return
	}
	actor := c.MustGet("current_user").(*model.User)

	var req struct {
		Body string `json:"body" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	comment, err := h.commentService.UpdateComment(actor, commentID, req.Body)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"comment": comment}, "评论更新成功")
}

// Delete 软删除评论
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的评论ID"))
		return
	}
	actor := c.MustGet("current_user").(*model.User)

	if err := h.commentService.DeleteComment(actor, commentID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "评论删除成功")
}

// Report 举报评论，同一用户对同一评论只能举报一次
func (h *CommentHandler) Report(c *gin.Context) {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的评论ID"))
		return
	}
	userID := c.MustGet("user_id").(primitive.ObjectID)

	var req struct {
		Feedback string `json:"feedback" binding:"required,min=1,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.commentService.ReportComment(userID, commentID, req.Feedback); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "举报已提交")
}
