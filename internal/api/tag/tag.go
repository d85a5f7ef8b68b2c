package tag

import (
	"strconv"

	"forum-backend/internal/errors"
	"forum-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TagHandler 处理标签相关的HTTP请求
type TagHandler struct {
	tagService *service.TagService
}

func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// List 返回激活标签及其使用计数，sort 支持 usage 和 name
func (h *TagHandler) List(c *gin.Context) {
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

	tags, total, err := h.tagService.ListTags(page, limit, c.DefaultQuery("sort", "usage"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccessWithPagination(c, tags, errors.NewPagination(page, limit, total), "")
}
