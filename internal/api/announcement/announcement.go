package announcement

import (
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AnnouncementHandler 处理公告相关的HTTP请求
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// List 返回对当前访问者可见的公告，置顶的排最前。
// 匿名请求也能访问，只是看不到会员和管理员专属的公告。
func (h *AnnouncementHandler) List(c *gin.Context) {
	var viewer *model.User
	if v, ok := c.Get("current_user"); ok {
		viewer = v.(*model.User)
	}

	announcements, err := h.announcementService.ListVisible(viewer)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"announcements": announcements}, "")
}
