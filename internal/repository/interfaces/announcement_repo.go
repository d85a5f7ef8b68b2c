package interfaces

import (
	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnnouncementRepository 接口定义了公告仓库应该实现的方法
type AnnouncementRepository interface {
	Create(announcement *model.Announcement) error
	FindByID(id primitive.ObjectID) (*model.Announcement, error)
	Update(announcement *model.Announcement) error
	SoftDelete(id primitive.ObjectID) error
	ListActive() ([]*model.Announcement, error)
	ListAll(page, pageSize int) ([]*model.Announcement, int64, error)
	DeactivateExpired() (int64, error)
}
