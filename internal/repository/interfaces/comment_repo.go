package interfaces

import (
	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentRepository 接口定义了评论仓库应该实现的方法
type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id primitive.ObjectID) (*model.Comment, error)
	Update(comment *model.Comment) error
	UpdateModeration(comment *model.Comment) error
	SoftDelete(id primitive.ObjectID) error
	ListByPost(postID primitive.ObjectID, page, pageSize int) ([]*model.Comment, int64, error)
	ListReported(page, pageSize int) ([]*model.Comment, int64, error)
	CountPendingReports() (int64, error)
	Count() (int64, error)
	CountActive() (int64, error)
}
