package interfaces

import (
	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TagRepository 接口定义了标签仓库应该实现的方法
type TagRepository interface {
	Create(tag *model.Tag) error
	FindByName(name string) (*model.Tag, error)
	FindByID(id primitive.ObjectID) (*model.Tag, error)
	List(page, pageSize int, sortBy string) ([]*model.Tag, int64, error)
	All() ([]*model.Tag, error)
	IncrementUsage(name string, delta int64) error
	SetUsage(name string, count int64) error
	Count() (int64, error)
}
