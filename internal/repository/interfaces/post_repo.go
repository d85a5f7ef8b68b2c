package interfaces

import (
	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostListOptions 帖子列表查询条件
type PostListOptions struct {
	Page       int
	PageSize   int
	Tag        string
	Search     string
	AuthorID   primitive.ObjectID
	SortBy     string
	OnlyActive bool
	OnlyPublic bool
}

// PostRepository 接口定义了帖子仓库应该实现的方法
type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id primitive.ObjectID) (*model.Post, error)
	Update(post *model.Post) error
	UpdateVotes(post *model.Post) error
	SoftDelete(id primitive.ObjectID) error
	List(opts PostListOptions) ([]*model.Post, int64, error)
	IncrementViewCount(id primitive.ObjectID) error
	CountActiveByAuthor(authorID primitive.ObjectID) (int64, error)
	Count() (int64, error)
	CountActive() (int64, error)
	TagUsageCounts() (map[string]int64, error)
}
