package interfaces

import (
	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserListOptions 用户列表查询参数。Status 取 active 或 inactive，
// 空值表示不过滤；Keyword 对用户名和邮箱做不区分大小写的匹配。
type UserListOptions struct {
	Page     int
	PageSize int
	Status   string
	Keyword  string
}

// UserRepository 接口定义了用户仓库应该实现的方法
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id primitive.ObjectID) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByGoogleID(googleID string) (*model.User, error)
	Update(user *model.User) error
	FindAll(opts UserListOptions) ([]*model.User, int64, error)
	Count() (int64, error)
	CountActive() (int64, error)
	CountGoldMembers() (int64, error)
}
