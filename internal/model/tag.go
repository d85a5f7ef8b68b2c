package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag 结构体表示标签模型。
// Name 是小写唯一键，DisplayName 保留用户输入的原始大小写。
// UsageCount 记录引用该标签的活跃帖子数，由帖子服务增减，
// 并由后台任务定期对账修正。
type Tag struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	UsageCount  int64              `bson:"usage_count" json:"usage_count"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedBy   primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// NormalizeTagName 规范化标签名：去首尾空白并转小写
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
