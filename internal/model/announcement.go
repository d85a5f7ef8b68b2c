package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 公告受众
const (
	AudienceAll     = "all"
	AudienceMembers = "members"
	AudienceAdmins  = "admins"
)

// 公告优先级
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Announcement 结构体表示站内公告模型
type Announcement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Priority  string             `bson:"priority" json:"priority"`
	Audience  string             `bson:"audience" json:"audience"`
	IsPinned  bool               `bson:"is_pinned" json:"is_pinned"`
	ExpiresAt *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsExpired 判断公告是否已过期，没有过期时间视为永久有效
func (a *Announcement) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// VisibleTo 判断公告对指定用户是否可见。
// 会员公告只有有效期内的黄金会员能看到，管理员公告只有管理员能看到，
// 匿名用户只能看到全员公告。
func (a *Announcement) VisibleTo(u *User) bool {
	if !a.IsActive || a.IsExpired(time.Now()) {
		return false
	}
	switch a.Audience {
	case AudienceAll:
		return true
	case AudienceMembers:
		return u != nil && (u.IsGoldMember() || u.IsAdmin())
	case AudienceAdmins:
		return u != nil && u.IsAdmin()
	default:
		return false
	}
}

// PriorityRank 优先级排序权重，数值越大越靠前
func (a *Announcement) PriorityRank() int {
	switch a.Priority {
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}
