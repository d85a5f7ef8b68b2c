package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 会员等级
const (
	TierBronze = "bronze"
	TierGold   = "gold"
)

// BadgeGoldMember 金牌会员徽章，升级时一次性授予
const BadgeGoldMember = "gold_member"

// Badge 用户徽章
type Badge struct {
	Name      string    `bson:"name" json:"name"`
	AwardedAt time.Time `bson:"awarded_at" json:"awarded_at"`
}

// Membership 会员信息，金牌会员有时效
type Membership struct {
	Tier      string     `bson:"tier" json:"tier"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// User 结构体表示用户模型
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"` // 密码哈希不应在JSON中暴露
	GoogleID     string             `bson:"google_id,omitempty" json:"-"`
	AvatarURL    string             `bson:"avatar_url,omitempty" json:"avatar_url"`
	Bio          string             `bson:"bio,omitempty" json:"bio"`
	Role         string             `bson:"role" json:"role"`
	Membership   Membership         `bson:"membership" json:"membership"`
	Badges       []Badge            `bson:"badges,omitempty" json:"badges"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLoginAt  *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// CanLogin 检查账户是否具备登录凭证：密码或第三方账号至少有一个
func (u *User) CanLogin() bool {
	return u.PasswordHash != "" || u.GoogleID != ""
}

// IsGoldMember 判断当前是否为有效的金牌会员。
// 等级为 gold 且未过期（未设置过期时间视为长期有效）才算有效。
func (u *User) IsGoldMember() bool {
	if u.Membership.Tier != TierGold {
		return false
	}
	if u.Membership.ExpiresAt == nil {
		return true
	}
	return time.Now().Before(*u.Membership.ExpiresAt)
}

// EffectiveTier 返回当前生效的会员等级，金牌过期后降为铜牌
func (u *User) EffectiveTier() string {
	if u.IsGoldMember() {
		return TierGold
	}
	return TierBronze
}

// IsAdmin 判断是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanPost 发帖限制规则：金牌会员不限量，铜牌会员活跃帖子数必须小于上限
func (u *User) CanPost(activePostCount, limit int) bool {
	if u.IsGoldMember() {
		return true
	}
	return activePostCount < limit
}

// HasBadge 检查是否已拥有指定徽章
func (u *User) HasBadge(name string) bool {
	for _, b := range u.Badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// UpgradeToGold 升级为金牌会员：等级设为 gold，过期时间为当前时间加 days 天。
// 徽章只授予一次；过期时间每次调用都会重新计算，调用方需要
// 先检查 IsGoldMember 防止重复升级。
func (u *User) UpgradeToGold(days int) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(days) * 24 * time.Hour)
	u.Membership.Tier = TierGold
	u.Membership.ExpiresAt = &expiresAt
	if !u.HasBadge(BadgeGoldMember) {
		u.Badges = append(u.Badges, Badge{Name: BadgeGoldMember, AwardedAt: now})
	}
}
