package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 评论审核状态
const (
	ModerationApproved = "approved"
	ModerationPending  = "pending"
	ModerationFlagged  = "flagged"
	ModerationRemoved  = "removed"
)

// 举报处理状态
const (
	ReportPending   = "pending"
	ReportDismissed = "dismissed"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
)

// 批量审核动作
const (
	ActionApprove = "approve"
	ActionFlag    = "flag"
	ActionRemove  = "remove"
)

// ErrDuplicateReport 同一用户对同一评论重复举报
var ErrDuplicateReport = errors.New("user has already reported this comment")

// Report 记录一次举报，内嵌在评论文档中
type Report struct {
	ReportedBy primitive.ObjectID `bson:"reported_by" json:"reported_by"`
	Feedback   string             `bson:"feedback" json:"feedback"`
	Status     string             `bson:"status" json:"status"`
	ReportedAt time.Time          `bson:"reported_at" json:"reported_at"`
}

// Comment 结构体表示评论模型。
// IsReported 是派生字段，举报列表非空时恒为 true；
// 标记为 removed 的评论同时失效。
type Comment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID           primitive.ObjectID `bson:"post_id" json:"post_id"`
	AuthorID         primitive.ObjectID `bson:"author_id" json:"author_id"`
	Author           *User              `bson:"-" json:"author,omitempty"`
	Body             string             `bson:"body" json:"body"`
	ModerationStatus string             `bson:"moderation_status" json:"moderation_status"`
	Reports          []Report           `bson:"reports,omitempty" json:"reports,omitempty"`
	IsReported       bool               `bson:"is_reported" json:"is_reported"`
	IsActive         bool               `bson:"is_active" json:"is_active"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsOwnedBy 判断评论是否属于指定用户
func (c *Comment) IsOwnedBy(userID primitive.ObjectID) bool {
	return c.AuthorID == userID
}

// HasReportFrom 判断指定用户是否已经举报过该评论
func (c *Comment) HasReportFrom(userID primitive.ObjectID) bool {
	for _, r := range c.Reports {
		if r.ReportedBy == userID {
			return true
		}
	}
	return false
}

// PendingReportCount 返回未处理举报数
func (c *Comment) PendingReportCount() int {
	n := 0
	for _, r := range c.Reports {
		if r.Status == ReportPending {
			n++
		}
	}
	return n
}

// AddReport 追加一条举报。同一用户重复举报返回 ErrDuplicateReport。
// 已通过审核的评论收到新举报后回到待审核状态。
func (c *Comment) AddReport(userID primitive.ObjectID, feedback string) error {
	if c.HasReportFrom(userID) {
		return ErrDuplicateReport
	}
	c.Reports = append(c.Reports, Report{
		ReportedBy: userID,
		Feedback:   feedback,
		Status:     ReportPending,
		ReportedAt: time.Now(),
	})
	c.IsReported = true
	if c.ModerationStatus == ModerationApproved {
		c.ModerationStatus = ModerationPending
	}
	return nil
}

// SetModerationStatus 直接设置审核状态，举报列表保持不变。
// removed 的评论同时置为失效。未知状态返回 false。
func (c *Comment) SetModerationStatus(status string) bool {
	switch status {
	case ModerationApproved, ModerationPending, ModerationFlagged, ModerationRemoved:
	default:
		return false
	}
	c.ModerationStatus = status
	if status == ModerationRemoved {
		c.IsActive = false
	}
	return true
}

// ModerationStatusForAction 返回批量审核动作对应的评论状态与举报处理状态。
// 未知动作返回 false。
func ModerationStatusForAction(action string) (moderation, report string, ok bool) {
	switch action {
	case ActionApprove:
		return ModerationApproved, ReportDismissed, true
	case ActionFlag:
		return ModerationFlagged, ReportReviewed, true
	case ActionRemove:
		return ModerationRemoved, ReportResolved, true
	default:
		return "", "", false
	}
}

// ApplyModerationAction 执行一次批量审核动作：更新评论状态，
// 把所有待处理举报置为动作对应的处理状态。未知动作返回 false。
func (c *Comment) ApplyModerationAction(action string) bool {
	moderation, report, ok := ModerationStatusForAction(action)
	if !ok {
		return false
	}
	c.SetModerationStatus(moderation)
	c.resolvePendingReports(report)
	return true
}

func (c *Comment) resolvePendingReports(status string) {
	for i := range c.Reports {
		if c.Reports[i].Status == ReportPending {
			c.Reports[i].Status = status
		}
	}
}
