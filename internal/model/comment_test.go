package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestAddReport 测试举报去重与状态回退
func TestAddReport(t *testing.T) {
	comment := &Comment{ModerationStatus: ModerationApproved, IsActive: true}
	reporter := primitive.NewObjectID()

	err := comment.AddReport(reporter, "spam")
	assert.NoError(t, err)
	assert.Len(t, comment.Reports, 1)
	assert.Equal(t, ReportPending, comment.Reports[0].Status)
	assert.True(t, comment.IsReported)

	// 已通过的评论收到举报后回到待审核
	assert.Equal(t, ModerationPending, comment.ModerationStatus)

	// 同一用户重复举报被拒绝，举报列表长度不变
	err = comment.AddReport(reporter, "spam again")
	assert.ErrorIs(t, err, ErrDuplicateReport)
	assert.Len(t, comment.Reports, 1)

	// 其他用户可以继续举报
	err = comment.AddReport(primitive.NewObjectID(), "abuse")
	assert.NoError(t, err)
	assert.Len(t, comment.Reports, 2)
	assert.Equal(t, 2, comment.PendingReportCount())
}

// TestSetModerationStatus 测试直接设置审核状态，举报列表不受影响
func TestSetModerationStatus(t *testing.T) {
	comment := &Comment{ModerationStatus: ModerationPending, IsActive: true}
	assert.NoError(t, comment.AddReport(primitive.NewObjectID(), "spam"))

	ok := comment.SetModerationStatus(ModerationFlagged)
	assert.True(t, ok)
	assert.Equal(t, ModerationFlagged, comment.ModerationStatus)
	assert.Equal(t, ReportPending, comment.Reports[0].Status)
	assert.True(t, comment.IsActive)

	// removed 状态连带评论失效
	ok = comment.SetModerationStatus(ModerationRemoved)
	assert.True(t, ok)
	assert.False(t, comment.IsActive)
}

// TestSetModerationStatusUnknown 测试未知审核状态被拒绝
func TestSetModerationStatusUnknown(t *testing.T) {
	comment := &Comment{ModerationStatus: ModerationPending, IsActive: true}
	ok := comment.SetModerationStatus("escalated")
	assert.False(t, ok)
	assert.Equal(t, ModerationPending, comment.ModerationStatus)
	assert.True(t, comment.IsActive)
}

// TestApplyModerationAction 测试批量审核动作对评论和举报的影响
func TestApplyModerationAction(t *testing.T) {
	cases := []struct {
		action       string
		moderation   string
		reportStatus string
		active       bool
	}{
		{ActionApprove, ModerationApproved, ReportDismissed, true},
		{ActionFlag, ModerationFlagged, ReportReviewed, true},
		{ActionRemove, ModerationRemoved, ReportResolved, false},
	}

	for _, tc := range cases {
		comment := &Comment{ModerationStatus: ModerationPending, IsActive: true}
		assert.NoError(t, comment.AddReport(primitive.NewObjectID(), "spam"))

		ok := comment.ApplyModerationAction(tc.action)
		assert.True(t, ok, tc.action)
		assert.Equal(t, tc.moderation, comment.ModerationStatus)
		assert.Equal(t, tc.reportStatus, comment.Reports[0].Status)
		assert.Equal(t, tc.active, comment.IsActive)
	}
}

// TestApplyModerationActionUnknown 测试未知动作被拒绝
func TestApplyModerationActionUnknown(t *testing.T) {
	comment := &Comment{ModerationStatus: ModerationPending, IsActive: true}
	assert.NoError(t, comment.AddReport(primitive.NewObjectID(), "spam"))

	ok := comment.ApplyModerationAction("escalate")
	assert.False(t, ok)
	assert.Equal(t, ModerationPending, comment.ModerationStatus)
	assert.Equal(t, ReportPending, comment.Reports[0].Status)
	assert.True(t, comment.IsActive)
}

// TestApplyModerationActionKeepsResolvedReports 测试已处理举报不被覆盖
func TestApplyModerationActionKeepsResolvedReports(t *testing.T) {
	comment := &Comment{ModerationStatus: ModerationPending, IsActive: true}
	assert.NoError(t, comment.AddReport(primitive.NewObjectID(), "spam"))
	comment.ApplyModerationAction(ActionApprove)
	assert.Equal(t, ReportDismissed, comment.Reports[0].Status)

	// 新举报到来后再次审核，只有待处理的举报被更新
	assert.NoError(t, comment.AddReport(primitive.NewObjectID(), "abuse"))
	comment.ApplyModerationAction(ActionRemove)
	assert.Equal(t, ReportDismissed, comment.Reports[0].Status)
	assert.Equal(t, ReportResolved, comment.Reports[1].Status)
	assert.False(t, comment.IsActive)
}
