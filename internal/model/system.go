package model

// DashboardStats 管理后台统计数据
type DashboardStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	GoldMembers    int64 `json:"gold_members"`
	TotalPosts     int64 `json:"total_posts"`
	ActivePosts    int64 `json:"active_posts"`
	TotalComments  int64 `json:"total_comments"`
	ActiveComments int64 `json:"active_comments"`
	PendingReports int64 `json:"pending_reports"`
	TotalTags      int64 `json:"total_tags"`
}
