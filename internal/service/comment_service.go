package service

import (
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"
	"forum-backend/internal/ws"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CommentService 处理评论的发布、举报和审核
type CommentService struct {
	commentRepo interfaces.CommentRepository
	postRepo    interfaces.PostRepository
	userRepo    interfaces.UserRepository
	hub         *ws.Hub
}

// NewCommentService 创建一个新的 CommentService 实例
func NewCommentService(
	commentRepo interfaces.CommentRepository,
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	hub *ws.Hub,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		hub:         hub,
	}
}

// ModerationResult 批量审核中单条评论的处理结果
type ModerationResult struct {
	CommentID string `json:"comment_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// CreateComment 在帖子下发表评论，新评论默认通过审核。
// 私有帖子只有作者和管理员能评论。
func (s *CommentService) CreateComment(author *model.User, postID primitive.ObjectID, body string) (*model.Comment, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsActive {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if !post.IsPublic() && !post.IsOwnedBy(author.ID) && !author.IsAdmin() {
		return nil, errors.New(errors.ErrPrivatePost, "post is private")
	}

	comment := &model.Comment{
		PostID:           postID,
		AuthorID:         author.ID,
		Body:             body,
		ModerationStatus: model.ModerationApproved,
		IsActive:         true,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	comment.Author = author
	if post.IsPublic() {
		s.hub.BroadcastEvent("comment_created", comment)
	}
	return comment, nil
}

// GetComment 获取单条评论
func (s *CommentService) GetComment(id primitive.ObjectID) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if comment == nil || !comment.IsActive {
		return nil, errors.New(errors.ErrCommentNotFound, "comment not found")
	}
	return comment, nil
}

// UpdateComment 修改评论正文，只允许作者本人或管理员操作
func (s *CommentService) UpdateComment(actor *model.User, commentID primitive.ObjectID, body string) (*model.Comment, error) {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsOwnedBy(actor.ID) && !actor.IsAdmin() {
		return nil, errors.New(errors.ErrForbidden, "not the author of this comment")
	}

	comment.Body = body
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	s.attachAuthors([]*model.Comment{comment})
	return comment, nil
}

// DeleteComment 软删除评论，只允许作者本人或管理员操作
func (s *CommentService) DeleteComment(actor *model.User, commentID primitive.ObjectID) error {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return err
	}
	if !comment.IsOwnedBy(actor.ID) && !actor.IsAdmin() {
		return errors.New(errors.ErrForbidden, "not the author of this comment")
	}
	return s.commentRepo.SoftDelete(commentID)
}

// ListByPost 分页返回帖子下的活跃评论
func (s *CommentService) ListByPost(postID primitive.ObjectID, page, pageSize int) ([]*model.Comment, int64, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, 0, err
	}
	if post == nil || !post.IsActive {
		return nil, 0, errors.New(errors.ErrPostNotFound, "post not found")
	}

	comments, total, err := s.commentRepo.ListByPost(postID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	s.attachAuthors(comments)
	return comments, total, nil
}

// ReportComment 举报评论。同一用户重复举报返回冲突错误，
// 举报列表和审核状态在一次单文档更新中落库。
func (s *CommentService) ReportComment(reporterID, commentID primitive.ObjectID, feedback string) error {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return err
	}

	if err := comment.AddReport(reporterID, feedback); err != nil {
		if err == model.ErrDuplicateReport {
			return errors.New(errors.ErrDuplicateReport, "you have already reported this comment")
		}
		return err
	}

	if err := s.commentRepo.UpdateModeration(comment); err != nil {
		return err
	}

	util.Logger.Info("收到评论举报",
		zap.String("comment_id", commentID.Hex()),
		zap.String("reporter_id", reporterID.Hex()),
		zap.Int("report_count", len(comment.Reports)))
	return nil
}

// Moderate 将评论审核状态直接置为 approved、pending、flagged 或 removed，
// 举报列表不受影响
func (s *CommentService) Moderate(commentID primitive.ObjectID, status string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, errors.New(errors.ErrCommentNotFound, "comment not found")
	}

	if !comment.SetModerationStatus(status) {
		return nil, errors.New(errors.ErrValidation, "unknown moderation status")
	}

	if err := s.commentRepo.UpdateModeration(comment); err != nil {
		return nil, err
	}

	util.Logger.Info("评论审核完成",
		zap.String("comment_id", commentID.Hex()),
		zap.String("status", comment.ModerationStatus))
	return comment, nil
}

// BulkModerate 批量审核评论：按动作对照表更新评论状态并处理所有
// 待处理举报，逐条执行，单条失败不影响其余评论
func (s *CommentService) BulkModerate(commentIDs []string, action string) []ModerationResult {
	results := make([]ModerationResult, 0, len(commentIDs))
	for _, rawID := range commentIDs {
		id, err := primitive.ObjectIDFromHex(rawID)
		if err != nil {
			results = append(results, ModerationResult{CommentID: rawID, Error: "invalid comment id"})
			continue
		}
		if err := s.applyAction(id, action); err != nil {
			results = append(results, ModerationResult{CommentID: rawID, Error: err.Error()})
			continue
		}
		results = append(results, ModerationResult{CommentID: rawID, Success: true})
	}
	return results
}

func (s *CommentService) applyAction(commentID primitive.ObjectID, action string) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return errors.New(errors.ErrCommentNotFound, "comment not found")
	}

	if !comment.ApplyModerationAction(action) {
		return errors.New(errors.ErrValidation, "unknown moderation action")
	}

	if err := s.commentRepo.UpdateModeration(comment); err != nil {
		return err
	}

	util.Logger.Info("评论审核完成",
		zap.String("comment_id", commentID.Hex()),
		zap.String("action", action),
		zap.String("status", comment.ModerationStatus))
	return nil
}

// ListReported 分页返回带举报的评论，供管理后台审核
func (s *CommentService) ListReported(page, pageSize int) ([]*model.Comment, int64, error) {
	comments, total, err := s.commentRepo.ListReported(page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	s.attachAuthors(comments)
	return comments, total, nil
}

// attachAuthors 批量装配评论作者信息，查询失败的跳过
func (s *CommentService) attachAuthors(comments []*model.Comment) {
	cache := make(map[primitive.ObjectID]*model.User)
	for _, comment := range comments {
		if comment.Author != nil {
			continue
		}
		author, ok := cache[comment.AuthorID]
		if !ok {
			var err error
			author, err = s.userRepo.FindByID(comment.AuthorID)
			if err != nil {
				util.Logger.Error("装配评论作者失败",
					zap.String("comment_id", comment.ID.Hex()), zap.Error(err))
				continue
			}
			cache[comment.AuthorID] = author
		}
		comment.Author = author
	}
}
