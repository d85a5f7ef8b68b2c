package service

import (
	"log"

	"forum-backend/config"
	"forum-backend/internal/errors"
	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"
	"forum-backend/internal/util"
	"forum-backend/internal/ws"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PostService 处理帖子的发布、浏览、投票和删除
type PostService struct {
	postRepo      interfaces.PostRepository
	userRepo      interfaces.UserRepository
	tagService    *TagService
	searchService *SearchService
	hub           *ws.Hub
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	tagService *TagService,
	searchService *SearchService,
	hub *ws.Hub,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		userRepo:      userRepo,
		tagService:    tagService,
		searchService: searchService,
		hub:           hub,
	}
}

// ListPostsInput 帖子列表查询参数
type ListPostsInput struct {
	Page     int
	PageSize int
	Tag      string
	Search   string
	AuthorID primitive.ObjectID
	SortBy   string
}

// CreatePost 发布新帖子。青铜会员受活跃帖子数配额限制，
// 超限时返回带 postLimit 标记的错误供前端引导升级。
func (s *PostService) CreatePost(authorID primitive.ObjectID, title, body string, tags []string, visibility string) (*model.Post, error) {
	author, err := s.userRepo.FindByID(authorID)
	if err != nil {
		return nil, err
	}
	if author == nil || !author.IsActive {
		return nil, errors.New(errors.ErrUserNotFound, "user not found")
	}

	count, err := s.postRepo.CountActiveByAuthor(authorID)
	if err != nil {
		return nil, err
	}
	if !author.CanPost(int(count), config.AppConfig.BronzePostLimit) {
		return nil, errors.New(errors.ErrPostLimitReached, "active post limit reached, upgrade to gold for unlimited posts").
			WithDetail("postLimit", true)
	}

	normalized, err := s.tagService.EnsureTags(tags, authorID)
	if err != nil {
		return nil, err
	}

	if visibility != model.VisibilityPrivate {
		visibility = model.VisibilityPublic
	}

	post := &model.Post{
		Title:      title,
		Body:       body,
		AuthorID:   authorID,
		Tags:       normalized,
		Visibility: visibility,
		IsActive:   true,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	// 标签计数与帖子创建不在一个事务里，漂移由对账任务修正
	s.tagService.AdjustUsage(nil, normalized)

	post.Author = author
	if post.IsPublic() {
		s.hub.BroadcastEvent("post_created", post)
	}

	log.Printf("帖子发布成功：ID=%s 作者=%s", post.ID.Hex(), author.Username)
	return post, nil
}

// GetPost 获取帖子详情。私有帖子只有作者和管理员可见，
// 非作者的浏览会累加浏览量。
func (s *PostService) GetPost(id primitive.ObjectID, viewer *model.User) (*model.Post, error) {
	post, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsActive {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}

	if !s.canView(post, viewer) {
		return nil, errors.New(errors.ErrPrivatePost, "post is private")
	}

	if viewer == nil || !post.IsOwnedBy(viewer.ID) {
		if err := s.postRepo.IncrementViewCount(id); err != nil {
			util.Logger.Error("累加浏览量失败", zap.String("post_id", id.Hex()), zap.Error(err))
		} else {
			post.ViewCount++
		}
	}

	s.attachAuthors([]*model.Post{post})
	return post, nil
}

// canView 私有帖子只有作者本人和管理员能访问
func (s *PostService) canView(post *model.Post, viewer *model.User) bool {
	if post.IsPublic() {
		return true
	}
	if viewer == nil {
		return false
	}
	return post.IsOwnedBy(viewer.ID) || viewer.IsAdmin()
}

// UpdatePost 修改帖子，只允许作者本人或管理员操作
func (s *PostService) UpdatePost(actor *model.User, postID primitive.ObjectID, title, body string, tags []string, visibility string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsActive {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if !post.IsOwnedBy(actor.ID) && !actor.IsAdmin() {
		return nil, errors.New(errors.ErrForbidden, "not the author of this post")
	}

	if title != "" {
		post.Title = title
	}
	if body != "" {
		post.Body = body
	}
	if visibility == model.VisibilityPublic || visibility == model.VisibilityPrivate {
		post.Visibility = visibility
	}

	oldTags := post.Tags
	if tags != nil {
		normalized, err := s.tagService.EnsureTags(tags, actor.ID)
		if err != nil {
			return nil, err
		}
		post.Tags = normalized
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}

	if tags != nil {
		s.tagService.AdjustUsage(oldTags, post.Tags)
	}

	s.attachAuthors([]*model.Post{post})
	return post, nil
}

// DeletePost 软删除帖子并回收标签计数，只允许作者本人或管理员操作
func (s *PostService) DeletePost(actor *model.User, postID primitive.ObjectID) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return err
	}
	if post == nil || !post.IsActive {
		return errors.New(errors.ErrPostNotFound, "post not found")
	}
	if !post.IsOwnedBy(actor.ID) && !actor.IsAdmin() {
		return errors.New(errors.ErrForbidden, "not the author of this post")
	}

	if err := s.postRepo.SoftDelete(postID); err != nil {
		return err
	}

	s.tagService.AdjustUsage(post.Tags, nil)

	util.Logger.Info("帖子已删除",
		zap.String("post_id", postID.Hex()),
		zap.String("operator", actor.ID.Hex()))
	return nil
}

// ListPosts 分页返回公开的活跃帖子。带搜索词的请求会被计入热搜统计。
func (s *PostService) ListPosts(input ListPostsInput) ([]*model.Post, int64, error) {
	if input.Search != "" {
		s.searchService.RecordSearch(input.Search)
	}

	posts, total, err := s.postRepo.List(interfaces.PostListOptions{
		Page:       input.Page,
		PageSize:   input.PageSize,
		Tag:        model.NormalizeTagName(input.Tag),
		Search:     input.Search,
		AuthorID:   input.AuthorID,
		SortBy:     input.SortBy,
		OnlyActive: true,
		OnlyPublic: true,
	})
	if err != nil {
		return nil, 0, err
	}

	s.attachAuthors(posts)
	return posts, total, nil
}

// ListByAuthor 返回指定作者的活跃帖子。
// 作者本人和管理员能看到私有帖子，其他人只能看到公开的。
func (s *PostService) ListByAuthor(authorID primitive.ObjectID, viewer *model.User, page, pageSize int) ([]*model.Post, int64, error) {
	onlyPublic := true
	if viewer != nil && (viewer.ID == authorID || viewer.IsAdmin()) {
		onlyPublic = false
	}

	posts, total, err := s.postRepo.List(interfaces.PostListOptions{
		Page:       page,
		PageSize:   pageSize,
		AuthorID:   authorID,
		OnlyActive: true,
		OnlyPublic: onlyPublic,
	})
	if err != nil {
		return nil, 0, err
	}

	s.attachAuthors(posts)
	return posts, total, nil
}

// Vote 对帖子投票。重复投同类型票等价于撤票，改投异类型票直接生效。
// 投票列表和票数缓存在一次单文档更新中落库。
func (s *PostService) Vote(voter *model.User, postID primitive.ObjectID, voteType string) (*model.Post, error) {
	if voteType != model.VoteUp && voteType != model.VoteDown {
		return nil, errors.New(errors.ErrValidation, "vote type must be up or down")
	}

	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsActive {
		return nil, errors.New(errors.ErrPostNotFound, "post not found")
	}
	if !s.canView(post, voter) {
		return nil, errors.New(errors.ErrPrivatePost, "post is private")
	}

	if existing, ok := post.VoteOf(voter.ID); ok && existing == voteType {
		post.RetractVote(voter.ID)
	} else {
		post.ApplyVote(voter.ID, voteType)
	}

	if err := s.postRepo.UpdateVotes(post); err != nil {
		return nil, err
	}

	if post.IsPublic() {
		s.hub.BroadcastEvent("post_voted", map[string]interface{}{
			"post_id":    post.ID.Hex(),
			"up_votes":   post.UpVotes,
			"down_votes": post.DownVotes,
		})
	}

	s.attachAuthors([]*model.Post{post})
	return post, nil
}

// attachAuthors 批量装配帖子作者信息，查询失败的跳过
func (s *PostService) attachAuthors(posts []*model.Post) {
	cache := make(map[primitive.ObjectID]*model.User)
	for _, post := range posts {
		if post.Author != nil {
			continue
		}
		author, ok := cache[post.AuthorID]
		if !ok {
			var err error
			author, err = s.userRepo.FindByID(post.AuthorID)
			if err != nil {
				util.Logger.Error("装配帖子作者失败",
					zap.String("post_id", post.ID.Hex()), zap.Error(err))
				continue
			}
			cache[post.AuthorID] = author
		}
		post.Author = author
	}
}
