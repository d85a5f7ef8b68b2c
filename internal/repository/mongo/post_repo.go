package mongo

import (
	"log"
	"regexp"
	"time"

	"forum-backend/internal/model"
	"forum-backend/internal/repository/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// postRepository 实现了 PostRepository 接口
type postRepository struct {
	coll *mongo.Collection
}

// NewPostRepository 创建一个新的 postRepository 实例
func NewPostRepository(db *mongo.Database) *postRepository {
	return &postRepository{db.Collection(postsCollection)}
}

// Create 创建一个新帖子
func (r *postRepository) Create(post *model.Post) error {
	log.Printf("尝试创建新帖子：%s", post.Title)
	ctx, cancel := opContext()
	defer cancel()

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		log.Printf("创建帖子失败：%v", err)
		return err
	}
	post.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID 通过ID查找帖子
func (r *postRepository) FindByID(id primitive.ObjectID) (*model.Post, error) {
	ctx, cancel := opContext()
	defer cancel()

	var post model.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Update 更新帖子的内容字段
func (r *postRepository) Update(post *model.Post) error {
	ctx, cancel := opContext()
	defer cancel()

	post.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"title":      post.Title,
		"body":       post.Body,
		"tags":       post.Tags,
		"visibility": post.Visibility,
		"is_active":  post.IsActive,
		"updated_at": post.UpdatedAt,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		log.Printf("更新帖子失败：%v", err)
	}
	return err
}

// UpdateVotes 单次写入投票列表和派生的票数缓存，
// 依赖单文档更新的原子性保证两者一致
func (r *postRepository) UpdateVotes(post *model.Post) error {
	ctx, cancel := opContext()
	defer cancel()

	update := bson.M{"$set": bson.M{
		"voters":     post.Voters,
		"up_votes":   post.UpVotes,
		"down_votes": post.DownVotes,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	return err
}

// SoftDelete 将帖子标记为失效
func (r *postRepository) SoftDelete(id primitive.ObjectID) error {
	log.Printf("尝试删除帖子：ID=%s", id.Hex())
	ctx, cancel := opContext()
	defer cancel()

	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// List 按条件分页查找帖子
func (r *postRepository) List(opts interfaces.PostListOptions) ([]*model.Post, int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	filter := bson.M{}
	if opts.OnlyActive {
		filter["is_active"] = true
	}
	if opts.OnlyPublic {
		filter["visibility"] = model.VisibilityPublic
	}
	if opts.Tag != "" {
		filter["tags"] = opts.Tag
	}
	if !opts.AuthorID.IsZero() {
		filter["author_id"] = opts.AuthorID
	}
	if opts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"body": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch opts.SortBy {
	case "top":
		sort = bson.D{{Key: "up_votes", Value: -1}, {Key: "created_at", Value: -1}}
	case "views":
		sort = bson.D{{Key: "view_count", Value: -1}, {Key: "created_at", Value: -1}}
	}

	findOpts := options.Find().
		SetSort(sort).
		SetSkip(int64((opts.Page - 1) * opts.PageSize)).
		SetLimit(int64(opts.PageSize))

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []*model.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// IncrementViewCount 浏览量加一
func (r *postRepository) IncrementViewCount(id primitive.ObjectID) error {
	ctx, cancel := opContext()
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"view_count": 1}})
	return err
}

// CountActiveByAuthor 返回指定作者的活跃帖子数，用于发帖配额检查
func (r *postRepository) CountActiveByAuthor(authorID primitive.ObjectID) (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"author_id": authorID, "is_active": true})
}

// Count 返回帖子总数
func (r *postRepository) Count() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

// CountActive 返回活跃帖子数
func (r *postRepository) CountActive() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"is_active": true})
}

// TagUsageCounts 聚合统计每个标签被活跃帖子引用的次数，
// 用于后台任务对账修正标签计数
func (r *postRepository) TagUsageCounts() (map[string]int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{"_id": "$tags", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Tag   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Tag] = row.Count
	}
	return counts, cursor.Err()
}
