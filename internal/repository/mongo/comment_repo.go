package mongo

import (
	"log"
	"time"

	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// commentRepository 实现了 CommentRepository 接口
type commentRepository struct {
	coll *mongo.Collection
}

// NewCommentRepository 创建一个新的 commentRepository 实例
func NewCommentRepository(db *mongo.Database) *commentRepository {
	return &commentRepository{db.Collection(commentsCollection)}
}

// Create 创建一条新评论
func (r *commentRepository) Create(comment *model.Comment) error {
	ctx, cancel := opContext()
	defer cancel()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, comment)
	if err != nil {
		log.Printf("创建评论失败：%v", err)
		return err
	}
	comment.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID 通过ID查找评论
func (r *commentRepository) FindByID(id primitive.ObjectID) (*model.Comment, error) {
	ctx, cancel := opContext()
	defer cancel()

	var comment model.Comment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Update 更新评论正文
func (r *commentRepository) Update(comment *model.Comment) error {
	ctx, cancel := opContext()
	defer cancel()

	comment.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"body":       comment.Body,
		"updated_at": comment.UpdatedAt,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": comment.ID}, update)
	return err
}

// UpdateModeration 单次写入举报列表、审核状态和激活标志，
// 依赖单文档更新的原子性保证它们一致
func (r *commentRepository) UpdateModeration(comment *model.Comment) error {
	ctx, cancel := opContext()
	defer cancel()

	comment.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"reports":           comment.Reports,
		"is_reported":       comment.IsReported,
		"moderation_status": comment.ModerationStatus,
		"is_active":         comment.IsActive,
		"updated_at":        comment.UpdatedAt,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": comment.ID}, update)
	if err != nil {
		log.Printf("更新评论审核状态失败：%v", err)
	}
	return err
}

// SoftDelete 将评论标记为失效
func (r *commentRepository) SoftDelete(id primitive.ObjectID) error {
	ctx, cancel := opContext()
	defer cancel()

	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// ListByPost 分页查找帖子下的活跃评论，按时间正序
func (r *commentRepository) ListByPost(postID primitive.ObjectID, page, pageSize int) ([]*model.Comment, int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	filter := bson.M{"post_id": postID, "is_active": true}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var comments []*model.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListReported 分页查找带举报的评论，待审核的排在前面
func (r *commentRepository) ListReported(page, pageSize int) ([]*model.Comment, int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	filter := bson.M{"is_reported": true}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "moderation_status", Value: -1}, {Key: "updated_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var comments []*model.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// CountPendingReports 聚合统计所有评论中待处理的举报条数
func (r *commentRepository) CountPendingReports() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$reports"}},
		{{Key: "$match", Value: bson.M{"reports.status": model.ReportPending}}},
		{{Key: "$count", Value: "total"}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var row struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, cursor.Err()
}

// Count 返回评论总数
func (r *commentRepository) Count() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

// CountActive 返回活跃评论数
func (r *commentRepository) CountActive() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"is_active": true})
}
