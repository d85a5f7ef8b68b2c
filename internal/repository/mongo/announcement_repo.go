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

// announcementRepository 实现了 AnnouncementRepository 接口
type announcementRepository struct {
	coll *mongo.Collection
}

// NewAnnouncementRepository 创建一个新的 announcementRepository 实例
func NewAnnouncementRepository(db *mongo.Database) *announcementRepository {
	return &announcementRepository{db.Collection(announcementsCollection)}
}

// Create 发布一条新公告
func (r *announcementRepository) Create(announcement *model.Announcement) error {
	ctx, cancel := opContext()
	defer cancel()

	now := time.Now()
	announcement.CreatedAt = now
	announcement.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, announcement)
	if err != nil {
		log.Printf("创建公告失败：%v", err)
		return err
	}
	announcement.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID 通过ID查找公告
func (r *announcementRepository) FindByID(id primitive.ObjectID) (*model.Announcement, error) {
	ctx, cancel := opContext()
	defer cancel()

	var announcement model.Announcement
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&announcement)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &announcement, nil
}

// Update 更新公告内容
func (r *announcementRepository) Update(announcement *model.Announcement) error {
	ctx, cancel := opContext()
	defer cancel()

	announcement.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"title":      announcement.Title,
		"body":       announcement.Body,
		"priority":   announcement.Priority,
		"audience":   announcement.Audience,
		"is_pinned":  announcement.IsPinned,
		"expires_at": announcement.ExpiresAt,
		"is_active":  announcement.IsActive,
		"updated_at": announcement.UpdatedAt,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": announcement.ID}, update)
	return err
}

// SoftDelete 将公告标记为失效
func (r *announcementRepository) SoftDelete(id primitive.ObjectID) error {
	ctx, cancel := opContext()
	defer cancel()

	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// ListActive 返回所有未过期的激活公告，最新的在前，
// 受众过滤由服务层完成
func (r *announcementRepository) ListActive() ([]*model.Announcement, error) {
	ctx, cancel := opContext()
	defer cancel()

	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$gt": time.Now()}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var announcements []*model.Announcement
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

// ListAll 分页返回全部公告，供管理后台使用
func (r *announcementRepository) ListAll(page, pageSize int) ([]*model.Announcement, int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var announcements []*model.Announcement
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}

// DeactivateExpired 批量停用已过期的公告，返回停用条数
func (r *announcementRepository) DeactivateExpired() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	filter := bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$ne": nil, "$lte": time.Now()},
	}
	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}

	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		log.Printf("停用过期公告失败：%v", err)
		return 0, err
	}
	return result.ModifiedCount, nil
}
