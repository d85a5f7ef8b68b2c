package mongo

import (
	"time"

	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tagRepository 实现了 TagRepository 接口
type tagRepository struct {
	coll *mongo.Collection
}

// NewTagRepository 创建一个新的 tagRepository 实例
func NewTagRepository(db *mongo.Database) *tagRepository {
	return &tagRepository{db.Collection(tagsCollection)}
}

// Create 创建一个新标签
func (r *tagRepository) Create(tag *model.Tag) error {
	ctx, cancel := opContext()
	defer cancel()

	now := time.Now()
	tag.CreatedAt = now
	tag.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, tag)
	if err != nil {
		return err
	}
	tag.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByName 通过小写名称查找标签
func (r *tagRepository) FindByName(name string) (*model.Tag, error) {
	ctx, cancel := opContext()
	defer cancel()

	var tag model.Tag
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// FindByID 通过ID查找标签
func (r *tagRepository) FindByID(id primitive.ObjectID) (*model.Tag, error) {
	ctx, cancel := opContext()
	defer cancel()

	var tag model.Tag
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// List 分页查找激活标签，默认按使用次数倒序，sortBy 传 name 时按名称正序
func (r *tagRepository) List(page, pageSize int, sortBy string) ([]*model.Tag, int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	filter := bson.M{"is_active": true}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{{Key: "usage_count", Value: -1}, {Key: "name", Value: 1}}
	if sortBy == "name" {
		sort = bson.D{{Key: "name", Value: 1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var tags []*model.Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

// All 返回全部标签，供后台对账任务使用
func (r *tagRepository) All() ([]*model.Tag, error) {
	ctx, cancel := opContext()
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []*model.Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// IncrementUsage 按增量调整标签使用计数，delta 可以为负
func (r *tagRepository) IncrementUsage(name string, delta int64) error {
	ctx, cancel := opContext()
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"usage_count": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"name": name}, update)
	return err
}

// SetUsage 将标签使用计数直接改写为对账结果
func (r *tagRepository) SetUsage(name string, count int64) error {
	ctx, cancel := opContext()
	defer cancel()

	update := bson.M{"$set": bson.M{"usage_count": count, "updated_at": time.Now()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"name": name}, update)
	return err
}

// Count 返回标签总数
func (r *tagRepository) Count() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}
