package mongo

import (
	"time"

	"forum-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// searchRepository 实现了 SearchRepository 接口
type searchRepository struct {
	coll *mongo.Collection
}

// NewSearchRepository 创建一个新的 searchRepository 实例
func NewSearchRepository(db *mongo.Database) *searchRepository {
	return &searchRepository{db.Collection(searchesCollection)}
}

// RecordHit 累加搜索词命中次数，不存在则插入新记录
func (r *searchRepository) RecordHit(term string) error {
	ctx, cancel := opContext()
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$inc":         bson.M{"hit_count": 1},
		"$set":         bson.M{"last_searched_at": now},
		"$setOnInsert": bson.M{"term": term, "created_at": now},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.coll.UpdateOne(ctx, bson.M{"term": term}, update, opts)
	return err
}

// TopByHits 返回命中次数最高的搜索词
func (r *searchRepository) TopByHits(limit int) ([]*model.SearchRecord, error) {
	ctx, cancel := opContext()
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "hit_count", Value: -1}, {Key: "last_searched_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.SearchRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteStale 删除最后一次搜索早于指定时间的记录，返回删除条数
func (r *searchRepository) DeleteStale(before time.Time) (int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.M{"last_searched_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Count 返回搜索词总数
func (r *searchRepository) Count() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}
