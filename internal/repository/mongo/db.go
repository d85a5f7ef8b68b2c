package mongo

import (
	"context"
	"time"

	"forum-backend/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// 集合名称
const (
	usersCollection         = "users"
	postsCollection         = "posts"
	commentsCollection      = "comments"
	tagsCollection          = "tags"
	announcementsCollection = "announcements"
	searchesCollection      = "searches"
)

const opTimeout = 5 * time.Second

// Connect 连接 MongoDB 并返回数据库句柄
func Connect(uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetMaxConnIdleTime(5 * time.Minute)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	// 测试数据库连接
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client.Database(dbName), nil
}

// EnsureIndexes 创建各集合需要的索引，重复创建是幂等的
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "moderation_status", Value: 1}}},
			{Keys: bson.D{{Key: "is_reported", Value: 1}}},
		},
		tagsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		searchesCollection: {
			{Keys: bson.D{{Key: "term", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "hit_count", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			util.Logger.Error("创建索引失败", zap.String("collection", name), zap.Error(err))
			return err
		}
	}
	return nil
}

// opContext 返回单次数据库操作使用的超时上下文
func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
