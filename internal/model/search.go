package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchRecord 结构体表示搜索词统计，按规范化后的搜索词去重累计
type SearchRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Term           string             `bson:"term" json:"term"`
	HitCount       int64              `bson:"hit_count" json:"hit_count"`
	LastSearchedAt time.Time          `bson:"last_searched_at" json:"last_searched_at"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// NormalizeSearchTerm 规范化搜索词：去首尾空白、折叠连续空白、转小写
func NormalizeSearchTerm(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}
