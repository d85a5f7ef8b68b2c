package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestApplyVote 测试投票计数与去重
func TestApplyVote(t *testing.T) {
	post := &Post{}
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	// 两个用户各投一票
	post.ApplyVote(alice, VoteUp)
	post.ApplyVote(bob, VoteDown)
	assert.Equal(t, 1, post.UpVotes)
	assert.Equal(t, 1, post.DownVotes)
	assert.Len(t, post.Voters, 2)

	// 同一用户改票不会产生重复记录
	post.ApplyVote(alice, VoteDown)
	assert.Equal(t, 0, post.UpVotes)
	assert.Equal(t, 2, post.DownVotes)
	assert.Len(t, post.Voters, 2)

	vote, ok := post.VoteOf(alice)
	assert.True(t, ok)
	assert.Equal(t, VoteDown, vote)

	// 票数缓存始终等于投票记录数
	assert.Equal(t, len(post.Voters), post.UpVotes+post.DownVotes)
}

// TestRetractVote 测试撤票后计数恢复
func TestRetractVote(t *testing.T) {
	post := &Post{}
	alice := primitive.NewObjectID()

	post.ApplyVote(alice, VoteUp)
	assert.Equal(t, 1, post.UpVotes)

	post.RetractVote(alice)
	assert.Equal(t, 0, post.UpVotes)
	assert.Equal(t, 0, post.DownVotes)
	assert.Empty(t, post.Voters)

	_, ok := post.VoteOf(alice)
	assert.False(t, ok)

	// 撤销不存在的投票不报错也不改计数
	post.RetractVote(primitive.NewObjectID())
	assert.Equal(t, 0, post.UpVotes)
}

// TestPostScore 测试净票数计算
func TestPostScore(t *testing.T) {
	post := &Post{}
	for i := 0; i < 3; i++ {
		post.ApplyVote(primitive.NewObjectID(), VoteUp)
	}
	post.ApplyVote(primitive.NewObjectID(), VoteDown)
	assert.Equal(t, 2, post.Score())
}

// TestIsOwnedBy 测试帖子归属判断
func TestIsOwnedBy(t *testing.T) {
	author := primitive.NewObjectID()
	post := &Post{AuthorID: author}
	assert.True(t, post.IsOwnedBy(author))
	assert.False(t, post.IsOwnedBy(primitive.NewObjectID()))
}
