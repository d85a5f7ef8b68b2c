package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 投票类型
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// 帖子可见性
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Voter 记录单个用户对帖子的投票，每个用户至多一条
type Voter struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	VoteType string             `bson:"vote_type" json:"vote_type"`
	VotedAt  time.Time          `bson:"voted_at" json:"voted_at"`
}

// Post 结构体表示帖子模型。
// UpVotes/DownVotes 是 Voters 列表的缓存，任何变更后都必须重新统计，
// 不允许独立维护。
type Post struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Body       string             `bson:"body" json:"body"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	Author     *User              `bson:"-" json:"author,omitempty"`
	Tags       []string           `bson:"tags,omitempty" json:"tags"`
	UpVotes    int                `bson:"up_votes" json:"up_votes"`
	DownVotes  int                `bson:"down_votes" json:"down_votes"`
	Voters     []Voter            `bson:"voters,omitempty" json:"-"`
	Visibility string             `bson:"visibility" json:"visibility"`
	IsActive   bool               `bson:"is_active" json:"is_active"`
	ViewCount  int64              `bson:"view_count" json:"view_count"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsPublic 判断帖子是否公开
func (p *Post) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// IsOwnedBy 判断帖子是否属于指定用户
func (p *Post) IsOwnedBy(userID primitive.ObjectID) bool {
	return p.AuthorID == userID
}

// VoteOf 返回指定用户已有的投票类型，没有投过返回 false
func (p *Post) VoteOf(userID primitive.ObjectID) (string, bool) {
	for _, v := range p.Voters {
		if v.UserID == userID {
			return v.VoteType, true
		}
	}
	return "", false
}

// ApplyVote 先移除该用户已有的投票，再写入新投票，最后重新统计票数。
// 同类型重复投票的撤销语义由调用方负责：调用方检测到类型未变时
// 应改为调用 RetractVote。
func (p *Post) ApplyVote(userID primitive.ObjectID, voteType string) {
	p.removeVote(userID)
	p.Voters = append(p.Voters, Voter{
		UserID:   userID,
		VoteType: voteType,
		VotedAt:  time.Now(),
	})
	p.recountVotes()
}

// RetractVote 撤销该用户的投票并重新统计票数
func (p *Post) RetractVote(userID primitive.ObjectID) {
	p.removeVote(userID)
	p.recountVotes()
}

func (p *Post) removeVote(userID primitive.ObjectID) {
	voters := p.Voters[:0]
	for _, v := range p.Voters {
		if v.UserID != userID {
			voters = append(voters, v)
		}
	}
	p.Voters = voters
}

// recountVotes 从投票列表重新统计赞成/反对票数
func (p *Post) recountVotes() {
	up, down := 0, 0
	for _, v := range p.Voters {
		switch v.VoteType {
		case VoteUp:
			up++
		case VoteDown:
			down++
		}
	}
	p.UpVotes = up
	p.DownVotes = down
}

// Score 返回帖子净票数，用于按热度排序
func (p *Post) Score() int {
	return p.UpVotes - p.DownVotes
}
