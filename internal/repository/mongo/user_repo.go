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

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{db.Collection(usersCollection)}
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	log.Printf("尝试创建新用户：%s", user.Email)
	ctx, cancel := opContext()
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		log.Printf("创建用户失败：%v", err)
		return err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	log.Printf("用户创建成功：ID=%s", user.ID.Hex())
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id primitive.ObjectID) (*model.User, error) {
	ctx, cancel := opContext()
	defer cancel()

	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	ctx, cancel := opContext()
	defer cancel()

	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	ctx, cancel := opContext()
	defer cancel()

	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByGoogleID 通过谷歌账号ID查找用户
func (r *userRepository) FindByGoogleID(googleID string) (*model.User, error) {
	ctx, cancel := opContext()
	defer cancel()

	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"google_id": googleID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Update 更新用户信息，整体替换可变字段
func (r *userRepository) Update(user *model.User) error {
	ctx, cancel := opContext()
	defer cancel()

	user.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"avatar_url":    user.AvatarURL,
		"bio":           user.Bio,
		"role":          user.Role,
		"membership":    user.Membership,
		"badges":        user.Badges,
		"is_active":     user.IsActive,
		"last_login_at": user.LastLoginAt,
		"updated_at":    user.UpdatedAt,
	}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		log.Printf("更新用户失败：%v", err)
	}
	return err
}

// FindAll 按条件分页查找用户，按注册时间倒序
func (r *userRepository) FindAll(opts interfaces.UserListOptions) ([]*model.User, int64, error) {
	ctx, cancel := opContext()
	defer cancel()

	filter := bson.M{}
	switch opts.Status {
	case "active":
		filter["is_active"] = true
	case "inactive":
		filter["is_active"] = false
	}
	if opts.Keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Keyword), Options: "i"}
		filter["$or"] = []bson.M{
			{"username": pattern},
			{"email": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((opts.Page - 1) * opts.PageSize)).
		SetLimit(int64(opts.PageSize))

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Count 返回用户总数
func (r *userRepository) Count() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}

// CountActive 返回激活用户数
func (r *userRepository) CountActive() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{"is_active": true})
}

// CountGoldMembers 返回有效金牌会员数，过期的不计入
func (r *userRepository) CountGoldMembers() (int64, error) {
	ctx, cancel := opContext()
	defer cancel()
	filter := bson.M{
		"membership.tier": model.TierGold,
		"$or": []bson.M{
			{"membership.expires_at": nil},
			{"membership.expires_at": bson.M{"$gt": time.Now()}},
		},
	}
	return r.coll.CountDocuments(ctx, filter)
}
